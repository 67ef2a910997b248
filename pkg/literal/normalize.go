package literal

// Normalize parses text as one complete literal and passes the result through
// a JSON round trip, so callers only ever see values that serialize cleanly.
// It reports false instead of returning an error; callers always have a
// fallback.
func Normalize(text string, profile Profile) (Value, bool) {
	v, err := Parse(text, profile)
	if err != nil {
		return Value{}, false
	}
	return Canonical(v)
}

// Canonical round-trips v through JSON.
func Canonical(v Value) (Value, bool) {
	data, err := v.MarshalJSON()
	if err != nil {
		return Value{}, false
	}
	out, err := DecodeJSON(data)
	if err != nil {
		return Value{}, false
	}
	return out, true
}
