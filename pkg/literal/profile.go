package literal

import "fmt"

// Profile selects which dialect of the literal grammar is accepted.
type Profile struct {
	// Name identifies the profile in configuration.
	Name string

	// DoubleQuotes enables "..." strings together with the JSON escapes
	// \/, \b, \f and \uXXXX.
	DoubleQuotes bool

	// LowerKeywords accepts null, true and false next to None, True and False.
	LowerKeywords bool
}

var (
	// Python accepts single-quoted strings and capitalized keywords only.
	Python = Profile{Name: "python"}

	// Extended additionally accepts JSON style strings and keywords.
	Extended = Profile{Name: "extended", DoubleQuotes: true, LowerKeywords: true}
)

// DefaultProfile is used when no grammar is configured.
var DefaultProfile = Extended

// ProfileByName returns the profile with the given name.
func ProfileByName(name string) (Profile, error) {
	switch name {
	case "", Extended.Name:
		return Extended, nil
	case Python.Name:
		return Python, nil
	default:
		return Profile{}, fmt.Errorf("unknown grammar %q (must be extended or python)", name)
	}
}

// keyword resolves an identifier that names a constant.
func (p Profile) keyword(name string) (Value, bool) {
	switch name {
	case "None":
		return Null(), true
	case "True":
		return Bool(true), true
	case "False":
		return Bool(false), true
	}
	if !p.LowerKeywords {
		return Value{}, false
	}
	switch name {
	case "null":
		return Null(), true
	case "true":
		return Bool(true), true
	case "false":
		return Bool(false), true
	}
	return Value{}, false
}
