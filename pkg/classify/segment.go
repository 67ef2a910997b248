package classify

import (
	"strings"

	"github.com/ccollicutt/loglens/pkg/literal"
)

// ExtrasKey holds segments that are not key/value pairs when a line mixes
// both.
const ExtrasKey = "extras"

// extra is a segment without a key.
type extra struct {
	text  string
	value literal.Value
	raw   bool
}

// splitSegments splits on semicolons outside quoted runs and drops empty
// segments.
func splitSegments(text string) []string {
	var segments []string
	var quote byte
	start := 0

	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
		case c == '\'' || c == '"':
			quote = c
		case c == ';':
			add(text[start:i])
			start = i + 1
		}
	}
	add(text[start:])
	return segments
}

// splitKeyValue splits a segment at its first unescaped '=' or ':'. The key
// must be non-empty.
func splitKeyValue(segment string) (string, string, bool) {
	for i := 1; i < len(segment); i++ {
		c := segment[i]
		if (c == '=' || c == ':') && segment[i-1] != '\\' {
			key := strings.TrimSpace(segment[:i])
			if key == "" {
				return "", "", false
			}
			return key, strings.TrimSpace(segment[i+1:]), true
		}
	}
	return "", "", false
}

// segment decodes every segment of text, returning the key/value pairs and
// the remaining extras.
func (c *Classifier) segment(text string) (*literal.Mapping, []extra) {
	pairs := literal.NewMapping()
	var extras []extra

	for _, seg := range splitSegments(text) {
		if key, value, ok := splitKeyValue(seg); ok {
			pairs.Set(key, c.normalizeOrRaw(value))
			continue
		}
		if l, ok := c.decode(seg); ok && l.Kind == KindStructured {
			extras = append(extras, extra{text: seg, value: l.Value})
		} else {
			extras = append(extras, extra{text: seg, value: literal.String(seg), raw: true})
		}
	}
	return pairs, extras
}

// Segment returns the key/value pairs found in line, or nil when there are
// none.
func (c *Classifier) Segment(line string) *literal.Mapping {
	pairs, _ := c.segment(strings.TrimSpace(StripControl(line)))
	if pairs.Len() == 0 {
		return nil
	}
	return pairs
}

func (c *Classifier) normalizeOrRaw(text string) literal.Value {
	if v, ok := literal.Normalize(text, c.profile); ok {
		return v
	}
	return literal.String(text)
}
