// Package classify turns raw log lines into typed values. Each line is tried
// against an ordered list of decoding strategies and the first match wins; the
// last strategy always matches, so classification never fails.
package classify

import (
	"encoding/json"
	"strings"

	"github.com/ccollicutt/loglens/pkg/literal"
)

// Kind is the shape of a classified line.
type Kind int

const (
	KindEmpty Kind = iota
	KindRaw
	KindStructured
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindRaw:
		return "raw"
	case KindStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Strategy names, in the order they are tried.
const (
	StrategyEmpty    = "empty"
	StrategyCommand  = "command"
	StrategyJSON     = "json"
	StrategyLiteral  = "literal"
	StrategyKeywords = "keywords"
	StrategySegments = "segments"
)

// Line is the result of classifying one input line.
type Line struct {
	Kind Kind
	// Text is the control-stripped, trimmed text. For raw lines it is the
	// text to display.
	Text     string
	Value    literal.Value
	Original string
	// Count is how many consecutive input lines this line stands for.
	Count    int
	Strategy string
}

// MarshalJSON writes the line with its value in canonical JSON form.
func (l Line) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind     Kind            `json:"kind"`
		Text     string          `json:"text,omitempty"`
		Value    json.RawMessage `json:"value,omitempty"`
		Original string          `json:"original"`
		Count    int             `json:"count"`
		Strategy string          `json:"strategy"`
	}{
		Kind:     l.Kind,
		Text:     l.Text,
		Original: l.Original,
		Count:    l.Count,
		Strategy: l.Strategy,
	}
	if l.Kind == KindStructured {
		data, err := l.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out.Value = data
	}
	return json.Marshal(out)
}

// Observer is told which strategy classified each line. It must be safe for
// concurrent use.
type Observer func(strategy string)

// Classifier decodes lines. It is immutable after New and safe for concurrent
// use.
type Classifier struct {
	profile  literal.Profile
	join     bool
	dedup    bool
	observer Observer
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithProfile selects the literal grammar.
func WithProfile(p literal.Profile) Option {
	return func(c *Classifier) {
		c.profile = p
	}
}

// WithContinuations toggles joining of backslash-continued lines in
// ClassifyAll.
func WithContinuations(enabled bool) Option {
	return func(c *Classifier) {
		c.join = enabled
	}
}

// WithDedup toggles collapsing of repeated lines in ClassifyAll.
func WithDedup(enabled bool) Option {
	return func(c *Classifier) {
		c.dedup = enabled
	}
}

// WithObserver registers a callback for every classified line.
func WithObserver(o Observer) Option {
	return func(c *Classifier) {
		c.observer = o
	}
}

// New creates a Classifier using the default grammar with continuation
// joining and dedup enabled.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		profile: literal.DefaultProfile,
		join:    true,
		dedup:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Profile returns the grammar the classifier decodes with.
func (c *Classifier) Profile() literal.Profile {
	return c.profile
}

type input struct {
	original string
	text     string
}

type strategy struct {
	name string
	run  func(c *Classifier, in *input) (Line, bool)
}

var strategies = []strategy{
	{StrategyEmpty, (*Classifier).classifyEmpty},
	{StrategyCommand, (*Classifier).classifyCommand},
	{StrategyJSON, (*Classifier).classifyJSON},
	{StrategyLiteral, (*Classifier).classifyLiteral},
	{StrategyKeywords, (*Classifier).classifyKeywords},
	{StrategySegments, (*Classifier).classifySegments},
}

// Classify decodes a single line.
func (c *Classifier) Classify(line string) Line {
	in := &input{original: line, text: strings.TrimSpace(StripControl(line))}

	out, name := Line{Kind: KindRaw, Text: in.text}, StrategySegments
	for _, s := range strategies {
		if l, ok := s.run(c, in); ok {
			out, name = l, s.name
			break
		}
	}

	out.Original = line
	out.Count = 1
	out.Strategy = name
	if c.observer != nil {
		c.observer(name)
	}
	return out
}

// ClassifyAll preprocesses lines (continuation join, then dedup, as
// configured) and classifies each result. Repeated lines are decoded once and
// carry their repeat count.
func (c *Classifier) ClassifyAll(lines []string) []Line {
	if c.join {
		lines = JoinContinuations(lines)
	}

	var runs []Run
	if c.dedup {
		runs = Collapse(lines)
	} else {
		runs = make([]Run, len(lines))
		for i, line := range lines {
			runs[i] = Run{Text: line, Count: 1}
		}
	}

	out := make([]Line, len(runs))
	for i, run := range runs {
		out[i] = c.Classify(run.Text)
		out[i].Count = run.Count
	}
	return out
}

// ClassifyText splits text into lines and classifies them with ClassifyAll.
func (c *Classifier) ClassifyText(text string) []Line {
	return c.ClassifyAll(SplitLines(text))
}

// SplitLines splits text on newlines. A trailing newline does not produce a
// final empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func (c *Classifier) classifyEmpty(in *input) (Line, bool) {
	if in.text != "" {
		return Line{}, false
	}
	return Line{Kind: KindEmpty}, true
}

func (c *Classifier) classifyCommand(in *input) (Line, bool) {
	v, ok := ExtractCommand(in.text, c.profile)
	if !ok {
		return Line{}, false
	}
	return structured(in.text, v), true
}

func (c *Classifier) classifyJSON(in *input) (Line, bool) {
	if in.text[0] != '{' && in.text[0] != '[' {
		return Line{}, false
	}
	v, err := literal.DecodeJSON([]byte(in.text))
	if err != nil {
		return Line{}, false
	}
	return structured(in.text, v), true
}

func (c *Classifier) classifyLiteral(in *input) (Line, bool) {
	v, ok := c.decode(in.text)
	if !ok {
		return Line{}, false
	}
	return v, true
}

func (c *Classifier) classifyKeywords(in *input) (Line, bool) {
	positional, fields, err := literal.ParseArguments(in.text, c.profile)
	if err != nil || len(positional) > 0 || fields.Len() == 0 {
		return Line{}, false
	}
	v, ok := literal.Canonical(literal.MappingValue(fields))
	if !ok {
		return Line{}, false
	}
	return structured(in.text, v), true
}

func (c *Classifier) classifySegments(in *input) (Line, bool) {
	pairs, extras := c.segment(in.text)

	switch {
	case pairs.Len() > 0:
		if len(extras) > 0 {
			pairs.Set(ExtrasKey, extraValues(extras))
		}
		return structured(in.text, literal.MappingValue(pairs)), true
	case len(extras) == 1:
		if extras[0].raw {
			return raw(extras[0].text), true
		}
		return structured(in.text, extras[0].value), true
	case len(extras) > 1:
		return structured(in.text, extraValues(extras)), true
	default:
		return raw(in.text), true
	}
}

// decode normalizes text as a literal. A bare word parses as a string but is
// reported as raw text unless it was quoted.
func (c *Classifier) decode(text string) (Line, bool) {
	v, ok := literal.Normalize(text, c.profile)
	if !ok {
		return Line{}, false
	}
	if v.Kind() == literal.KindString && text[0] != '\'' && text[0] != '"' {
		return raw(text), true
	}
	return structured(text, v), true
}

func extraValues(extras []extra) literal.Value {
	items := make([]literal.Value, len(extras))
	for i, e := range extras {
		items[i] = e.value
	}
	return literal.Sequence(items...)
}

func structured(text string, v literal.Value) Line {
	return Line{Kind: KindStructured, Text: text, Value: v}
}

func raw(text string) Line {
	return Line{Kind: KindRaw, Text: text}
}
