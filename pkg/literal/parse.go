package literal

import (
	"errors"
	"fmt"
	"strconv"
)

// MaxDepth bounds container nesting so hostile input cannot exhaust the stack.
const MaxDepth = 256

// ErrUnexpectedEOF is wrapped by parse errors caused by running out of tokens.
var ErrUnexpectedEOF = errors.New("unexpected end of input")

// ParseError describes why a token sequence is not a literal.
type ParseError struct {
	Message string
	Token   *Token
}

func (e *ParseError) Error() string {
	if e.Token == nil {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Message, e.Token)
}

// Unwrap lets errors.Is match ErrUnexpectedEOF.
func (e *ParseError) Unwrap() error {
	if e.Token == nil && e.Message == ErrUnexpectedEOF.Error() {
		return ErrUnexpectedEOF
	}
	return nil
}

// Parser is a recursive-descent parser over a token slice.
type Parser struct {
	tokens  []Token
	pos     int
	depth   int
	profile Profile
}

// NewParser creates a parser over tokens.
func NewParser(tokens []Token, profile Profile) *Parser {
	return &Parser{tokens: tokens, profile: profile}
}

// Parse tokenizes and parses input as exactly one value.
func Parse(input string, profile Profile) (Value, error) {
	p := NewParser(Tokenize(input, profile), profile)
	v, err := p.ParseValue()
	if err != nil {
		return Value{}, err
	}
	if err := p.ExpectEnd(); err != nil {
		return Value{}, err
	}
	return v, nil
}

// ParseArguments parses input as the inside of a constructor call, without
// the surrounding name and parentheses.
func ParseArguments(input string, profile Profile) ([]Value, *Mapping, error) {
	p := NewParser(Tokenize(input, profile), profile)
	positional, fields, err := p.parseArguments(true)
	if err != nil {
		return nil, nil, err
	}
	if err := p.ExpectEnd(); err != nil {
		return nil, nil, err
	}
	return positional, fields, nil
}

// ExpectEnd fails if any token is left.
func (p *Parser) ExpectEnd() error {
	if tok, ok := p.peek(0); ok {
		return &ParseError{Message: "trailing token", Token: &tok}
	}
	return nil
}

// ParseValue parses the next value.
func (p *Parser) ParseValue() (Value, error) {
	tok, ok := p.peek(0)
	if !ok {
		return Value{}, eofError()
	}

	switch tok.Kind {
	case TokenString:
		p.pos++
		return String(tok.Text), nil

	case TokenNumber:
		p.pos++
		n, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Value{}, &ParseError{Message: "invalid number", Token: &tok}
		}
		return Number(n), nil

	case TokenIdent:
		if v, ok := p.profile.keyword(tok.Text); ok {
			p.pos++
			return v, nil
		}
		if next, ok := p.peek(1); ok && next.is("(") {
			return p.nested(p.parseCall)
		}
		p.pos++
		return String(tok.Text), nil

	case TokenPunct:
		switch tok.Text {
		case "[":
			return p.nested(p.parseSequence)
		case "{":
			return p.nested(p.parseMapping)
		case "(":
			return p.nested(p.parseGroup)
		}
	}

	return Value{}, &ParseError{Message: "unexpected token", Token: &tok}
}

func (p *Parser) nested(parse func() (Value, error)) (Value, error) {
	if p.depth >= MaxDepth {
		tok, _ := p.peek(0)
		return Value{}, &ParseError{Message: "nesting too deep at", Token: &tok}
	}
	p.depth++
	defer func() { p.depth-- }()
	return parse()
}

// parseCall parses Name(args...).
func (p *Parser) parseCall() (Value, error) {
	name := p.tokens[p.pos].Text
	p.pos += 2 // name and (

	positional, fields, err := p.parseArguments(false)
	if err != nil {
		return Value{}, err
	}
	return RecordValue(&Record{Type: name, Positional: positional, Fields: fields}), nil
}

// parseArguments parses comma-separated positional and key=value arguments.
// With toEnd set the list runs to end of input instead of a closing ')'.
func (p *Parser) parseArguments(toEnd bool) ([]Value, *Mapping, error) {
	positional := []Value{}
	fields := NewMapping()

	for {
		tok, ok := p.peek(0)
		if !ok {
			if toEnd {
				return positional, fields, nil
			}
			return nil, nil, eofError()
		}
		if !toEnd && tok.is(")") {
			p.pos++
			return positional, fields, nil
		}

		if next, ok := p.peek(1); ok && tok.Kind == TokenIdent && next.is("=") {
			p.pos += 2
			v, err := p.ParseValue()
			if err != nil {
				return nil, nil, err
			}
			fields.Set(tok.Text, v)
		} else {
			v, err := p.ParseValue()
			if err != nil {
				return nil, nil, err
			}
			positional = append(positional, v)
		}

		sep, ok := p.peek(0)
		switch {
		case !ok:
			if toEnd {
				return positional, fields, nil
			}
			return nil, nil, eofError()
		case sep.is(","):
			p.pos++
		case !toEnd && sep.is(")"):
			// closed on the next iteration
		default:
			return nil, nil, &ParseError{Message: "expected ',' or ')' but found", Token: &sep}
		}
	}
}

func (p *Parser) parseSequence() (Value, error) {
	p.pos++ // [

	items := []Value{}
	for {
		tok, ok := p.peek(0)
		if !ok {
			return Value{}, eofError()
		}
		if tok.is("]") {
			p.pos++
			return Sequence(items...), nil
		}
		v, err := p.ParseValue()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
		p.skip(",")
	}
}

func (p *Parser) parseMapping() (Value, error) {
	p.pos++ // {

	m := NewMapping()
	for {
		tok, ok := p.peek(0)
		if !ok {
			return Value{}, eofError()
		}
		if tok.is("}") {
			p.pos++
			return MappingValue(m), nil
		}

		key, err := p.ParseValue()
		if err != nil {
			return Value{}, err
		}
		if err := p.expect(":"); err != nil {
			return Value{}, err
		}
		v, err := p.ParseValue()
		if err != nil {
			return Value{}, err
		}
		m.Set(KeyString(key), v)
		p.skip(",")
	}
}

func (p *Parser) parseGroup() (Value, error) {
	p.pos++ // (
	v, err := p.ParseValue()
	if err != nil {
		return Value{}, err
	}
	if err := p.expect(")"); err != nil {
		return Value{}, err
	}
	return v, nil
}

func (p *Parser) expect(punct string) error {
	tok, ok := p.peek(0)
	if !ok {
		return eofError()
	}
	if !tok.is(punct) {
		return &ParseError{Message: fmt.Sprintf("expected %q but found", punct), Token: &tok}
	}
	p.pos++
	return nil
}

func (p *Parser) skip(punct string) {
	if tok, ok := p.peek(0); ok && tok.is(punct) {
		p.pos++
	}
}

func (p *Parser) peek(offset int) (Token, bool) {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[i], true
}

func eofError() error {
	return &ParseError{Message: ErrUnexpectedEOF.Error()}
}

// KeyString converts a mapping key to its canonical string form: strings are
// used as is, numbers in shortest form, anything else as compact JSON.
func KeyString(key Value) string {
	switch key.kind {
	case KindString:
		return key.strVal
	case KindNumber:
		return formatNumber(key.numVal)
	}
	if data, err := key.MarshalJSON(); err == nil {
		return string(data)
	}
	return Format(key)
}
