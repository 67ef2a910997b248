// Package literal decodes the permissive literal notation found in log lines:
// Python and JavaScript style scalars, lists, dicts and constructor calls such
// as Point(1, 2, label='origin').
package literal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenKind identifies the lexical class of a token.
type TokenKind uint8

const (
	TokenString TokenKind = iota
	TokenNumber
	TokenIdent
	TokenPunct
)

// String returns the token kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenString:
		return "STRING"
	case TokenNumber:
		return "NUMBER"
	case TokenIdent:
		return "IDENT"
	case TokenPunct:
		return "PUNCT"
	default:
		return "UNKNOWN"
	}
}

// Token is a single lexical unit. For strings, Text holds the decoded
// contents without quotes.
type Token struct {
	Kind TokenKind
	Text string
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
}

// is reports whether the token is the given punctuation character.
func (t Token) is(punct string) bool {
	return t.Kind == TokenPunct && t.Text == punct
}

var numberPattern = regexp.MustCompile(`^-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`)

// Lexer splits one line of text into tokens.
type Lexer struct {
	input   string
	pos     int
	profile Profile
	tokens  []Token
}

// NewLexer creates a lexer for the given input and grammar profile.
func NewLexer(input string, profile Profile) *Lexer {
	return &Lexer{input: input, profile: profile}
}

// Tokenize is shorthand for NewLexer(input, profile).Tokenize().
func Tokenize(input string, profile Profile) []Token {
	return NewLexer(input, profile).Tokenize()
}

// Tokenize returns every token in the input. It never fails: unterminated
// strings run to end of input and unknown characters become punctuation.
func (l *Lexer) Tokenize() []Token {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			return l.tokens
		}
		l.tokens = append(l.tokens, l.next())
	}
}

func (l *Lexer) next() Token {
	ch := l.input[l.pos]

	if ch == '\'' || (ch == '"' && l.profile.DoubleQuotes) {
		return l.scanString(ch)
	}

	if ch == '-' || isDigit(ch) {
		if m := numberPattern.FindString(l.input[l.pos:]); m != "" {
			l.pos += len(m)
			return Token{Kind: TokenNumber, Text: m}
		}
	}

	if isIdentStart(ch) {
		start := l.pos
		for l.pos < len(l.input) && isIdentContinue(l.input[l.pos]) {
			l.pos++
		}
		return Token{Kind: TokenIdent, Text: l.input[start:l.pos]}
	}

	_, size := utf8.DecodeRuneInString(l.input[l.pos:])
	text := l.input[l.pos : l.pos+size]
	l.pos += size
	return Token{Kind: TokenPunct, Text: text}
}

// scanString scans a quoted string opened by quote. A backslash only escapes
// the characters the profile knows; otherwise it is kept as is.
func (l *Lexer) scanString(quote byte) Token {
	l.pos++ // opening quote

	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == quote {
			l.pos++
			break
		}
		if ch == '\\' && l.pos+1 < len(l.input) {
			if n, decoded, ok := l.escape(quote); ok {
				sb.WriteString(decoded)
				l.pos += n
				continue
			}
		}
		sb.WriteByte(ch)
		l.pos++
	}

	return Token{Kind: TokenString, Text: sb.String()}
}

// escape decodes the escape sequence at l.pos, returning its length in bytes.
func (l *Lexer) escape(quote byte) (int, string, bool) {
	code := l.input[l.pos+1]
	switch code {
	case 'n':
		return 2, "\n", true
	case 'r':
		return 2, "\r", true
	case 't':
		return 2, "\t", true
	case '\\':
		return 2, "\\", true
	case quote:
		return 2, string(quote), true
	}

	if !l.profile.DoubleQuotes {
		return 0, "", false
	}

	switch code {
	case '/':
		return 2, "/", true
	case 'b':
		return 2, "\b", true
	case 'f':
		return 2, "\f", true
	case 'u':
		if l.pos+6 > len(l.input) {
			return 0, "", false
		}
		hex := l.input[l.pos+2 : l.pos+6]
		if !isHex(hex) {
			return 0, "", false
		}
		r, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, "", false
		}
		return 6, string(rune(r)), true
	}
	return 0, "", false
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isDigit(c) && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
