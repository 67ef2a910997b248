package literal

import (
	"math"
	"strings"
)

// Format writes v in the literal grammar using only constructs both profiles
// accept: single-quoted strings and None/True/False.
func Format(v Value) string {
	var sb strings.Builder
	writeLiteral(&sb, v)
	return sb.String()
}

// Quote returns s as a single-quoted literal.
func Quote(s string) string {
	var sb strings.Builder
	writeQuoted(&sb, s)
	return sb.String()
}

func writeLiteral(sb *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		sb.WriteString("None")
	case KindBool:
		if v.boolVal {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case KindNumber:
		switch {
		case math.IsNaN(v.numVal):
			sb.WriteString("None")
		case math.IsInf(v.numVal, 1):
			sb.WriteString("1e999")
		case math.IsInf(v.numVal, -1):
			sb.WriteString("-1e999")
		default:
			sb.WriteString(formatNumber(v.numVal))
		}
	case KindString:
		writeQuoted(sb, v.strVal)
	case KindSequence:
		sb.WriteByte('[')
		writeList(sb, v.items)
		sb.WriteByte(']')
	case KindMapping:
		sb.WriteByte('{')
		for i, e := range v.mapping.Entries() {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeQuoted(sb, e.Key)
			sb.WriteString(": ")
			writeLiteral(sb, e.Value)
		}
		sb.WriteByte('}')
	case KindRecord:
		r := v.recordVal
		sb.WriteString(r.Type)
		sb.WriteByte('(')
		writeList(sb, r.Positional)
		for i, e := range r.Fields.Entries() {
			if i > 0 || len(r.Positional) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.Key)
			sb.WriteByte('=')
			writeLiteral(sb, e.Value)
		}
		sb.WriteByte(')')
	}
}

func writeList(sb *strings.Builder, items []Value) {
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeLiteral(sb, item)
	}
}

func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('\'')
}
