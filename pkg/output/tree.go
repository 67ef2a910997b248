package output

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ccollicutt/loglens/pkg/classify"
	"github.com/ccollicutt/loglens/pkg/literal"
)

const treeIndent = 2

// TreeFormatter writes each structured line as an indented value tree,
// styled for the terminal.
type TreeFormatter struct {
	opts FormatOptions
}

// NewTreeFormatter creates a new tree formatter with the given options.
func NewTreeFormatter(opts FormatOptions) *TreeFormatter {
	return &TreeFormatter{opts: opts}
}

// Name returns the format name.
func (f *TreeFormatter) Name() string {
	return "tree"
}

type treeStyles struct {
	title   lipgloss.Style
	number  lipgloss.Style
	key     lipgloss.Style
	str     lipgloss.Style
	num     lipgloss.Style
	keyword lipgloss.Style
	record  lipgloss.Style
	raw     lipgloss.Style
	muted   lipgloss.Style
}

func newTreeStyles(r *lipgloss.Renderer) treeStyles {
	return treeStyles{
		title:   r.NewStyle().Bold(true).Underline(true),
		number:  r.NewStyle().Foreground(lipgloss.Color("8")),
		key:     r.NewStyle().Foreground(lipgloss.Color("12")),
		str:     r.NewStyle().Foreground(lipgloss.Color("10")),
		num:     r.NewStyle().Foreground(lipgloss.Color("11")),
		keyword: r.NewStyle().Foreground(lipgloss.Color("13")),
		record:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		raw:     r.NewStyle(),
		muted:   r.NewStyle().Faint(true),
	}
}

// Format renders the report as a tree. Colors are only emitted when w is a
// terminal.
func (f *TreeFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	s := newTreeStyles(lipgloss.NewRenderer(w))

	if !f.opts.Quiet {
		for _, doc := range report.Documents {
			if err := ctx.Err(); err != nil {
				return err
			}
			fmt.Fprintln(w, s.title.Render(doc.Status))
			width := len(strconv.Itoa(len(doc.Lines)))
			for n, line := range doc.Lines {
				var sb strings.Builder
				sb.WriteString(s.number.Render(fmt.Sprintf("%*d", width, n+1)))
				sb.WriteString(" ")
				writeLine(&sb, s, line, width+1)
				if line.Count > 1 {
					sb.WriteString(s.muted.Render(fmt.Sprintf(" (×%d)", line.Count)))
				}
				if f.opts.Verbose {
					sb.WriteString(s.muted.Render(" [" + line.Strategy + "]"))
				}
				fmt.Fprintln(w, sb.String())
			}
		}
	}

	if f.opts.Quiet || f.opts.Verbose {
		fmt.Fprintln(w, s.muted.Render(fmt.Sprintf("%d documents, %d lines (%d structured, %d raw, %d empty)",
			report.Summary.Documents,
			report.Summary.Lines,
			report.Summary.Structured,
			report.Summary.Raw,
			report.Summary.Empty)))
	}
	return nil
}

func writeLine(sb *strings.Builder, s treeStyles, line classify.Line, indent int) {
	switch line.Kind {
	case classify.KindEmpty:
		sb.WriteString(s.muted.Render("(empty)"))
	case classify.KindRaw:
		sb.WriteString(s.raw.Render(line.Text))
	default:
		writeNode(sb, s, line.Value, indent)
	}
}

func writeNode(sb *strings.Builder, s treeStyles, v literal.Value, indent int) {
	child := func(label string) {
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", indent+treeIndent))
		sb.WriteString(label)
	}

	switch v.Kind() {
	case literal.KindNull:
		sb.WriteString(s.keyword.Render("null"))
	case literal.KindBool:
		sb.WriteString(s.keyword.Render(v.Text()))
	case literal.KindNumber:
		sb.WriteString(s.num.Render(v.Text()))
	case literal.KindString:
		str, _ := v.Str()
		sb.WriteString(s.str.Render(strconv.Quote(str)))
	case literal.KindSequence:
		items := v.Items()
		sb.WriteString(s.muted.Render(fmt.Sprintf("[%d]", len(items))))
		for _, item := range items {
			child("- ")
			writeNode(sb, s, item, indent+treeIndent)
		}
	case literal.KindMapping:
		entries := v.Mapping().Entries()
		sb.WriteString(s.muted.Render(fmt.Sprintf("{%d}", len(entries))))
		for _, e := range entries {
			child(s.key.Render(e.Key) + ": ")
			writeNode(sb, s, e.Value, indent+treeIndent)
		}
	case literal.KindRecord:
		r := v.Record()
		sb.WriteString(s.record.Render(r.Type + "()"))
		for i, item := range r.Positional {
			child(s.muted.Render("#"+strconv.Itoa(i)) + ": ")
			writeNode(sb, s, item, indent+treeIndent)
		}
		for _, e := range r.Fields.Entries() {
			child(s.key.Render(e.Key) + "=")
			writeNode(sb, s, e.Value, indent+treeIndent)
		}
	}
}
