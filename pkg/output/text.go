package output

import (
	"context"
	"fmt"
	"io"

	"github.com/ccollicutt/loglens/pkg/classify"
)

// TextFormatter writes one numbered line per classified line.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if !f.opts.Quiet {
		for i, doc := range report.Documents {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(report.Documents) > 1 {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "== %s ==\n", doc.Path)
			}
			for n, line := range doc.Lines {
				fmt.Fprintf(w, "%d: %s\n", n+1, f.formatLine(line))
			}
		}
	}

	if f.opts.Quiet || f.opts.Verbose {
		fmt.Fprintf(w, "loglens: %d documents, %d lines (%d structured, %d raw, %d empty)\n",
			report.Summary.Documents,
			report.Summary.Lines,
			report.Summary.Structured,
			report.Summary.Raw,
			report.Summary.Empty)
	}
	return nil
}

func (f *TextFormatter) formatLine(line classify.Line) string {
	s := serialize(line)
	if line.Count > 1 {
		s += fmt.Sprintf(" (×%d)", line.Count)
	}
	if f.opts.Verbose {
		s += fmt.Sprintf(" [%s]", line.Strategy)
	}
	return s
}

// serialize renders a line as compact JSON, "(raw) text" or "(empty)". A value
// that cannot be encoded is reported with its original text.
func serialize(line classify.Line) string {
	switch line.Kind {
	case classify.KindEmpty:
		return "(empty)"
	case classify.KindRaw:
		return "(raw) " + line.Text
	}
	data, err := line.Value.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("(error: %v) %s", err, line.Text)
	}
	return string(data)
}
