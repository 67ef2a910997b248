package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ccollicutt/loglens/pkg/classify"
)

// JSONFormatter formats reports as JSON, one object per decoded line.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

type jsonReport struct {
	Summary   Summary        `json:"summary"`
	Documents []jsonDocument `json:"documents"`
	Metadata  Metadata       `json:"metadata"`
}

type jsonDocument struct {
	Path       string     `json:"path"`
	Status     string     `json:"status"`
	Reconciled bool       `json:"reconciled,omitempty"`
	Lines      []jsonLine `json:"lines"`
}

// jsonLine carries a value for structured lines and text for raw ones.
// Strategy and Original are only filled in verbose mode.
type jsonLine struct {
	Line     int             `json:"line"`
	Kind     classify.Kind   `json:"kind"`
	Value    json.RawMessage `json:"value,omitempty"`
	Text     string          `json:"text,omitempty"`
	Error    string          `json:"error,omitempty"`
	Count    int             `json:"count"`
	Strategy string          `json:"strategy,omitempty"`
	Original string          `json:"original,omitempty"`
}

// Format renders the report as JSON.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if f.opts.Quiet {
		return encoder.Encode(report.Summary)
	}

	out := jsonReport{
		Summary:   report.Summary,
		Documents: make([]jsonDocument, 0, len(report.Documents)),
		Metadata:  report.Metadata,
	}
	for _, doc := range report.Documents {
		if err := ctx.Err(); err != nil {
			return err
		}
		d := jsonDocument{
			Path:       doc.Path,
			Status:     doc.Status,
			Reconciled: doc.Reconciled,
			Lines:      make([]jsonLine, len(doc.Lines)),
		}
		for i, line := range doc.Lines {
			d.Lines[i] = f.lineView(i+1, line)
		}
		out.Documents = append(out.Documents, d)
	}

	return encoder.Encode(out)
}

// lineView converts one line. A value that cannot be encoded is reported with
// its text and the encoding error.
func (f *JSONFormatter) lineView(n int, line classify.Line) jsonLine {
	out := jsonLine{Line: n, Kind: line.Kind, Count: line.Count}

	switch line.Kind {
	case classify.KindRaw:
		out.Text = line.Text
	case classify.KindStructured:
		data, err := line.Value.MarshalJSON()
		if err != nil {
			out.Text = line.Text
			out.Error = err.Error()
			break
		}
		out.Value = data
	}

	if f.opts.Verbose {
		out.Strategy = line.Strategy
		out.Original = line.Original
	}
	return out
}
