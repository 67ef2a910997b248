// Package output renders classified documents as text, JSON, a styled tree or
// an HTML page.
package output

import (
	"time"

	"github.com/ccollicutt/loglens/pkg/source"
)

// Report is the complete dump output.
type Report struct {
	Summary   Summary            `json:"summary"`
	Documents []*source.Document `json:"documents"`
	Metadata  Metadata           `json:"metadata"`
}

// Summary provides aggregate line counts. Repeated lines count once per
// occurrence.
type Summary struct {
	Documents  int `json:"documents"`
	Lines      int `json:"lines"`
	Structured int `json:"structured"`
	Raw        int `json:"raw"`
	Empty      int `json:"empty"`
}

// Metadata provides context about the run.
type Metadata struct {
	ConfigFile  string        `json:"config_file,omitempty"`
	Grammar     string        `json:"grammar"`
	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration"`
}

// NewReport builds a Report from loaded documents.
func NewReport(docs []*source.Document, meta Metadata) *Report {
	report := &Report{
		Documents: docs,
		Metadata:  meta,
	}
	report.Summary.Documents = len(docs)
	for _, doc := range docs {
		structured, raw, empty := doc.Counts()
		report.Summary.Structured += structured
		report.Summary.Raw += raw
		report.Summary.Empty += empty
	}
	report.Summary.Lines = report.Summary.Structured + report.Summary.Raw + report.Summary.Empty
	return report
}

// HasRaw reports whether any line could not be decoded.
func (r *Report) HasRaw() bool {
	return r.Summary.Raw > 0
}
