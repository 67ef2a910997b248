// Package reconcile rebuilds complete field values from logs that record
// incremental generation output, where the same field is emitted many times
// with growing or overlapping text.
package reconcile

import (
	"strings"

	"github.com/ccollicutt/loglens/pkg/classify"
)

// DefaultSentinel is the section marker line that is skipped.
const DefaultSentinel = "---"

// Result is the reconstructed log.
type Result struct {
	Text      string
	LineCount int
}

// Reconciler merges fragments across a whole log. It holds no per-log state
// and is safe for concurrent use.
type Reconciler struct {
	classifier *classify.Classifier
	sentinel   string
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithSentinel sets the section marker line to skip.
func WithSentinel(sentinel string) Option {
	return func(r *Reconciler) {
		r.sentinel = sentinel
	}
}

// New creates a Reconciler that decodes lines with c.
func New(c *classify.Classifier, opts ...Option) *Reconciler {
	r := &Reconciler{
		classifier: c,
		sentinel:   DefaultSentinel,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile scans every line of logText and returns one line per recovered
// field, in the order model, prompt.<role>, prompt.sequence, prompt.raw,
// response.reasoning, response.content, response.text. Values are written as
// quoted literals so the output classifies back to the same strings.
func (r *Reconciler) Reconcile(logText string) Result {
	s := newState()

	for _, line := range classify.SplitLines(logText) {
		if r.sentinel != "" && strings.TrimSpace(line) == r.sentinel {
			continue
		}

		if l := r.classifier.Classify(line); l.Kind == classify.KindStructured {
			s.visit(l.Value)
		}
		if m := r.classifier.Segment(line); m != nil {
			s.visitFields(m)
		}
	}

	lines := s.lines()
	return Result{
		Text:      strings.Join(lines, "\n"),
		LineCount: len(lines),
	}
}
