// Package source reads log files and turns them into classified documents.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ccollicutt/loglens/internal/logging"
	"github.com/ccollicutt/loglens/pkg/classify"
	"github.com/ccollicutt/loglens/pkg/metrics"
	"github.com/ccollicutt/loglens/pkg/reconcile"
)

// ErrEmptyPath is returned when no file path is given.
var ErrEmptyPath = errors.New("empty file path")

// Options configures Load.
type Options struct {
	// Classifier decodes lines. Defaults to classify.New().
	Classifier *classify.Classifier

	// Reconciler, when set, rebuilds streamed fragments before classifying.
	Reconciler *reconcile.Reconciler

	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics
}

// Document is a classified log file.
type Document struct {
	Path       string          `json:"path"`
	Lines      []classify.Line `json:"lines"`
	Status     string          `json:"status"`
	Reconciled bool            `json:"reconciled"`
	LoadedAt   time.Time       `json:"loaded_at"`
}

// Load reads path and classifies its lines.
func Load(ctx context.Context, path string, opts Options) (*Document, error) {
	raw, err := ReadLines(ctx, path)
	if err != nil {
		return nil, err
	}
	return build(path, raw, opts), nil
}

// FromText classifies text as if it had been read from path.
func FromText(path, text string, opts Options) *Document {
	return build(path, classify.SplitLines(text), opts)
}

func build(path string, raw []string, opts Options) *Document {
	c := opts.Classifier
	if c == nil {
		c = classify.New()
	}
	log := logging.For(opts.Logger, logging.ComponentLoader).WithField("path", path)

	doc := &Document{Path: path, LoadedAt: time.Now()}
	lines := raw
	mode := metrics.ModeBasic

	if opts.Reconciler != nil {
		result := opts.Reconciler.Reconcile(strings.Join(raw, "\n"))
		lines = classify.SplitLines(result.Text)
		doc.Reconciled = true
		mode = metrics.ModeReconcile
		log.WithField("fields", result.LineCount).Debug("reconciled fragments")
	}

	doc.Lines = c.ClassifyAll(lines)
	doc.Status = fmt.Sprintf("%d lines from %s", len(doc.Lines), path)
	if doc.Reconciled {
		doc.Status += fmt.Sprintf(" (reconstructed from %d fragment lines)", len(raw))
	}

	opts.Metrics.DocumentLoaded(mode)
	log.WithFields(logrus.Fields{
		"raw_lines": len(raw),
		"lines":     len(doc.Lines),
		"mode":      mode,
	}).Debug("loaded document")

	return doc
}

// Counts tallies the document's lines by kind, counting repeats.
func (d *Document) Counts() (structured, raw, empty int) {
	for _, l := range d.Lines {
		switch l.Kind {
		case classify.KindStructured:
			structured += l.Count
		case classify.KindRaw:
			raw += l.Count
		default:
			empty += l.Count
		}
	}
	return structured, raw, empty
}
