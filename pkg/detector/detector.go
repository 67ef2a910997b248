// Package detector reports how well each literal grammar decodes a log file,
// so a starter configuration can name the best one.
package detector

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/ccollicutt/loglens/pkg/classify"
	"github.com/ccollicutt/loglens/pkg/literal"
	"github.com/ccollicutt/loglens/pkg/source"
)

// DefaultSampleSize is the number of lines sampled when none is configured.
const DefaultSampleSize = 100

// DetectionResult holds the result of sampling a log file.
type DetectionResult struct {
	Matches         []ProfileMatch // Profiles that decoded something, best first
	SampledLines    int            // Number of lines sampled
	StructuredLines int            // Number of lines the best profile decoded
}

// ProfileMatch is one grammar's score over the sample.
type ProfileMatch struct {
	Profile    literal.Profile
	Confidence float64        // 0.0 to 1.0 (share of sampled lines decoded)
	MatchCount int            // Number of lines decoded to a value
	SampleLine string         // First line the profile decoded
	Strategies map[string]int // Decoded lines per classifier strategy
}

// Detector samples log files and scores grammar profiles against them.
type Detector struct {
	profiles   []literal.Profile
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// New creates a Detector that scores the extended and python grammars.
func New(opts ...Option) *Detector {
	d := &Detector{
		profiles:   []literal.Profile{literal.Extended, literal.Python},
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples a log file and scores every profile against it.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines scores every profile against lines. Ties keep the profile
// order, so the extended grammar wins unless python decodes strictly more.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{
		SampledLines: len(lines),
	}

	if len(lines) == 0 {
		return result
	}

	for _, profile := range d.profiles {
		c := classify.New(
			classify.WithProfile(profile),
			classify.WithContinuations(false),
			classify.WithDedup(false),
		)

		match := ProfileMatch{
			Profile:    profile,
			Strategies: make(map[string]int),
		}
		for _, line := range lines {
			l := c.Classify(line)
			if l.Kind != classify.KindStructured {
				continue
			}
			match.MatchCount++
			match.Strategies[l.Strategy]++
			if match.SampleLine == "" {
				match.SampleLine = l.Text
			}
		}
		if match.MatchCount == 0 {
			continue
		}

		match.Confidence = float64(match.MatchCount) / float64(len(lines))
		result.Matches = append(result.Matches, match)
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].MatchCount > result.Matches[j].MatchCount
	})

	if len(result.Matches) > 0 {
		result.StructuredLines = result.Matches[0].MatchCount
	}

	return result
}

// sampleFile reads up to sampleSize non-blank lines from the head of a file.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	src := source.NewFileSource(path)
	defer src.Close()

	var lines []string
	for len(lines) < d.sampleSize {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line.Text) != "" {
			lines = append(lines, line.Text)
		}
	}

	return lines, nil
}

// BestMatch returns the highest scoring profile, or nil if none decoded
// anything.
func (r *DetectionResult) BestMatch() *ProfileMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one profile decoded a line.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
