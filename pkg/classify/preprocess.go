package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var repeatSuffix = regexp.MustCompile(` \(×(\d+)\)$`)

// Run is a maximal group of consecutive lines that are identical after
// control-stripping and trimming.
type Run struct {
	Text  string
	Count int
}

// JoinContinuations merges lines ending in a backslash with the lines that
// follow them. The backslashes are dropped and the pieces are joined with a
// single space. The join ends after the first line without a trailing
// backslash, or at end of input.
func JoinContinuations(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		head, more := trimContinuation(lines[i])
		if !more {
			out = append(out, lines[i])
			continue
		}

		var parts []string
		if head = strings.TrimRightFunc(head, unicode.IsSpace); head != "" {
			parts = append(parts, head)
		}
		for more && i+1 < len(lines) {
			i++
			var part string
			part, more = trimContinuation(lines[i])
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		out = append(out, strings.Join(parts, " "))
	}
	return out
}

func trimContinuation(line string) (string, bool) {
	trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
	if !strings.HasSuffix(trimmed, `\`) {
		return line, false
	}
	return strings.TrimSuffix(trimmed, `\`), true
}

// Collapse groups consecutive identical lines. Within a run of two or more
// lines, a line already carrying a " (×N)" suffix counts as N occurrences of
// its unsuffixed text, so collapsing annotated output again yields the same
// runs. A line that joins no run is kept as is. Blank lines never group.
func Collapse(lines []string) []Run {
	var runs []Run
	var originals []string
	var members []int
	var last string
	for _, line := range lines {
		text, n := splitRepeat(line)
		key := normalizeLine(text)
		if i := len(runs) - 1; i >= 0 && key != "" && key == last {
			runs[i].Count += n
			members[i]++
			continue
		}
		runs = append(runs, Run{Text: text, Count: n})
		originals = append(originals, line)
		members = append(members, 1)
		last = key
	}

	for i := range runs {
		if members[i] == 1 {
			runs[i] = Run{Text: originals[i], Count: 1}
		}
	}
	return runs
}

// Dedup collapses runs of repeated lines into their first line annotated with
// " (×N)".
func Dedup(lines []string) []string {
	runs := Collapse(lines)
	out := make([]string, len(runs))
	for i, run := range runs {
		out[i] = run.String()
	}
	return out
}

// String renders the run as a single line.
func (r Run) String() string {
	if r.Count <= 1 {
		return r.Text
	}
	return fmt.Sprintf("%s (×%d)", r.Text, r.Count)
}

// splitRepeat separates a trailing repeat annotation from line.
func splitRepeat(line string) (string, int) {
	trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
	m := repeatSuffix.FindStringSubmatchIndex(trimmed)
	if m == nil {
		return line, 1
	}
	n, err := strconv.Atoi(trimmed[m[2]:m[3]])
	if err != nil || n < 1 {
		return line, 1
	}
	text := trimmed[:m[0]]
	if normalizeLine(text) == "" {
		return line, 1
	}
	return text, n
}
