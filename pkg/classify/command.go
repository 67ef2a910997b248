package classify

import (
	"regexp"
	"strings"

	"github.com/ccollicutt/loglens/pkg/literal"
)

// CommandName is the shell command recognized by the command extractor.
const CommandName = "curl"

var (
	commandPrefix   = regexp.MustCompile(`^curl\s`)
	methodPattern   = regexp.MustCompile(`(?:^|\s)-X\s*['"]?([A-Za-z]+)['"]?`)
	urlAfterCommand = regexp.MustCompile(`^curl\s+['"]?(https?://[^\s'"]+)`)
	urlAfterMethod  = regexp.MustCompile(`(?:^|\s)-X\s*['"]?[A-Za-z]+['"]?\s+['"]?(https?://[^\s'"]+)`)
	headerPattern   = regexp.MustCompile(`(?:^|\s)-H\s+(?:'([^']*)'|"([^"]*)")`)
	dataFlag        = regexp.MustCompile(`(?:^|\s)-d\s`)
	bodyPattern     = regexp.MustCompile(`(?:^|\s)-d\s+(?:'(.*)'|"(.*)")\s*$`)
)

// ExtractCommand decodes a curl invocation into a record with optional
// method, url, headers and body fields. Each field is searched for on its
// own, so flags may appear in any order.
func ExtractCommand(line string, profile literal.Profile) (literal.Value, bool) {
	if !commandPrefix.MatchString(line) {
		return literal.Value{}, false
	}

	fields := literal.NewMapping()

	if m := methodPattern.FindStringSubmatch(line); m != nil {
		fields.Set("method", literal.String(m[1]))
	}

	if url := firstURL(line); url != "" {
		fields.Set("url", literal.String(url))
	}

	head := line
	if loc := dataFlag.FindStringIndex(line); loc != nil {
		head = line[:loc[0]]
	}
	headers := literal.NewMapping()
	for _, m := range headerPattern.FindAllStringSubmatch(head, -1) {
		text := m[1] + m[2]
		name, value, ok := strings.Cut(text, ":")
		if !ok {
			continue
		}
		headers.Set(strings.TrimSpace(name), literal.String(strings.TrimSpace(value)))
	}
	if headers.Len() > 0 {
		fields.Set("headers", literal.MappingValue(headers))
	}

	if m := bodyPattern.FindStringSubmatchIndex(line); m != nil {
		body := submatch(line, m, 1)
		if m[2] < 0 {
			body = submatch(line, m, 2)
		}
		if v, ok := literal.Normalize(body, profile); ok {
			fields.Set("body", v)
		} else {
			fields.Set("body", literal.String(body))
		}
	}

	return literal.RecordValue(&literal.Record{Type: CommandName, Fields: fields}), true
}

// firstURL returns whichever URL candidate appears earliest in the line.
func firstURL(line string) string {
	best, bestAt := "", -1
	for _, re := range []*regexp.Regexp{urlAfterCommand, urlAfterMethod} {
		m := re.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		if bestAt < 0 || m[2] < bestAt {
			best, bestAt = line[m[2]:m[3]], m[2]
		}
	}
	return best
}

func submatch(s string, loc []int, group int) string {
	start, end := loc[2*group], loc[2*group+1]
	if start < 0 {
		return ""
	}
	return s[start:end]
}
