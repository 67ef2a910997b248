package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/loglens/pkg/classify"
	"github.com/ccollicutt/loglens/pkg/source"
)

func createTestReport() *Report {
	doc := source.FromText("app.log", strings.Join([]string{
		"name='Alice', age=30",
		"ping",
		"ping",
		"ping",
		"",
		"Point(1, 2, label='origin')",
		"<b>bold</b> & more",
	}, "\n"), source.Options{})

	return NewReport([]*source.Document{doc}, Metadata{
		Grammar:     "extended",
		GeneratedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	})
}

func format(t *testing.T, f Formatter, report *Report) string {
	t.Helper()
	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	return buf.String()
}

func TestNewReport_Summary(t *testing.T) {
	report := createTestReport()

	want := Summary{Documents: 1, Lines: 7, Structured: 2, Raw: 4, Empty: 1}
	if report.Summary != want {
		t.Errorf("Summary = %+v, want %+v", report.Summary, want)
	}
	if !report.HasRaw() {
		t.Error("HasRaw() = false, want true")
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"text", "json", "tree", "html"} {
		f, err := New(name, FormatOptions{})
		if err != nil {
			t.Fatalf("New(%q) error = %v", name, err)
		}
		if f.Name() != name {
			t.Errorf("Name() = %q, want %q", f.Name(), name)
		}
	}

	if _, err := New("yaml", FormatOptions{}); err == nil {
		t.Error("New(yaml) expected error")
	}
}

func TestTextFormatter_Format(t *testing.T) {
	out := format(t, NewTextFormatter(FormatOptions{}), createTestReport())

	want := strings.Join([]string{
		`1: {"name":"Alice","age":30}`,
		`2: (raw) ping (×3)`,
		`3: (empty)`,
		`4: {"$type":"Point","args":[1,2],"kwargs":{"label":"origin"}}`,
		`5: (raw) <b>bold</b> & more`,
		``,
	}, "\n")
	assert.Equal(t, want, out)
}

func TestTextFormatter_Verbose(t *testing.T) {
	out := format(t, NewTextFormatter(FormatOptions{Verbose: true}), createTestReport())

	assert.Contains(t, out, `1: {"name":"Alice","age":30} [keywords]`)
	assert.Contains(t, out, "loglens: 1 documents, 7 lines (2 structured, 4 raw, 1 empty)")
}

func TestTextFormatter_Quiet(t *testing.T) {
	out := format(t, NewTextFormatter(FormatOptions{Quiet: true}), createTestReport())
	assert.Equal(t, "loglens: 1 documents, 7 lines (2 structured, 4 raw, 1 empty)\n", out)
}

func TestTextFormatter_MultipleDocuments(t *testing.T) {
	a := source.FromText("a.log", "x=1", source.Options{})
	b := source.FromText("b.log", "y=2", source.Options{})
	out := format(t, NewTextFormatter(FormatOptions{}), NewReport([]*source.Document{a, b}, Metadata{}))

	assert.Equal(t, "== a.log ==\n1: {\"x\":1}\n\n== b.log ==\n1: {\"y\":2}\n", out)
}

type jsonOutput struct {
	Summary   Summary `json:"summary"`
	Documents []struct {
		Path   string `json:"path"`
		Status string `json:"status"`
		Lines  []struct {
			Line     int             `json:"line"`
			Kind     string          `json:"kind"`
			Value    json.RawMessage `json:"value"`
			Text     string          `json:"text"`
			Count    int             `json:"count"`
			Strategy string          `json:"strategy"`
			Original string          `json:"original"`
		} `json:"lines"`
	} `json:"documents"`
	Metadata struct {
		Grammar string `json:"grammar"`
	} `json:"metadata"`
}

func TestJSONFormatter_Format(t *testing.T) {
	out := format(t, NewJSONFormatter(FormatOptions{}), createTestReport())

	var decoded jsonOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, 7, decoded.Summary.Lines)
	assert.Equal(t, "extended", decoded.Metadata.Grammar)
	require.Len(t, decoded.Documents, 1)
	doc := decoded.Documents[0]
	assert.Equal(t, "app.log", doc.Path)
	assert.Equal(t, "5 lines from app.log", doc.Status)
	require.Len(t, doc.Lines, 5)

	assert.Equal(t, 1, doc.Lines[0].Line)
	assert.Equal(t, "structured", doc.Lines[0].Kind)
	assert.JSONEq(t, `{"name":"Alice","age":30}`, string(doc.Lines[0].Value))
	assert.Empty(t, doc.Lines[0].Text)

	assert.Equal(t, "raw", doc.Lines[1].Kind)
	assert.Equal(t, "ping", doc.Lines[1].Text)
	assert.Nil(t, doc.Lines[1].Value)
	assert.Equal(t, 3, doc.Lines[1].Count)

	assert.Equal(t, "empty", doc.Lines[2].Kind)
	assert.Equal(t, 5, doc.Lines[4].Line)

	assert.NotContains(t, out, `"strategy"`)
	assert.NotContains(t, out, `"original"`)
	assert.Contains(t, out, `"text": "<b>bold</b> & more"`)
}

func TestJSONFormatter_Verbose(t *testing.T) {
	out := format(t, NewJSONFormatter(FormatOptions{Verbose: true}), createTestReport())

	var decoded jsonOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	lines := decoded.Documents[0].Lines
	assert.Equal(t, classify.StrategyKeywords, lines[0].Strategy)
	assert.Equal(t, "name='Alice', age=30", lines[0].Original)
	assert.Equal(t, classify.StrategyEmpty, lines[2].Strategy)
}

func TestJSONFormatter_Quiet(t *testing.T) {
	out := format(t, NewJSONFormatter(FormatOptions{Quiet: true}), createTestReport())
	assert.JSONEq(t, `{"documents":1,"lines":7,"structured":2,"raw":4,"empty":1}`, out)
}

func TestTreeFormatter_Format(t *testing.T) {
	out := plain(format(t, NewTreeFormatter(FormatOptions{}), createTestReport()))

	assert.Contains(t, out, "5 lines from app.log")
	assert.Contains(t, out, "1 {2}\n    name: \"Alice\"\n    age: 30\n")
	assert.Contains(t, out, "2 ping (×3)\n")
	assert.Contains(t, out, "3 (empty)\n")
	assert.Contains(t, out, "4 Point()\n    #0: 1\n    #1: 2\n    label=\"origin\"\n")
}

func TestTreeFormatter_Nested(t *testing.T) {
	doc := source.FromText("n.log", "{'a': [1, {'b': None}], 'c': []}", source.Options{})
	out := plain(format(t, NewTreeFormatter(FormatOptions{}), NewReport([]*source.Document{doc}, Metadata{})))

	want := "1 {2}\n" +
		"    a: [2]\n" +
		"      - 1\n" +
		"      - {1}\n" +
		"        b: null\n" +
		"    c: [0]\n"
	assert.Contains(t, out, want)
}

func TestHTMLFormatter_Format(t *testing.T) {
	out := format(t, NewHTMLFormatter(FormatOptions{Title: "build <logs>"}), createTestReport())

	assert.Contains(t, out, "<title>build &lt;logs&gt;</title>")
	assert.Contains(t, out, "5 lines from app.log")
	assert.Contains(t, out, `<dt>name</dt><dd><span class="string">Alice</span></dd>`)
	assert.Contains(t, out, `<dt>age</dt><dd><span class="number">30</span></dd>`)
	assert.Contains(t, out, `<span class="count">×3</span>`)
	assert.Contains(t, out, `<span class="placeholder">(empty)</span>`)
	assert.Contains(t, out, `<span class="type">Point</span>`)
	assert.Contains(t, out, `<span class="raw">&lt;b&gt;bold&lt;/b&gt; &amp; more</span>`)
	assert.NotContains(t, out, "<b>bold</b>")
}

func TestRenderLine_EscapesStructuredText(t *testing.T) {
	line := classify.New().Classify(`{"html": "<script>alert(1)</script>"}`)
	got := string(renderLine(line))

	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "&lt;script&gt;")
}

// plain removes terminal styling from each line of s.
func plain(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = classify.StripControl(line)
	}
	return strings.Join(lines, "\n")
}
