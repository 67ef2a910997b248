package classify

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/loglens/pkg/literal"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		kind     Kind
		strategy string
		text     string
		want     any
	}{
		{
			name:     "blank",
			line:     "  \t ",
			kind:     KindEmpty,
			strategy: StrategyEmpty,
		},
		{
			name:     "only escape sequences",
			line:     "\x1b[0m\x1b]0;title\x07",
			kind:     KindEmpty,
			strategy: StrategyEmpty,
		},
		{
			name:     "curl command",
			line:     `curl -X POST https://api.test/x -H 'Content-Type: application/json' -d '{"a":1}'`,
			kind:     KindStructured,
			strategy: StrategyCommand,
			want: map[string]any{
				"$type": "curl",
				"args":  []any{},
				"kwargs": map[string]any{
					"method":  "POST",
					"url":     "https://api.test/x",
					"headers": map[string]any{"Content-Type": "application/json"},
					"body":    map[string]any{"a": 1.0},
				},
			},
		},
		{
			name:     "strict json",
			line:     `{"level":"info","ok":true}`,
			kind:     KindStructured,
			strategy: StrategyJSON,
			want:     map[string]any{"level": "info", "ok": true},
		},
		{
			name:     "constructor call",
			line:     "Point(1, 2, label='origin')",
			kind:     KindStructured,
			strategy: StrategyLiteral,
			want: map[string]any{
				"$type":  "Point",
				"args":   []any{1.0, 2.0},
				"kwargs": map[string]any{"label": "origin"},
			},
		},
		{
			name:     "python dict",
			line:     "{'a': [1, None, True]}",
			kind:     KindStructured,
			strategy: StrategyLiteral,
			want:     map[string]any{"a": []any{1.0, nil, true}},
		},
		{
			name:     "quoted string",
			line:     "'hello'",
			kind:     KindStructured,
			strategy: StrategyLiteral,
			want:     "hello",
		},
		{
			name:     "bare word is raw",
			line:     "ping",
			kind:     KindRaw,
			strategy: StrategyLiteral,
			text:     "ping",
		},
		{
			name:     "keyword arguments",
			line:     "name='Alice', age=30",
			kind:     KindStructured,
			strategy: StrategyKeywords,
			want:     map[string]any{"name": "Alice", "age": 30.0},
		},
		{
			name:     "key value segments",
			line:     "user=bob; status: active; retries=3",
			kind:     KindStructured,
			strategy: StrategySegments,
			want:     map[string]any{"user": "bob", "status": "active", "retries": 3.0},
		},
		{
			name:     "segments with extras",
			line:     "Started worker; pid=42",
			kind:     KindStructured,
			strategy: StrategySegments,
			want:     map[string]any{"pid": 42.0, "extras": []any{"Started worker"}},
		},
		{
			name:     "several literal extras",
			line:     "[1]; 'two'",
			kind:     KindStructured,
			strategy: StrategySegments,
			want:     []any{[]any{1.0}, "two"},
		},
		{
			name:     "colored key value",
			line:     "\x1b[31merror\x1b[0m: boom",
			kind:     KindStructured,
			strategy: StrategySegments,
			want:     map[string]any{"error": "boom"},
		},
		{
			name:     "prose",
			line:     "disk full on /dev/sda1",
			kind:     KindRaw,
			strategy: StrategySegments,
			text:     "disk full on /dev/sda1",
		},
		{
			name:     "unbalanced literal",
			line:     "[1, 2",
			kind:     KindRaw,
			strategy: StrategySegments,
			text:     "[1, 2",
		},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.line)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.strategy, got.Strategy)
			assert.Equal(t, tt.line, got.Original)
			assert.Equal(t, 1, got.Count)
			if tt.kind == KindRaw {
				assert.Equal(t, tt.text, got.Text)
			}
			if tt.kind == KindStructured {
				if diff := cmp.Diff(tt.want, got.Value.Interface()); diff != "" {
					t.Errorf("Classify(%q) value mismatch (-want +got):\n%s", tt.line, diff)
				}
			}
		})
	}
}

func TestClassify_KeepsMappingOrder(t *testing.T) {
	got := New().Classify("z=1; a=2; m=3")
	require.Equal(t, KindStructured, got.Kind)
	assert.Equal(t, []string{"z", "a", "m"}, got.Value.Mapping().Keys())
}

func TestClassify_Profiles(t *testing.T) {
	extended := New(WithProfile(literal.Extended)).Classify(`"x"`)
	assert.Equal(t, KindStructured, extended.Kind)
	s, _ := extended.Value.Str()
	assert.Equal(t, "x", s)

	python := New(WithProfile(literal.Python)).Classify(`"x"`)
	assert.Equal(t, KindRaw, python.Kind)
	assert.Equal(t, `"x"`, python.Text)

	// Not JSON, so the literal grammar decides what null means.
	lower := New(WithProfile(literal.Python)).Classify("[null, 'x']")
	assert.Equal(t, KindStructured, lower.Kind)
	assert.Equal(t, StrategyLiteral, lower.Strategy)
	assert.Equal(t, []any{"null", "x"}, lower.Value.Interface())

	keyword := New(WithProfile(literal.Extended)).Classify("[null, 'x']")
	assert.Equal(t, []any{nil, "x"}, keyword.Value.Interface())
}

func TestClassify_Total(t *testing.T) {
	inputs := []string{
		"",
		`\`,
		"'",
		`"`,
		"((((",
		"))))",
		strings.Repeat("[", 10000),
		strings.Repeat("f(", 5000),
		"curl ",
		"curl -d",
		"curl -H 'broken",
		"{'a'",
		"{'a': }",
		"a=;b",
		";;;",
		"=",
		":x",
		"\xff\xfe\xfd",
		"é=1",
		"x=1e999",
		"[1e999]",
		"Point(a=1, 2",
		"\x00\x01\x02",
		"\x1b[",
		"\x1b]0;unterminated",
	}

	c := New()
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			got := c.Classify(in)
			assert.Contains(t, []Kind{KindEmpty, KindRaw, KindStructured}, got.Kind, "input %q", in)
			assert.NotEmpty(t, got.Strategy, "input %q", in)
		}, "input %q", in)
	}
}

func TestClassify_Observer(t *testing.T) {
	var seen []string
	c := New(WithObserver(func(strategy string) {
		seen = append(seen, strategy)
	}))

	c.ClassifyText("ping\nx=1\n\n")
	assert.Equal(t, []string{StrategyLiteral, StrategyKeywords, StrategyEmpty}, seen)
}

func TestClassify_Concurrent(t *testing.T) {
	c := New()
	want := c.Classify("Point(1, 2, label='origin')")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got := c.Classify("Point(1, 2, label='origin')")
				if !want.Value.Equal(got.Value) {
					t.Errorf("concurrent Classify() returned a different value")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestClassifyAll(t *testing.T) {
	lines := []string{
		"ping",
		"ping",
		"ping",
		`curl -X GET \`,
		`  https://api.test/health`,
		"",
		"",
		"done",
	}

	got := New().ClassifyAll(lines)
	require.Len(t, got, 5)

	assert.Equal(t, KindRaw, got[0].Kind)
	assert.Equal(t, "ping", got[0].Text)
	assert.Equal(t, 3, got[0].Count)

	assert.Equal(t, StrategyCommand, got[1].Strategy)
	url, _ := got[1].Value.Record().Fields.Get("url")
	s, _ := url.Str()
	assert.Equal(t, "https://api.test/health", s)

	assert.Equal(t, KindEmpty, got[2].Kind)
	assert.Equal(t, KindEmpty, got[3].Kind)
	assert.Equal(t, "done", got[4].Text)
	assert.Equal(t, 1, got[4].Count)
}

func TestClassifyAll_AnnotatedSingleton(t *testing.T) {
	got := New().ClassifyAll([]string{"retrying (×2)", "done"})
	require.Len(t, got, 2)
	assert.Equal(t, "retrying (×2)", got[0].Text)
	assert.Equal(t, 1, got[0].Count)

	got = New().ClassifyAll([]string{"retrying (×2)", "retrying"})
	require.Len(t, got, 1)
	assert.Equal(t, "retrying", got[0].Text)
	assert.Equal(t, 3, got[0].Count)
}

func TestClassifyAll_PreprocessingDisabled(t *testing.T) {
	c := New(WithDedup(false), WithContinuations(false))
	got := c.ClassifyAll([]string{"ping", "ping", `a \`, "b"})
	require.Len(t, got, 4)
	for _, l := range got {
		assert.Equal(t, 1, l.Count)
	}
	assert.Equal(t, `a \`, got[2].Text)
}

func TestClassifyText(t *testing.T) {
	got := New().ClassifyText("a=1\r\nb=2\n")
	require.Len(t, got, 2)
	assert.Equal(t, "a=1", got[0].Original)
	assert.Equal(t, "b=2", got[1].Original)

	assert.Empty(t, New().ClassifyText(""))
}

func TestLine_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(New().Classify("x=1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"structured","text":"x=1","value":{"x":1},"original":"x=1","count":1,"strategy":"keywords"}`, string(data))

	data, err = json.Marshal(New().Classify(""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"empty","original":"","count":1,"strategy":"empty"}`, string(data))
}

func TestSegment(t *testing.T) {
	c := New()

	m := c.Segment("model=gpt-4; temperature=0.2; streaming")
	require.NotNil(t, m)
	assert.Equal(t, map[string]any{"model": "gpt-4", "temperature": 0.2}, m.Interface())

	assert.Nil(t, c.Segment("no pairs here"))
}

func TestSplitSegments(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a=1;b=2", []string{"a=1", "b=2"}},
		{" ; a ;; ", []string{"a"}},
		{`a='x;y'; b="p;q"`, []string{`a='x;y'`, `b="p;q"`}},
		{`a='it\'s;'; b=2`, []string{`a='it\'s;'`, "b=2"}},
		{"", nil},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitSegments(tt.in)); diff != "" {
			t.Errorf("splitSegments(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestSplitKeyValue(t *testing.T) {
	tests := []struct {
		in    string
		key   string
		value string
		ok    bool
	}{
		{"a=1", "a", "1", true},
		{"status : ok", "status", "ok", true},
		{"url=http://x", "url", "http://x", true},
		{`a\=b=c`, `a\=b`, "c", true},
		{"=x", "", "", false},
		{" =x", "", "", false},
		{"plain", "", "", false},
	}

	for _, tt := range tests {
		key, value, ok := splitKeyValue(tt.in)
		if key != tt.key || value != tt.value || ok != tt.ok {
			t.Errorf("splitKeyValue(%q) = (%q, %q, %v), want (%q, %q, %v)", tt.in, key, value, ok, tt.key, tt.value, tt.ok)
		}
	}
}
