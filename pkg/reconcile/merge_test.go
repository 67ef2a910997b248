package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want string
	}{
		{"empty accumulator", "", "abc", "abc"},
		{"empty fragment", "abc", "", "abc"},
		{"same text", "abc", "abc", "abc"},
		{"covered fragment", "hello world", "lo wo", "hello world"},
		{"growing fragment", "hello", "hello world", "hello world"},
		{"overlap splice", "Hello wor", "world, how", "Hello world, how"},
		{"single char overlap", "abc", "cde", "abcde"},
		{"disjoint words", "foo", "bar", "foo bar"},
		{"trailing space", "foo ", "bar", "foo bar"},
		{"leading newline", "foo", "\nbar", "foo\nbar"},
		{"multibyte overlap", "naï", "ïve", "naïve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.a, tt.b))
		})
	}
}

func TestMerge_ThreeFragments(t *testing.T) {
	got := ""
	for _, fragment := range []string{"Hello wor", "world, how", "how are you"} {
		got = Merge(got, fragment)
	}
	assert.Equal(t, "Hello world, how are you", got)
}

func TestMerge_Laws(t *testing.T) {
	samples := []string{"", "a", "ab", "abc", "hello world", "  padded ", "ïé", "xyzzy", "world"}

	for _, a := range samples {
		assert.Equal(t, a, Merge(a, ""), "Merge(%q, \"\")", a)
		assert.Equal(t, a, Merge("", a), "Merge(\"\", %q)", a)
		assert.Equal(t, a, Merge(a, a), "Merge(%q, %q)", a, a)

		for _, x := range samples {
			assert.Equal(t, a+x, Merge(a, a+x), "Merge(%q, %q)", a, a+x)

			got := Merge(a, x)
			assert.LessOrEqual(t, len(got), len(a)+len(x)+1, "Merge(%q, %q) = %q", a, x, got)
		}
	}
}
