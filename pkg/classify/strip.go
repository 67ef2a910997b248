package classify

import (
	"regexp"
	"strings"
)

var (
	// OSC sequences such as window title updates: ESC ] ... (BEL | ESC \)
	oscPattern = regexp.MustCompile(`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)?`)
	// CSI sequences such as colors and cursor movement: ESC [ params final
	csiPattern = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]`)
	// Remaining two-byte escapes and a dangling ESC.
	escPattern = regexp.MustCompile(`\x1b[@-Z\\-_]?`)
	// C0 controls except tab, plus DEL and C1 controls.
	ctrlPattern = regexp.MustCompile(`[\x00-\x08\x0a-\x1f\x7f\x{80}-\x{9f}]`)
)

// StripControl removes terminal escape sequences and control characters.
// Tabs are kept.
func StripControl(s string) string {
	if !strings.ContainsFunc(s, isControl) {
		return s
	}
	s = oscPattern.ReplaceAllString(s, "")
	s = csiPattern.ReplaceAllString(s, "")
	s = escPattern.ReplaceAllString(s, "")
	return ctrlPattern.ReplaceAllString(s, "")
}

// normalizeLine is the comparison form used by dedup.
func normalizeLine(s string) string {
	return strings.TrimSpace(StripControl(s))
}

func isControl(r rune) bool {
	return (r < 0x20 && r != '\t') || (r >= 0x7f && r <= 0x9f)
}
