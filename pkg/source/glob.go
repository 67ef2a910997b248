package source

import (
	"fmt"
	"path/filepath"
	"slices"
)

// ExpandGlobs expands file paths and glob patterns into a sorted,
// deduplicated list. A pattern that matches nothing is kept as a literal path
// so that opening it later reports a useful error.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, pattern := range patterns {
		if pattern == "" {
			return nil, ErrEmptyPath
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			add(pattern)
			continue
		}
		for _, match := range matches {
			add(match)
		}
	}

	slices.Sort(result)
	return result, nil
}
