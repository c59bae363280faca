// Package strings holds small helpers for cleaning user supplied lists.
package strings

import "strings"

// DedupeAndTrim trims every entry and drops blanks and repeats, keeping the
// first occurrence in place. Comparison is case sensitive because the lists
// it cleans hold URLs.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
