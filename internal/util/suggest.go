package util

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns the candidate closest to input by edit distance, ignoring
// case, or "" when no candidate is within a third of the input's length
// (minimum 2 edits).
func Suggest(input string, candidates []string) string {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return ""
	}
	limit := max(2, len([]rune(needle))/3)

	best := ""
	bestDist := limit + 1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// DidYouMean formats a suggestion hint, or returns "" when there is none.
func DidYouMean(input string, candidates []string) string {
	if s := Suggest(input, candidates); s != "" {
		return " (did you mean " + `"` + s + `"?)`
	}
	return ""
}
