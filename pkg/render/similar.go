package render

import (
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similar returns the normalized Levenshtein similarity of s and t,
// 1 - distance/maxLen, rounded to 3 decimals. Two empty strings are
// identical; an empty string is unlike any non-empty one.
func Similar(s, t string) float64 {
	return SimilarPrecision(s, t, 3)
}

// SimilarPrecision is Similar rounded to precision decimals.
func SimilarPrecision(s, t string, precision int) float64 {
	if s == t {
		return 1
	}
	if s == "" || t == "" {
		return 0
	}
	longest := max(utf8.RuneCountInString(s), utf8.RuneCountInString(t))
	d := levenshtein.ComputeDistance(s, t)
	scale := math.Pow(10, float64(precision))
	return math.Round((1-float64(d)/float64(longest))*scale) / scale
}
