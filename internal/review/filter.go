package review

import "strings"

// Match reports whether s survives every filter stage of q. The stages are
// independent, so their order does not change the result.
func Match(s Summary, q Query) bool {
	if !q.Varietal.matches(s.Varietal) {
		return false
	}
	if !q.Region.matches(s.Region) {
		return false
	}
	if n := q.needle(); n != "" {
		return strings.Contains(s.haystack(), n)
	}
	return true
}

// FilterReviews returns the reviews matching q in input order. The input slice is
// left untouched; the result never aliases it.
func FilterReviews(reviews []Summary, q Query) []Summary {
	out := make([]Summary, 0, len(reviews))
	for _, r := range reviews {
		if Match(r, q) {
			out = append(out, r)
		}
	}
	return out
}
