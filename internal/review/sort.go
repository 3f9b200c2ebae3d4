package review

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale drives title collation when the caller does not pick one.
var DefaultLocale = language.Spanish

// Sort returns a new slice holding reviews in the order named by key. Ties
// keep their input order. Titles are compared with the collation rules of
// locale; dates are compared as plain strings, so they only sort
// chronologically when stored as YYYY-MM-DD.
func Sort(reviews []Summary, key SortKey, locale language.Tag) []Summary {
	out := slices.Clone(reviews)
	if out == nil {
		out = []Summary{}
	}
	slices.SortStableFunc(out, comparator(key, locale))
	return out
}

func comparator(key SortKey, locale language.Tag) func(a, b Summary) int {
	switch key {
	case SortTitleAsc:
		// A Collator keeps scratch buffers; one per sort call.
		c := collate.New(locale)
		return func(a, b Summary) int {
			return c.CompareString(a.Title, b.Title)
		}
	case SortScoreDesc:
		return func(a, b Summary) int {
			return cmp.Compare(scoreOr(b, math.Inf(-1)), scoreOr(a, math.Inf(-1)))
		}
	case SortScoreAsc:
		return func(a, b Summary) int {
			return cmp.Compare(scoreOr(a, math.Inf(1)), scoreOr(b, math.Inf(1)))
		}
	case SortDateAsc:
		return func(a, b Summary) int {
			return strings.Compare(a.Date, b.Date)
		}
	default:
		return func(a, b Summary) int {
			return strings.Compare(b.Date, a.Date)
		}
	}
}

func scoreOr(s Summary, missing float64) float64 {
	if s.Score == nil || math.IsNaN(*s.Score) {
		return missing
	}
	return *s.Score
}

// Apply runs the whole derivation: filter reviews by q, then order the
// survivors by q.Sort. It is a pure function of its arguments.
func Apply(reviews []Summary, q Query, locale language.Tag) []Summary {
	return Sort(FilterReviews(reviews, q), q.sortKey(), locale)
}
