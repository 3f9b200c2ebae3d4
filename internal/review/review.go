// Package review holds the wine review catalog model and the engine that
// derives what the listing shows: filter options, the filtered subset, and its
// order. Everything here is pure in-memory computation over a snapshot handed
// in by the caller.
package review

import "strings"

// Summary is the front matter of one review document, without its body.
type Summary struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Date     string   `json:"date,omitempty"` // YYYY-MM-DD; compared as a plain string
	Winery   string   `json:"winery,omitempty"`
	Varietal string   `json:"varietal,omitempty"`
	Region   string   `json:"region,omitempty"`
	Score    *float64 `json:"score,omitempty"`
}

// HasScore reports whether the review carries a numeric rating.
func (s Summary) HasScore() bool { return s.Score != nil }

// haystack is the lower-cased text the free-text query is matched against.
// Absent fields are skipped rather than contributing empty words.
func (s Summary) haystack() string {
	parts := make([]string, 0, 6)
	for _, f := range []string{s.Title, s.Winery, s.Varietal, s.Region, s.Date, s.Slug} {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Float returns a pointer to v. Handy for building summaries in code and tests.
func Float(v float64) *float64 { return &v }
