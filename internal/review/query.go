package review

import "strings"

// AllLabel is the label of the "no filter" entry that heads every option list.
const AllLabel = "all"

// Filter is a categorical filter on varietal or region. The zero value
// matches everything. The "all" choice is carried by a flag, not by the string
// space, so a real value literally named "all" stays selectable.
type Filter struct {
	value string
	set   bool
}

// Any returns the filter that matches every review.
func Any() Filter { return Filter{} }

// Only returns a filter matching reviews whose field equals v exactly.
func Only(v string) Filter { return Filter{value: v, set: true} }

// ParseFilter maps a raw form or flag value to a Filter. The empty string
// means no filter; anything else is an exact value.
func ParseFilter(raw string) Filter {
	if raw == "" {
		return Any()
	}
	return Only(raw)
}

// IsAll reports whether the filter lets every review through.
func (f Filter) IsAll() bool { return !f.set }

// Value returns the exact value the filter selects, or "" for Any.
func (f Filter) Value() string { return f.value }

// Param is the inverse of ParseFilter, used when building URLs.
func (f Filter) Param() string {
	if !f.set {
		return ""
	}
	return f.value
}

func (f Filter) String() string {
	if !f.set {
		return AllLabel
	}
	return f.value
}

func (f Filter) matches(field string) bool {
	return !f.set || field == f.value
}

// SortKey selects one of the listing orders.
type SortKey string

const (
	SortDateDesc  SortKey = "date_desc"
	SortDateAsc   SortKey = "date_asc"
	SortScoreDesc SortKey = "score_desc"
	SortScoreAsc  SortKey = "score_asc"
	SortTitleAsc  SortKey = "title_asc"
)

// DefaultSort is the order a fresh listing opens with: newest first.
const DefaultSort = SortDateDesc

// SortKeys lists every supported order in the sequence the UI offers them.
var SortKeys = []SortKey{SortDateDesc, SortDateAsc, SortScoreDesc, SortScoreAsc, SortTitleAsc}

// ParseSortKey returns the key named by raw, falling back to DefaultSort for
// empty or unknown input.
func ParseSortKey(raw string) SortKey {
	k := SortKey(strings.TrimSpace(raw))
	if k.Valid() {
		return k
	}
	return DefaultSort
}

// Valid reports whether k is one of SortKeys.
func (k SortKey) Valid() bool {
	for _, s := range SortKeys {
		if k == s {
			return true
		}
	}
	return false
}

// Query is the listing's working state. Every combination of fields is valid.
type Query struct {
	Text     string
	Varietal Filter
	Region   Filter
	Sort     SortKey
}

// DefaultQuery is the state a listing mounts with and ClearAll returns to.
func DefaultQuery() Query {
	return Query{Varietal: Any(), Region: Any(), Sort: DefaultSort}
}

// IsDefault reports whether q shows the full collection in default order.
func (q Query) IsDefault() bool {
	return strings.TrimSpace(q.Text) == "" && q.Varietal.IsAll() && q.Region.IsAll() && q.sortKey() == DefaultSort
}

func (q Query) sortKey() SortKey {
	if q.Sort.Valid() {
		return q.Sort
	}
	return DefaultSort
}

// needle is the normalised free-text query; "" disables the text stage.
func (q Query) needle() string {
	return strings.ToLower(strings.TrimSpace(q.Text))
}
