package review

import "golang.org/x/text/language"

// View binds a review collection to one listing's query state. Each setter
// changes exactly one field; readers always reflect the latest state. A View
// belongs to a single caller and is not safe for concurrent use.
type View struct {
	reviews []Summary
	locale  language.Tag
	query   Query

	options *Options
	visible []Summary
	fresh   bool
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithLocale sets the collation locale used by the title order.
func WithLocale(tag language.Tag) ViewOption {
	return func(v *View) { v.locale = tag }
}

// WithQuery starts the view from q instead of DefaultQuery.
func WithQuery(q Query) ViewOption {
	return func(v *View) { v.query = q }
}

// NewView creates a view over reviews with the default query. The slice is
// treated as read-only and is never modified.
func NewView(reviews []Summary, opts ...ViewOption) *View {
	v := &View{
		reviews: reviews,
		locale:  DefaultLocale,
		query:   DefaultQuery(),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Replace swaps in a new collection wholesale, keeping the query state.
func (v *View) Replace(reviews []Summary) {
	v.reviews = reviews
	v.options = nil
	v.fresh = false
}

// SetQuery updates the free-text query.
func (v *View) SetQuery(text string) {
	v.query.Text = text
	v.fresh = false
}

// SetVarietalFilter updates the varietal filter.
func (v *View) SetVarietalFilter(f Filter) {
	v.query.Varietal = f
	v.fresh = false
}

// SetRegionFilter updates the region filter.
func (v *View) SetRegionFilter(f Filter) {
	v.query.Region = f
	v.fresh = false
}

// SetSortKey updates the order.
func (v *View) SetSortKey(k SortKey) {
	v.query.Sort = k
	v.fresh = false
}

// ClearAll resets all four query fields in one step.
func (v *View) ClearAll() {
	v.query = DefaultQuery()
	v.fresh = false
}

// Query returns the current query state.
func (v *View) Query() Query { return v.query }

// VisibleReviews returns the filtered, ordered reviews. Callers must not
// modify the returned slice.
func (v *View) VisibleReviews() []Summary {
	if !v.fresh {
		v.visible = Apply(v.reviews, v.query, v.locale)
		v.fresh = true
	}
	return v.visible
}

// TotalCount is the size of the whole collection.
func (v *View) TotalCount() int { return len(v.reviews) }

// VisibleCount is the size of the filtered subset.
func (v *View) VisibleCount() int { return len(v.VisibleReviews()) }

// VarietalOptions returns the varietal filter choices, "all" first.
func (v *View) VarietalOptions() []Choice { return v.allOptions().Varietals }

// RegionOptions returns the region filter choices, "all" first.
func (v *View) RegionOptions() []Choice { return v.allOptions().Regions }

func (v *View) allOptions() *Options {
	if v.options == nil {
		o := DeriveOptions(v.reviews)
		v.options = &o
	}
	return v.options
}
