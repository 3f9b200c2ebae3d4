package web

import (
	"github.com/codigovinario/vinario/internal/catalog"
	"github.com/codigovinario/vinario/internal/render"
	"github.com/codigovinario/vinario/internal/review"
)

// ListingPayload is the JSON form of a listing: what /api/reviews serves and
// what the static export writes to api/reviews.json.
type ListingPayload struct {
	Reviews []review.Summary `json:"reviews"`
	Visible int              `json:"visible"`
	Total   int              `json:"total"`
	Query   queryPayload     `json:"query"`
	Options optionsPayload   `json:"options"`
}

// queryPayload uses the URL parameter encoding: "" means no filter.
type queryPayload struct {
	Text     string `json:"q"`
	Varietal string `json:"varietal"`
	Region   string `json:"region"`
	Sort     string `json:"sort"`
}

type choicePayload struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type sortPayload struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type optionsPayload struct {
	Varietals []choicePayload `json:"varietals"`
	Regions   []choicePayload `json:"regions"`
	Sorts     []sortPayload   `json:"sorts"`
}

// ReviewPayload is the JSON form of one review: what /api/reviews/{slug}
// serves and what the static export writes to api/reviews/{slug}.json.
type ReviewPayload struct {
	Review review.Summary `json:"review"`
	HTML   string         `json:"html"`
}

// NewReviewPayload renders doc's body to HTML.
func NewReviewPayload(doc catalog.Document) (ReviewPayload, error) {
	html, err := render.Markdown(doc.Body)
	if err != nil {
		return ReviewPayload{}, err
	}
	return ReviewPayload{Review: doc.Summary, HTML: string(html)}, nil
}

// NewListingPayload snapshots v's current state.
func NewListingPayload(v *review.View) ListingPayload {
	q := v.Query()
	p := ListingPayload{
		Reviews: v.VisibleReviews(),
		Visible: v.VisibleCount(),
		Total:   v.TotalCount(),
		Query: queryPayload{
			Text:     q.Text,
			Varietal: q.Varietal.Param(),
			Region:   q.Region.Param(),
			Sort:     string(review.ParseSortKey(string(q.Sort))),
		},
		Options: optionsPayload{
			Varietals: choicePayloads(v.VarietalOptions()),
			Regions:   choicePayloads(v.RegionOptions()),
		},
	}
	for _, k := range review.SortKeys {
		p.Options.Sorts = append(p.Options.Sorts, sortPayload{Key: string(k), Label: SortLabel(k)})
	}
	return p
}

func choicePayloads(cs []review.Choice) []choicePayload {
	out := make([]choicePayload, 0, len(cs))
	for _, c := range cs {
		out = append(out, choicePayload{Label: c.Label(), Value: c.Filter.Param()})
	}
	return out
}
