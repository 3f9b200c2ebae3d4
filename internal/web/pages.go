package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/codigovinario/vinario/internal/catalog"
	"github.com/codigovinario/vinario/internal/render"
	"github.com/codigovinario/vinario/internal/review"
)

//go:embed templates/*.html
var templateFS embed.FS

// Site carries the presentation settings every page needs.
type Site struct {
	Title    string
	Tagline  string
	Lang     string
	BasePath string
}

// sortLabels are the listing's order choices, in review.SortKeys order.
var sortLabels = map[review.SortKey]string{
	review.SortDateDesc:  "Orden: más recientes",
	review.SortDateAsc:   "Orden: más antiguas",
	review.SortScoreDesc: "Orden: puntaje (alto → bajo)",
	review.SortScoreAsc:  "Orden: puntaje (bajo → alto)",
	review.SortTitleAsc:  "Orden: título (A → Z)",
}

// SortLabel returns the UI label for k.
func SortLabel(k review.SortKey) string {
	if l, ok := sortLabels[k]; ok {
		return l
	}
	return string(k)
}

type optionItem struct {
	Filter   review.Filter
	Selected bool
}

type sortItem struct {
	Key      review.SortKey
	Label    string
	Selected bool
}

type cardItem struct {
	Slug   string
	Title  string
	Byline string
	Date   string
	Score  string
}

type listingPage struct {
	Site      Site
	Title     string
	Query     review.Query
	Filtered  bool
	Varietals []optionItem
	Regions   []optionItem
	Sorts     []sortItem
	Visible   int
	Total     int
	Reviews   []cardItem
}

type detailPage struct {
	Site   Site
	Title  string
	Review review.Summary
	Byline string
	Score  string
	Body   template.HTML
}

type notFoundPage struct {
	Site  Site
	Title string
}

// Pages renders the HTML views shared by the live server and the static
// export.
type Pages struct {
	site     Site
	listing  *template.Template
	detail   *template.Template
	notFound *template.Template
}

// NewPages parses the embedded templates.
func NewPages(site Site) (*Pages, error) {
	if site.Lang == "" {
		site.Lang = "es"
	}
	p := &Pages{site: site}
	var err error
	if p.listing, err = parsePage("listing.html"); err != nil {
		return nil, err
	}
	if p.detail, err = parsePage("detail.html"); err != nil {
		return nil, err
	}
	if p.notFound, err = parsePage("notfound.html"); err != nil {
		return nil, err
	}
	return p, nil
}

func parsePage(name string) (*template.Template, error) {
	t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return t, nil
}

// Site returns the settings the pages were built with.
func (p *Pages) Site() Site { return p.site }

// Listing writes the reviews listing for the view's current state.
func (p *Pages) Listing(w io.Writer, v *review.View) error {
	q := v.Query()
	page := listingPage{
		Site:      p.site,
		Query:     q,
		Filtered:  !q.IsDefault(),
		Varietals: optionItems(v.VarietalOptions(), q.Varietal),
		Regions:   optionItems(v.RegionOptions(), q.Region),
		Visible:   v.VisibleCount(),
		Total:     v.TotalCount(),
	}
	current := review.ParseSortKey(string(q.Sort))
	for _, k := range review.SortKeys {
		page.Sorts = append(page.Sorts, sortItem{Key: k, Label: SortLabel(k), Selected: k == current})
	}
	for _, r := range v.VisibleReviews() {
		page.Reviews = append(page.Reviews, cardItem{
			Slug:   r.Slug,
			Title:  r.Title,
			Byline: render.Byline(r),
			Date:   r.Date,
			Score:  render.Score(r),
		})
	}
	return execute(w, p.listing, page)
}

// Detail writes the page for a single review.
func (p *Pages) Detail(w io.Writer, doc catalog.Document) error {
	body, err := render.Markdown(doc.Body)
	if err != nil {
		return err
	}
	return execute(w, p.detail, detailPage{
		Site:   p.site,
		Title:  doc.Title,
		Review: doc.Summary,
		Byline: render.Byline(doc.Summary),
		Score:  render.Score(doc.Summary),
		Body:   body,
	})
}

// NotFound writes the page shown for unknown slugs.
func (p *Pages) NotFound(w io.Writer) error {
	return execute(w, p.notFound, notFoundPage{Site: p.site, Title: "Reseña no encontrada"})
}

func optionItems(choices []review.Choice, selected review.Filter) []optionItem {
	out := make([]optionItem, 0, len(choices))
	found := false
	for _, c := range choices {
		match := c.Filter == selected
		found = found || match
		out = append(out, optionItem{Filter: c.Filter, Selected: match})
	}
	// A value from the URL that no review carries still has to round-trip
	// through the form.
	if !found {
		out = append(out, optionItem{Filter: selected, Selected: true})
	}
	return out
}

// execute renders into a buffer first so a template error never leaves a
// half-written response.
func execute(w io.Writer, t *template.Template, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
