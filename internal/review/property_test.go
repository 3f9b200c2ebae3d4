package review

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
)

func catalogFixture() []Summary {
	return []Summary{
		{Slug: "catena-malbec-2021", Title: "Catena Malbec", Date: "2024-03-02", Winery: "Catena Zapata", Varietal: "Malbec", Region: "Mendoza", Score: Float(92)},
		{Slug: "colome-torrontes", Title: "Colomé Torrontés", Date: "2023-11-20", Winery: "Colomé", Varietal: "Torrontés", Region: "Salta", Score: Float(88)},
		{Slug: "zuccardi-concreto", Title: "Zuccardi Concreto", Date: "2024-03-02", Winery: "Zuccardi", Varietal: "Malbec", Region: "Mendoza"},
		{Slug: "achaval-ferrer-quimera", Title: "Quimera", Winery: "Achával-Ferrer", Region: "Mendoza", Score: Float(94)},
		{Slug: "humberto-canale-pinot", Title: "Humberto Canale Pinot Noir", Date: "2022-07-15", Winery: "Humberto Canale", Varietal: "Pinot Noir", Region: "Patagonia", Score: Float(88)},
		{Slug: "el-esteco-cabernet", Title: "el Esteco Cabernet", Date: "2023-01-09", Varietal: "Cabernet Sauvignon", Region: "Salta", Score: Float(90.5)},
	}
}

// queries enumerates every filter combination the fixture offers against a
// handful of text queries and every order.
func queries(reviews []Summary) []Query {
	opts := DeriveOptions(reviews)
	texts := []string{"", "  ", "MALBEC", "salta", "2024", "canale-pinot", "nothing matches this"}
	var out []Query
	for _, v := range opts.Varietals {
		for _, r := range opts.Regions {
			for _, text := range texts {
				for _, k := range SortKeys {
					out = append(out, Query{Text: text, Varietal: v.Filter, Region: r.Filter, Sort: k})
				}
			}
		}
	}
	return out
}

func TestApply_VisibleIsSubsetOfCollection(t *testing.T) {
	reviews := catalogFixture()
	bySlug := make(map[string]Summary, len(reviews))
	for _, r := range reviews {
		bySlug[r.Slug] = r
	}

	for _, q := range queries(reviews) {
		got := Apply(reviews, q, language.Spanish)
		if len(got) > len(reviews) {
			t.Fatalf("%+v: visible %d > total %d", q, len(got), len(reviews))
		}
		seen := make(map[string]bool)
		for _, r := range got {
			orig, ok := bySlug[r.Slug]
			if !ok {
				t.Fatalf("%+v: unknown review %q in result", q, r.Slug)
			}
			if diff := cmp.Diff(orig, r); diff != "" {
				t.Fatalf("%+v: review %q altered:\n%s", q, r.Slug, diff)
			}
			if seen[r.Slug] {
				t.Fatalf("%+v: review %q duplicated", q, r.Slug)
			}
			seen[r.Slug] = true
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	reviews := catalogFixture()
	for _, q := range queries(reviews) {
		first := slugs(Apply(reviews, q, language.Spanish))
		second := slugs(Apply(reviews, q, language.Spanish))
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("%+v: results differ between runs:\n%s", q, diff)
		}
	}
}

func TestFilter_StagesCommute(t *testing.T) {
	reviews := catalogFixture()
	for _, q := range queries(reviews) {
		want := slugs(FilterReviews(reviews, q))

		onlyText := Query{Text: q.Text}
		onlyVarietal := Query{Varietal: q.Varietal}
		onlyRegion := Query{Region: q.Region}

		orders := [][]Query{
			{onlyText, onlyVarietal, onlyRegion},
			{onlyRegion, onlyText, onlyVarietal},
			{onlyVarietal, onlyRegion, onlyText},
		}
		for _, stages := range orders {
			got := reviews
			for _, s := range stages {
				got = FilterReviews(got, s)
			}
			if diff := cmp.Diff(want, slugs(got)); diff != "" {
				t.Fatalf("%+v: stage order changed result:\n%s", q, diff)
			}
		}
	}
}

func TestSort_IsPermutationOfFiltered(t *testing.T) {
	reviews := catalogFixture()
	for _, q := range queries(reviews) {
		filtered := FilterReviews(reviews, q)
		sorted := Apply(reviews, q, language.Spanish)
		if len(filtered) != len(sorted) {
			t.Fatalf("%+v: sort changed length %d -> %d", q, len(filtered), len(sorted))
		}
		count := make(map[string]int)
		for _, r := range filtered {
			count[r.Slug]++
		}
		for _, r := range sorted {
			count[r.Slug]--
		}
		for slug, n := range count {
			if n != 0 {
				t.Fatalf("%+v: slug %q count off by %d", q, slug, n)
			}
		}
	}
}

func TestMatch_AgreesWithFilter(t *testing.T) {
	reviews := catalogFixture()
	for _, q := range queries(reviews) {
		var want []string
		for _, r := range reviews {
			if Match(r, q) {
				want = append(want, r.Slug)
			}
		}
		got := slugs(FilterReviews(reviews, q))
		if len(want) == 0 && len(got) == 0 {
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%+v: Match disagrees with FilterReviews:\n%s", q, diff)
		}
	}
}

func TestDeriveOptions_DistinctSortedObserved(t *testing.T) {
	reviews := catalogFixture()
	opts := DeriveOptions(reviews)

	if diff := cmp.Diff([]string{"all", "Cabernet Sauvignon", "Malbec", "Pinot Noir", "Torrontés"}, Labels(opts.Varietals)); diff != "" {
		t.Fatalf("varietals (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"all", "Mendoza", "Patagonia", "Salta"}, Labels(opts.Regions)); diff != "" {
		t.Fatalf("regions (-want +got):\n%s", diff)
	}

	// Every non-sentinel option selects at least one review.
	for _, c := range append(opts.Varietals[1:], opts.Regions[1:]...) {
		found := false
		for _, r := range reviews {
			if r.Varietal == c.Filter.Value() || r.Region == c.Filter.Value() {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("option %q matches no review", c.Label())
		}
	}
}

func TestFilter_WhitespaceQueryIsNoFilter(t *testing.T) {
	reviews := catalogFixture()
	got := FilterReviews(reviews, Query{Text: " \t "})
	if len(got) != len(reviews) {
		t.Fatalf("blank query filtered to %d of %d", len(got), len(reviews))
	}
}

func TestFilter_QuerySpansFieldBoundaries(t *testing.T) {
	// Fields are joined by single spaces, so a query may straddle two of them.
	reviews := []Summary{{Slug: "s", Title: "Gran Reserva", Winery: "Norton"}}
	if got := FilterReviews(reviews, Query{Text: "reserva norton"}); len(got) != 1 {
		t.Fatalf("expected cross-field match, got %d", len(got))
	}
}
