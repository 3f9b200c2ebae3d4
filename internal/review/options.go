package review

import "sort"

// Choice is one entry of a filter control.
type Choice struct {
	Filter Filter
}

// Label is the text the control shows; the sentinel reads "all".
func (c Choice) Label() string { return c.Filter.String() }

// Options holds the selectable values for both categorical filters.
type Options struct {
	Varietals []Choice
	Regions   []Choice
}

// DeriveOptions collects the distinct non-empty varietals and regions seen in
// reviews, each list sorted ascending and headed by the "all" choice.
func DeriveOptions(reviews []Summary) Options {
	return Options{
		Varietals: choices(reviews, func(s Summary) string { return s.Varietal }),
		Regions:   choices(reviews, func(s Summary) string { return s.Region }),
	}
}

func choices(reviews []Summary, field func(Summary) string) []Choice {
	seen := make(map[string]bool)
	var values []string
	for _, r := range reviews {
		v := field(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)

	out := make([]Choice, 0, len(values)+1)
	out = append(out, Choice{Filter: Any()})
	for _, v := range values {
		out = append(out, Choice{Filter: Only(v)})
	}
	return out
}

// Labels projects choices onto their display strings.
func Labels(cs []Choice) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Label()
	}
	return out
}
