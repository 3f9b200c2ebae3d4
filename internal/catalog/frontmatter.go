package catalog

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/codigovinario/vinario/internal/review"
)

// reviewMeta holds the raw front matter of a review. Fields are untyped so a
// bare YAML date, a quoted score, or a numeric title still decode.
type reviewMeta struct {
	Title    any `yaml:"title" toml:"title" json:"title"`
	Date     any `yaml:"date" toml:"date" json:"date"`
	Winery   any `yaml:"winery" toml:"winery" json:"winery"`
	Varietal any `yaml:"varietal" toml:"varietal" json:"varietal"`
	Region   any `yaml:"region" toml:"region" json:"region"`
	Score    any `yaml:"score" toml:"score" json:"score"`
}

// parsedDoc is a review document split into metadata and body.
type parsedDoc struct {
	Summary review.Summary
	Body    string
	Err     error // front matter error; Body then holds the whole file
}

// parseDocument splits content into front matter and body and builds the
// summary for slug. A broken front matter block is reported through Err but
// still yields a usable summary with a humanized title.
func parseDocument(slug string, content []byte, locale language.Tag) parsedDoc {
	var meta reviewMeta
	body, err := frontmatter.Parse(bytes.NewReader(content), &meta)
	if err != nil {
		return parsedDoc{
			Summary: review.Summary{Slug: slug, Title: Humanize(slug, locale)},
			Body:    string(content),
			Err:     err,
		}
	}

	s := review.Summary{
		Slug:     slug,
		Title:    stringField(meta.Title),
		Date:     dateField(meta.Date),
		Winery:   stringField(meta.Winery),
		Varietal: stringField(meta.Varietal),
		Region:   stringField(meta.Region),
		Score:    scoreField(meta.Score),
	}
	if s.Title == "" {
		s.Title = Humanize(slug, locale)
	}
	return parsedDoc{Summary: s, Body: string(body)}
}

// Humanize turns a slug into a display title: "malbec-reserva_2020" becomes
// "Malbec Reserva 2020".
func Humanize(slug string, locale language.Tag) string {
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
	return cases.Title(locale).String(strings.Join(words, " "))
}

func stringField(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case time.Time:
		return formatDate(x)
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// dateField keeps dates in their sortable literal form. YAML and TOML
// decoders may hand back a time.Time for bare dates; those are rendered as
// YYYY-MM-DD, or RFC 3339 when they carry a time of day.
func dateField(v any) string {
	if t, ok := v.(time.Time); ok {
		return formatDate(t)
	}
	return stringField(v)
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

func scoreField(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint64:
		f = float64(x)
	case float64:
		f = x
	case float32:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(x, ",", ".")), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return review.Float(f)
}
