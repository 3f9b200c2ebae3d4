// Package catalog loads wine reviews from a content directory. Each review is
// one markdown (or MDX) file whose front matter carries the listing metadata;
// the file name without its extension is the review's slug.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/codigovinario/vinario/internal/review"
)

// DefaultExtensions are the content file extensions recognised when Options
// leaves them unset. Earlier entries win when two files share a slug.
var DefaultExtensions = []string{".mdx", ".md"}

// Options controls how a content directory is read.
type Options struct {
	Extensions []string
	Locale     language.Tag // used for humanized fallback titles
	Logger     *zap.Logger
}

func (o Options) withDefaults() Options {
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultExtensions
	}
	if o.Locale == (language.Tag{}) {
		o.Locale = review.DefaultLocale
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Catalog is an immutable snapshot of the content directory.
type Catalog struct {
	Dir      string           `json:"-"`
	Reviews  []review.Summary `json:"reviews"`
	LoadedAt time.Time        `json:"loaded_at"`
}

// Len returns the number of reviews in the snapshot.
func (c Catalog) Len() int { return len(c.Reviews) }

// Load reads every review file directly inside dir, in file name order.
// A directory that cannot be read, missing included, is an error. Files with
// unparseable front matter are kept with a fallback title and logged.
func Load(dir string, opts Options) (Catalog, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	files, err := contentFiles(dir, opts.Extensions)
	if err != nil {
		return Catalog{}, err
	}

	files, dropped := dedupe(files)
	for _, f := range dropped {
		log.Warn("duplicate slug, skipping file", zap.String("slug", f.slug), zap.String("file", f.name))
	}

	reviews := make([]review.Summary, 0, len(files))
	for _, f := range files {
		content, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return Catalog{}, fmt.Errorf("read %s: %w", f.name, err)
		}
		doc := parseDocument(f.slug, content, opts.Locale)
		if doc.Err != nil {
			log.Warn("front matter unreadable, using fallback title",
				zap.String("file", f.name), zap.Error(doc.Err))
		}
		reviews = append(reviews, doc.Summary)
	}

	log.Debug("catalog loaded", zap.String("dir", dir), zap.Int("reviews", len(reviews)))
	return Catalog{Dir: dir, Reviews: reviews, LoadedAt: time.Now()}, nil
}

// StaticParams lists the slug of every review file in dir, for pre-rendering
// one page per review.
func StaticParams(dir string, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	files, err := contentFiles(dir, opts.Extensions)
	if err != nil {
		return nil, err
	}
	files, _ = dedupe(files)
	slugs := make([]string, len(files))
	for i, f := range files {
		slugs[i] = f.slug
	}
	return slugs, nil
}

type contentFile struct {
	name string
	slug string
	rank int // index of the matched extension; lower wins on slug clashes
}

// contentFiles returns the review files in dir sorted by name. Hidden files
// and subdirectories are ignored.
func contentFiles(dir string, exts []string) ([]contentFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir %s: %w", dir, err)
	}

	var files []contentFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		for rank, ext := range exts {
			if slug, ok := trimExt(name, ext); ok {
				files = append(files, contentFile{name: name, slug: slug, rank: rank})
				break
			}
		}
	}
	return files, nil
}

// dedupe keeps one file per slug, preferring the earlier extension so that
// listing and ReadDocument agree on which file backs a slug. Name order is
// preserved.
func dedupe(files []contentFile) (kept, dropped []contentFile) {
	best := make(map[string]contentFile, len(files))
	for _, f := range files {
		if b, ok := best[f.slug]; !ok || f.rank < b.rank {
			best[f.slug] = f
		}
	}
	for _, f := range files {
		if best[f.slug].name == f.name {
			kept = append(kept, f)
		} else {
			dropped = append(dropped, f)
		}
	}
	return kept, dropped
}

// SlugFor strips a recognised extension from a file name. It reports false
// for files that are not review documents.
func SlugFor(name string, exts []string) (string, bool) {
	for _, ext := range exts {
		if slug, ok := trimExt(name, ext); ok {
			return slug, true
		}
	}
	return "", false
}

func trimExt(name, ext string) (string, bool) {
	slug, ok := strings.CutSuffix(name, ext)
	if !ok || slug == "" {
		return "", false
	}
	return slug, true
}
