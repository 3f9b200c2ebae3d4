// Package export pre-renders the reviews section to a directory of static
// files that any web server can host.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/codigovinario/vinario/internal/catalog"
	"github.com/codigovinario/vinario/internal/review"
	"github.com/codigovinario/vinario/internal/web"
)

// Options controls a build.
type Options struct {
	OutputDir string
	StaticDir string // copied to <out>/static when present
	Web       web.Options
}

// Stats summarises a finished build.
type Stats struct {
	Pages       int
	Reviews     int
	StaticFiles int
	Duration    time.Duration
}

// Build renders the listing (default query), one page per review, and the
// JSON API into opts.OutputDir. The directory is emptied first.
func Build(store *catalog.Store, opts Options, logger *zap.Logger) (Stats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	var stats Stats

	out := opts.OutputDir
	if err := checkOutputDir(out, store.Dir()); err != nil {
		return stats, err
	}
	if err := os.RemoveAll(out); err != nil {
		return stats, fmt.Errorf("clean output dir: %w", err)
	}

	pages, err := web.NewPages(opts.Web.Site)
	if err != nil {
		return stats, err
	}
	base := strings.Trim(pages.Site().BasePath, "/")
	snap := store.Snapshot()
	locale := opts.Web.Locale
	if locale == language.Und {
		locale = review.DefaultLocale
	}

	view := review.NewView(snap.Reviews, review.WithLocale(locale))
	if err := writeFile(filepath.Join(out, base, "index.html"), func(w io.Writer) error {
		return pages.Listing(w, view)
	}); err != nil {
		return stats, err
	}
	stats.Pages++

	if err := writeFile(filepath.Join(out, "index.html"), func(w io.Writer) error {
		_, err := fmt.Fprintf(w, redirectHTML, "/"+base, "/"+base)
		return err
	}); err != nil {
		return stats, err
	}

	if err := writeJSONFile(filepath.Join(out, "api", "reviews.json"), web.NewListingPayload(view)); err != nil {
		return stats, err
	}

	slugs, err := catalog.StaticParams(store.Dir(), store.Options())
	if err != nil {
		return stats, fmt.Errorf("list reviews: %w", err)
	}
	for _, slug := range slugs {
		doc, err := store.Document(slug)
		if err != nil {
			return stats, fmt.Errorf("read review %s: %w", slug, err)
		}
		if err := writeFile(filepath.Join(out, base, slug, "index.html"), func(w io.Writer) error {
			return pages.Detail(w, doc)
		}); err != nil {
			return stats, err
		}
		payload, err := web.NewReviewPayload(doc)
		if err != nil {
			return stats, fmt.Errorf("render review %s: %w", slug, err)
		}
		if err := writeJSONFile(filepath.Join(out, "api", "reviews", slug+".json"), payload); err != nil {
			return stats, err
		}
		stats.Pages++
		stats.Reviews++
		logger.Debug("rendered review", zap.String("slug", slug))
	}

	if err := writeFile(filepath.Join(out, "404.html"), pages.NotFound); err != nil {
		return stats, err
	}

	if opts.StaticDir != "" {
		n, err := copyDir(opts.StaticDir, filepath.Join(out, "static"))
		if err != nil {
			return stats, err
		}
		stats.StaticFiles = n
	}

	stats.Duration = time.Since(start)
	logger.Info("static build complete",
		zap.String("out", out),
		zap.Int("pages", stats.Pages),
		zap.Int("reviews", stats.Reviews),
		zap.Int("static_files", stats.StaticFiles),
		zap.Duration("took", stats.Duration))
	return stats, nil
}

const redirectHTML = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><meta http-equiv="refresh" content="0; url=%s"></head>
<body><a href="%s">Reseñas</a></body></html>
`

// checkOutputDir refuses output locations whose removal would take the
// content (or the working tree) with it.
func checkOutputDir(out, contentDir string) error {
	if strings.TrimSpace(out) == "" {
		return errors.New("output dir not set")
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}
	if absOut == filepath.Dir(absOut) {
		return fmt.Errorf("refusing to use filesystem root %s as output dir", absOut)
	}
	if wd, err := os.Getwd(); err == nil && isWithin(wd, absOut) {
		return fmt.Errorf("refusing to use %s as output dir: contains the working directory", absOut)
	}
	if absContent, err := filepath.Abs(contentDir); err == nil && isWithin(absContent, absOut) {
		return fmt.Errorf("refusing to use %s as output dir: contains the content dir", absOut)
	}
	return nil
}

// isWithin reports whether path is dir or lies below it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func writeFile(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeJSONFile(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// copyDir copies regular files from src into dst. A missing src is not an
// error.
func copyDir(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stat static dir: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("static dir %s is not a directory", src)
	}

	count := 0
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("copy static dir: %w", err)
	}
	return count, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeFile(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}
