package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/codigovinario/vinario/internal/review"
)

// ErrNotFound is returned when no review document exists for a slug.
var ErrNotFound = errors.New("review not found")

// Document is one review with its body, ready for the detail renderer.
type Document struct {
	review.Summary
	Body string `json:"body"`
	Path string `json:"-"`
}

// ReadDocument loads the review identified by slug from dir. Slugs that could
// escape the directory are treated as unknown.
func ReadDocument(dir, slug string, opts Options) (Document, error) {
	opts = opts.withDefaults()
	if !ValidSlug(slug) {
		return Document{}, ErrNotFound
	}

	for _, ext := range opts.Extensions {
		path := filepath.Join(dir, slug+ext)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Document{}, fmt.Errorf("stat review %s: %w", slug, err)
		}
		// The loader only lists regular files; a directory named like a
		// review is not one.
		if !info.Mode().IsRegular() {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return Document{}, fmt.Errorf("read review %s: %w", slug, err)
		}
		doc := parseDocument(slug, content, opts.Locale)
		return Document{Summary: doc.Summary, Body: doc.Body, Path: path}, nil
	}
	return Document{}, ErrNotFound
}

// ValidSlug reports whether slug can name a file directly inside the content
// directory.
func ValidSlug(slug string) bool {
	if slug == "" || strings.HasPrefix(slug, ".") {
		return false
	}
	if strings.ContainsAny(slug, `/\`) || strings.ContainsRune(slug, 0) {
		return false
	}
	return filepath.Base(slug) == slug
}
