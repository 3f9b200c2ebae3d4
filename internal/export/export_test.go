package export

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codigovinario/vinario/internal/catalog"
	"github.com/codigovinario/vinario/internal/web"
)

func putFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func newStore(t *testing.T) *catalog.Store {
	t.Helper()
	dir := t.TempDir()
	putFile(t, filepath.Join(dir, "alamos.md"), "---\ntitle: Alamos Malbec\nvarietal: Malbec\nregion: Mendoza\ndate: 2024-02-02\nscore: 89\n---\nFrutado.\n")
	putFile(t, filepath.Join(dir, "susana-balbo.mdx"), "---\ntitle: Susana Balbo Torrontés\nvarietal: Torrontés\nregion: Salta\ndate: 2024-05-05\n---\nAromático.\n")
	store, err := catalog.NewStore(dir, catalog.Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func buildOpts(out string) Options {
	return Options{
		OutputDir: out,
		Web:       web.Options{Site: web.Site{Title: "Código Vinario", BasePath: "/resenas"}},
	}
}

func TestBuild_WritesSite(t *testing.T) {
	store := newStore(t)
	out := filepath.Join(t.TempDir(), "public")
	static := t.TempDir()
	putFile(t, filepath.Join(static, "img", "logo.svg"), "<svg/>")

	opts := buildOpts(out)
	opts.StaticDir = static
	stats, err := Build(store, opts, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.Reviews != 2 || stats.Pages != 3 || stats.StaticFiles != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	listing := readFile(t, filepath.Join(out, "resenas", "index.html"))
	if !strings.Contains(listing, "Mostrando 2 de 2") {
		t.Error("listing missing count line")
	}
	if strings.Index(listing, "Susana Balbo") > strings.Index(listing, "Alamos Malbec") {
		t.Error("listing should use the default newest-first order")
	}

	detail := readFile(t, filepath.Join(out, "resenas", "susana-balbo", "index.html"))
	if !strings.Contains(detail, "<p>Aromático.</p>") {
		t.Error("detail page missing rendered body")
	}

	if got := readFile(t, filepath.Join(out, "static", "img", "logo.svg")); got != "<svg/>" {
		t.Errorf("static file copied as %q", got)
	}
	if !strings.Contains(readFile(t, filepath.Join(out, "index.html")), "url=/resenas") {
		t.Error("root index should redirect to the listing")
	}
	if _, err := os.Stat(filepath.Join(out, "404.html")); err != nil {
		t.Errorf("404 page missing: %v", err)
	}

	var payload web.ListingPayload
	if err := json.Unmarshal([]byte(readFile(t, filepath.Join(out, "api", "reviews.json"))), &payload); err != nil {
		t.Fatalf("decode reviews.json: %v", err)
	}
	if payload.Total != 2 || len(payload.Reviews) != 2 || payload.Reviews[0].Slug != "susana-balbo" {
		t.Fatalf("unexpected reviews.json: %+v", payload)
	}

	var one web.ReviewPayload
	if err := json.Unmarshal([]byte(readFile(t, filepath.Join(out, "api", "reviews", "alamos.json"))), &one); err != nil {
		t.Fatalf("decode alamos.json: %v", err)
	}
	if one.Review.Title != "Alamos Malbec" || one.Review.Score == nil || *one.Review.Score != 89 {
		t.Fatalf("unexpected alamos.json review: %+v", one.Review)
	}
	if !strings.Contains(one.HTML, "<p>Frutado.</p>") {
		t.Fatalf("alamos.json html = %q", one.HTML)
	}
}

func TestBuild_ReviewJSONMatchesLiveAPI(t *testing.T) {
	store := newStore(t)
	out := filepath.Join(t.TempDir(), "public")
	opts := buildOpts(out)
	if _, err := Build(store, opts, nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	h, err := web.NewHandler(store, opts.Web, nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	for _, slug := range []string{"alamos", "susana-balbo"} {
		var exported, served web.ReviewPayload
		if err := json.Unmarshal([]byte(readFile(t, filepath.Join(out, "api", "reviews", slug+".json"))), &exported); err != nil {
			t.Fatalf("decode exported %s: %v", slug, err)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reviews/"+slug, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("GET /api/reviews/%s: %d", slug, rr.Code)
		}
		if err := json.NewDecoder(rr.Body).Decode(&served); err != nil {
			t.Fatalf("decode served %s: %v", slug, err)
		}
		if diff := cmp.Diff(served, exported); diff != "" {
			t.Errorf("%s: exported JSON differs from /api/reviews (-served +exported):\n%s", slug, diff)
		}
	}
}

func TestBuild_CleansOutputDir(t *testing.T) {
	store := newStore(t)
	out := filepath.Join(t.TempDir(), "public")
	putFile(t, filepath.Join(out, "resenas", "gone", "index.html"), "stale")

	if _, err := Build(store, buildOpts(out), nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "resenas", "gone")); !os.IsNotExist(err) {
		t.Fatalf("stale page survived rebuild: %v", err)
	}
}

func TestBuild_MissingStaticDirIsFine(t *testing.T) {
	opts := buildOpts(filepath.Join(t.TempDir(), "public"))
	opts.StaticDir = filepath.Join(t.TempDir(), "nope")
	stats, err := Build(newStore(t), opts, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.StaticFiles != 0 {
		t.Fatalf("expected no static files, got %d", stats.StaticFiles)
	}
}

func TestBuild_RefusesDangerousOutputDirs(t *testing.T) {
	store := newStore(t)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for name, out := range map[string]string{
		"empty":          "",
		"root":           string(filepath.Separator),
		"working dir":    wd,
		"parent of wd":   filepath.Dir(wd),
		"content dir":    store.Dir(),
		"content parent": filepath.Dir(store.Dir()),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Build(store, buildOpts(out), nil); err == nil {
				t.Fatalf("expected Build to refuse %q", out)
			}
		})
	}
	if _, err := os.Stat(store.Dir()); err != nil {
		t.Fatalf("content dir touched: %v", err)
	}
}

func TestIsWithin(t *testing.T) {
	sep := string(filepath.Separator)
	base := sep + filepath.Join("srv", "site")
	tests := []struct {
		path, dir string
		want      bool
	}{
		{base, base, true},
		{filepath.Join(base, "content"), base, true},
		{base, filepath.Join(base, "public"), false},
		{sep + filepath.Join("srv", "site-other"), base, false},
		{filepath.Join(base, "..foo"), base, true},
	}
	for _, tt := range tests {
		if got := isWithin(tt.path, tt.dir); got != tt.want {
			t.Errorf("isWithin(%q, %q) = %v, want %v", tt.path, tt.dir, got, tt.want)
		}
	}
}
