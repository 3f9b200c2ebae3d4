// Package web serves the reviews section over HTTP: the listing, one page per
// review, and a small JSON API over the same catalog.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/codigovinario/vinario/internal/catalog"
	"github.com/codigovinario/vinario/internal/config"
	"github.com/codigovinario/vinario/internal/review"
)

// shutdownTimeout bounds how long in-flight requests get after ctx is done.
const shutdownTimeout = 10 * time.Second

// Options configures the handler.
type Options struct {
	Site      Site
	Locale    language.Tag
	StaticDir string // served under /static/ when the directory exists
	Version   string
}

// OptionsFromConfig maps the loaded configuration onto handler options.
func OptionsFromConfig(cfg *config.Config, version string) Options {
	return Options{
		Site: Site{
			Title:    cfg.Site.Title,
			Tagline:  cfg.Site.Tagline,
			Lang:     cfg.LocaleTag().String(),
			BasePath: cfg.Site.BasePath,
		},
		Locale:    cfg.LocaleTag(),
		StaticDir: cfg.Build.StaticDir,
		Version:   version,
	}
}

type server struct {
	store  *catalog.Store
	pages  *Pages
	opts   Options
	logger *zap.Logger
}

// NewHandler builds the routed handler, wrapped in request logging, panic
// recovery and security headers.
func NewHandler(store *catalog.Store, opts Options, logger *zap.Logger) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Site.BasePath == "" {
		opts.Site.BasePath = "/resenas"
	}
	if opts.Locale == (language.Tag{}) {
		opts.Locale = review.DefaultLocale
	}
	pages, err := NewPages(opts.Site)
	if err != nil {
		return nil, err
	}
	s := &server{store: store, pages: pages, opts: opts, logger: logger}

	base := opts.Site.BasePath
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET "+base, s.handleListing)
	mux.HandleFunc("GET "+base+"/{$}", s.handleListing)
	mux.HandleFunc("GET "+base+"/{slug}", s.handleDetail)
	mux.HandleFunc("GET "+base+"/{slug}/{$}", s.handleDetail)
	mux.HandleFunc("GET /api/reviews", s.handleAPIReviews)
	mux.HandleFunc("GET /api/reviews/{slug}", s.handleAPIReview)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if opts.StaticDir != "" {
		if info, err := os.Stat(opts.StaticDir); err == nil && info.IsDir() {
			mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
		}
	}

	return requestLogger(logger, recoverer(logger, securityHeaders(mux))), nil
}

// Serve runs the HTTP server on ln until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *zap.Logger) error {
	if isLoopback(ln.Addr()) {
		handler = localhostOnly(handler)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	logger.Info("web server listening", zap.String("url", "http://"+ln.Addr().String()))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	logger.Info("web server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

func isLoopback(addr net.Addr) bool {
	tcp, ok := addr.(*net.TCPAddr)
	return ok && tcp.IP.IsLoopback()
}

// --- Handlers ---

func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.opts.Site.BasePath, http.StatusFound)
}

func (s *server) handleListing(w http.ResponseWriter, r *http.Request) {
	v := s.view(r.URL.Query())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.Listing(w, v); err != nil {
		s.internalError(w, r, err)
	}
}

func (s *server) handleDetail(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Document(r.PathValue("slug"))
	if errors.Is(err, catalog.ErrNotFound) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		if err := s.pages.NotFound(w); err != nil {
			s.logger.Error("render not found page", zap.Error(err))
		}
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.Detail(w, doc); err != nil {
		s.internalError(w, r, err)
	}
}

func (s *server) handleAPIReviews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, NewListingPayload(s.view(r.URL.Query())))
}

func (s *server) handleAPIReview(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Document(r.PathValue("slug"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	if err != nil {
		s.logger.Error("read review", zap.String("slug", r.PathValue("slug")), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	payload, err := NewReviewPayload(doc)
	if err != nil {
		s.logger.Error("render review", zap.String("slug", doc.Slug), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, payload)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, map[string]any{
		"status":    "ok",
		"reviews":   snap.Len(),
		"loaded_at": snap.LoadedAt,
		"version":   s.opts.Version,
	})
}

// view builds a listing view from URL query parameters, one setter per
// control the way the form drives it.
func (s *server) view(params url.Values) *review.View {
	v := review.NewView(s.store.Snapshot().Reviews, review.WithLocale(s.opts.Locale))
	v.SetQuery(params.Get("q"))
	v.SetVarietalFilter(review.ParseFilter(params.Get("varietal")))
	v.SetRegionFilter(review.ParseFilter(params.Get("region")))
	v.SetSortKey(review.ParseSortKey(params.Get("sort")))
	return v
}

func (s *server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// --- Middleware ---

func localhostOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if idx := strings.LastIndex(host, ":"); idx >= 0 {
			host = host[:idx]
		}
		host = strings.Trim(host, "[]") // strip IPv6 brackets

		if host == "localhost" {
			next.ServeHTTP(w, r)
			return
		}
		if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Forbidden", http.StatusForbidden)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func requestLogger(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("latency", time.Since(start)))
	})
}

func recoverer(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				logger.Error("panic serving request",
					zap.String("path", r.URL.Path),
					zap.Any("panic", p),
					zap.Stack("stack"))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
