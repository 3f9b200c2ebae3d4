// Package mcp exposes the review catalog to MCP clients over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/codigovinario/vinario/internal/catalog"
	"github.com/codigovinario/vinario/internal/review"
)

const reloadCooldown = 10 * time.Second

// Options configures the MCP server.
type Options struct {
	Locale          language.Tag
	FilterInjection bool // screen review bodies with the prompt-injection guard
	Version         string
}

type server struct {
	store  *catalog.Store
	opts   Options
	logger *zap.Logger

	reloadMu   sync.Mutex
	lastReload time.Time
}

// Serve runs the MCP server on stdio until ctx is done or the client
// disconnects.
func Serve(ctx context.Context, store *catalog.Store, opts Options, logger *zap.Logger) error {
	return NewServer(store, opts, logger).Run(ctx, &mcp.StdioTransport{})
}

// NewServer builds an MCP server with the review tools registered.
func NewServer(store *catalog.Store, opts Options, logger *zap.Logger) *mcp.Server {
	s := newServer(store, opts, logger)
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "vinario",
		Version: version,
	}, nil)
	s.registerTools(srv)
	return srv
}

func newServer(store *catalog.Store, opts Options, logger *zap.Logger) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Locale == language.Und {
		opts.Locale = review.DefaultLocale
	}
	return &server{store: store, opts: opts, logger: logger}
}

func (s *server) registerTools(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_reviews",
		Description: "Search the wine review catalog the same way the site's listing does. Use this to find reviews by wine, winery, grape or region, or to list the best-scored or newest reviews.\n\nArgs:\n  query: Free text matched case-insensitively against title, winery, varietal, region, date and slug\n  varietal: Exact varietal (grape); empty for all\n  region: Exact region; empty for all\n  sort: date_desc (default), date_asc, score_desc, score_asc or title_asc\n  limit: Number of reviews returned (default 20, max 100)\n\nReturns the matching reviews with visible and total counts.",
	}, s.handleSearchReviews)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_review",
		Description: "Read one wine review in full: its metadata and markdown tasting notes. Use this after search_reviews returns a relevant slug.\n\nArgs:\n  slug: Review slug as returned by search_reviews\n\nReturns the review metadata and body.",
	}, s.handleGetReview)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "review_options",
		Description: "List the values accepted by search_reviews: every varietal and region present in the catalog, and the sort keys.",
	}, s.handleReviewOptions)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "catalog_stats",
		Description: "Summarise the review catalog: total reviews, how many carry a score, the average score, counts per varietal and region, and when the catalog was loaded.",
	}, s.handleCatalogStats)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "reload_catalog",
		Description: "Re-read the content directory. Use this if reviews were added or edited and results look stale.\n\nReturns the new review count.",
	}, s.handleReloadCatalog)
}

// Tool input types

type searchInput struct {
	Query    string `json:"query,omitempty" jsonschema:"Free text to match"`
	Varietal string `json:"varietal,omitempty" jsonschema:"Exact varietal; empty for all"`
	Region   string `json:"region,omitempty" jsonschema:"Exact region; empty for all"`
	Sort     string `json:"sort,omitempty" jsonschema:"date_desc, date_asc, score_desc, score_asc or title_asc"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Number of reviews (default 20, max 100)"`
}

type getInput struct {
	Slug string `json:"slug" jsonschema:"Review slug"`
}

type emptyInput struct{}

// Tool handlers

func (s *server) handleSearchReviews(ctx context.Context, req *mcp.CallToolRequest, input searchInput) (*mcp.CallToolResult, any, error) {
	v := review.NewView(s.store.Snapshot().Reviews,
		review.WithLocale(s.opts.Locale),
		review.WithQuery(review.Query{
			Text:     input.Query,
			Varietal: review.ParseFilter(input.Varietal),
			Region:   review.ParseFilter(input.Region),
			Sort:     review.ParseSortKey(input.Sort),
		}))

	visible := v.VisibleReviews()
	if v.VisibleCount() == 0 {
		return textResult(fmt.Sprintf("No reviews match (0 of %d).", v.TotalCount())), nil, nil
	}
	limit := clampLimit(input.Limit, 20)
	if len(visible) > limit {
		visible = visible[:limit]
	}

	return jsonResult(map[string]any{
		"visible":  v.VisibleCount(),
		"total":    v.TotalCount(),
		"sort":     string(v.Query().Sort),
		"returned": len(visible),
		"reviews":  visible,
	}), nil, nil
}

func (s *server) handleGetReview(ctx context.Context, req *mcp.CallToolRequest, input getInput) (*mcp.CallToolResult, any, error) {
	if !catalog.ValidSlug(input.Slug) {
		return textResult("Error: slug must name a single review, as returned by search_reviews."), nil, nil
	}
	doc, err := s.store.Document(input.Slug)
	if errors.Is(err, catalog.ErrNotFound) {
		return textResult(fmt.Sprintf("Review not found: %s", input.Slug)), nil, nil
	}
	if err != nil {
		s.logger.Error("read review", zap.String("slug", input.Slug), zap.Error(err))
		return textResult("Error reading review."), nil, nil
	}

	body := doc.Body
	if s.opts.FilterInjection {
		var filtered int
		body, filtered = screenBody(ctx, body)
		if filtered > 0 {
			s.logger.Warn("filtered review content", zap.String("slug", doc.Slug), zap.Int("paragraphs", filtered))
		}
	}

	return jsonResult(map[string]any{
		"review": doc.Summary,
		"body":   body,
	}), nil, nil
}

func (s *server) handleReviewOptions(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	opts := review.DeriveOptions(s.store.Snapshot().Reviews)
	sorts := make([]string, len(review.SortKeys))
	for i, k := range review.SortKeys {
		sorts[i] = string(k)
	}
	return jsonResult(map[string]any{
		"varietals":    values(opts.Varietals),
		"regions":      values(opts.Regions),
		"sorts":        sorts,
		"default_sort": string(review.DefaultSort),
	}), nil, nil
}

type catalogStats struct {
	Total        int            `json:"total"`
	Scored       int            `json:"scored"`
	AverageScore *float64       `json:"average_score,omitempty"`
	ByVarietal   map[string]int `json:"by_varietal"`
	ByRegion     map[string]int `json:"by_region"`
	LoadedAt     time.Time      `json:"loaded_at"`
}

func (s *server) handleCatalogStats(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	return jsonResult(computeStats(s.store.Snapshot())), nil, nil
}

func (s *server) handleReloadCatalog(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if since := time.Since(s.lastReload); since < reloadCooldown {
		remaining := int((reloadCooldown - since).Seconds()) + 1
		return jsonResult(map[string]string{
			"error": fmt.Sprintf("Reload cooldown active. Try again in %ds.", remaining),
		}), nil, nil
	}
	s.lastReload = time.Now()

	if err := s.store.Reload(); err != nil {
		return textResult(fmt.Sprintf("Reload error: %v", err)), nil, nil
	}
	return jsonResult(map[string]any{"reviews": s.store.Snapshot().Len()}), nil, nil
}

// Helpers

func computeStats(c catalog.Catalog) catalogStats {
	stats := catalogStats{
		Total:      c.Len(),
		ByVarietal: map[string]int{},
		ByRegion:   map[string]int{},
		LoadedAt:   c.LoadedAt,
	}
	var sum float64
	for _, r := range c.Reviews {
		if r.Varietal != "" {
			stats.ByVarietal[r.Varietal]++
		}
		if r.Region != "" {
			stats.ByRegion[r.Region]++
		}
		if r.HasScore() {
			stats.Scored++
			sum += *r.Score
		}
	}
	if stats.Scored > 0 {
		avg := sum / float64(stats.Scored)
		stats.AverageScore = &avg
	}
	return stats
}

// values drops the "all" choice; MCP callers pass an empty string instead.
func values(cs []review.Choice) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		if !c.Filter.IsAll() {
			out = append(out, c.Filter.Value())
		}
	}
	return out
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return textResult(string(data))
}

func clampLimit(limit, defaultVal int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit > 100 {
		return 100
	}
	return limit
}
