// internal/domain/article/analyzer.go

package article

import (
	"context"
	"errors"
	"time"
)

// Common errors surfaced by analyzers and stores.
var (
	// ErrNotFound indicates the referenced article id does not exist.
	ErrNotFound = errors.New("article not found")

	// ErrAnalysisInFlight indicates an analysis for the same article id
	// is already running in this process.
	ErrAnalysisInFlight = errors.New("analysis already in flight")
)

// Analyzer runs the enrichment pipeline for a single article.
type Analyzer interface {
	// Analyze enriches the article and persists the result. When the
	// article is already analyzed and force is false it short-circuits
	// with AlreadyAnalyzed set and no side effects. Only a missing id,
	// a concurrent analysis of the same id, or a persistence failure
	// surface as errors; provider failures degrade to defaults.
	Analyze(ctx context.Context, id string, force bool) (*AnalysisOutcome, error)
}

// BatchAnalyzer runs the analyzer over many articles with bounded
// parallelism.
type BatchAnalyzer interface {
	// AnalyzeMany analyzes the given ids. One article's failure does not
	// cancel the others.
	AnalyzeMany(ctx context.Context, ids []string, maxParallel int) BatchResult

	// AnalyzeBacklog selects up to limit unanalyzed articles and analyzes
	// them.
	AnalyzeBacklog(ctx context.Context, limit int) (BatchResult, error)
}

// ListFilter defines criteria for listing articles.
type ListFilter struct {
	Category   string
	Search     string
	Analyzed   *bool
	Actionable *bool
	SortBy     string
	Limit      int
	Offset     int
}

// Stats summarizes the article table for dashboards.
type Stats struct {
	Total         int            `json:"total"`
	Analyzed      int            `json:"analyzed"`
	Actionable    int            `json:"actionable"`
	ByCategory    map[string]int `json:"by_category"`
	AvgTrendScore float64        `json:"avg_trend_score"`
	LastAnalyzed  *time.Time     `json:"last_analyzed,omitempty"`
}

// Store is the persistence boundary for articles. The per-article row is
// the source of truth for analysis state; SaveEnrichment writes the
// enrichment and the analyzed marker in one statement.
type Store interface {
	GetArticle(ctx context.Context, id string) (*Article, error)
	ListArticles(ctx context.Context, filter ListFilter) ([]Article, error)
	FindUnanalyzedIDs(ctx context.Context, limit int) ([]string, error)
	SaveEnrichment(ctx context.Context, a *Article) error
	GetStats(ctx context.Context) (Stats, error)
}
