// internal/adapter/storage/article_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"newsradar/internal/domain/article"
)

// ArticleStore implements article.Store on postgres. Classification scores
// live in first-class columns so listing and sorting never touch the JSONB
// enrichment blobs.
type ArticleStore struct {
	db *pgxpool.Pool
}

// NewArticleStore creates a new article store
func NewArticleStore(db *pgxpool.Pool) *ArticleStore {
	return &ArticleStore{
		db: db,
	}
}

// sortColumns whitelists the sortable columns for ListArticles.
var sortColumns = map[string]string{
	"published":        "published",
	"analyzed_at":      "analyzed_at",
	"trend_score":      "trend_score",
	"confidence_score": "confidence_score",
	"relevance_score":  "relevance_score",
	"sentiment_score":  "sentiment_score",
}

// EnsureSchema creates the articles table and its indexes.
func (s *ArticleStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			published TIMESTAMPTZ,
			image_url TEXT NOT NULL DEFAULT '',
			media_type TEXT NOT NULL DEFAULT '',
			full_text TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			tags JSONB,
			sources JSONB,
			keywords JSONB,
			ai_analysis JSONB,
			trends JSONB,
			tech_stack JSONB,
			market_data JSONB,
			geo_impact JSONB,
			actions JSONB,
			confidence_score INTEGER NOT NULL DEFAULT 0,
			relevance_score INTEGER NOT NULL DEFAULT 0,
			sentiment_score INTEGER NOT NULL DEFAULT 0,
			trend_score INTEGER NOT NULL DEFAULT 0,
			short_description TEXT NOT NULL DEFAULT '',
			long_description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			actionable BOOLEAN NOT NULL DEFAULT FALSE,
			analyzed_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_analyzed_at ON articles (analyzed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles (category)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_trend_score ON articles (trend_score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published ON articles (published DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("error ensuring articles schema: %w", err)
		}
	}
	return nil
}

// GetArticle retrieves a full article record by ID
func (s *ArticleStore) GetArticle(ctx context.Context, id string) (*article.Article, error) {
	query := `
		SELECT
			id, title, url, published, image_url, media_type,
			full_text, author, tags, sources,
			keywords, ai_analysis, trends, tech_stack,
			market_data, geo_impact, actions,
			confidence_score, relevance_score, sentiment_score, trend_score,
			short_description, long_description, category, actionable,
			analyzed_at
		FROM articles
		WHERE id = $1
	`

	var a article.Article
	var tagsJSON, sourcesJSON, keywordsJSON, analysisJSON, trendsJSON []byte
	var techStackJSON, marketJSON, geoJSON, actionsJSON []byte

	err := s.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.Title,
		&a.URL,
		&a.Published,
		&a.ImageURL,
		&a.MediaType,
		&a.FullText,
		&a.Author,
		&tagsJSON,
		&sourcesJSON,
		&keywordsJSON,
		&analysisJSON,
		&trendsJSON,
		&techStackJSON,
		&marketJSON,
		&geoJSON,
		&actionsJSON,
		&a.ConfidenceScore,
		&a.RelevanceScore,
		&a.SentimentScore,
		&a.TrendScore,
		&a.ShortDescription,
		&a.LongDescription,
		&a.Category,
		&a.Actionable,
		&a.AnalyzedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, article.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying article: %w", err)
	}

	if err := unmarshalInto(tagsJSON, &a.Tags); err != nil {
		return nil, fmt.Errorf("error unmarshaling tags: %w", err)
	}
	if err := unmarshalInto(sourcesJSON, &a.Sources); err != nil {
		return nil, fmt.Errorf("error unmarshaling sources: %w", err)
	}
	if err := unmarshalInto(keywordsJSON, &a.Keywords); err != nil {
		return nil, fmt.Errorf("error unmarshaling keywords: %w", err)
	}
	if err := unmarshalInto(analysisJSON, &a.Classification); err != nil {
		return nil, fmt.Errorf("error unmarshaling ai analysis: %w", err)
	}
	if err := unmarshalInto(trendsJSON, &a.Trends); err != nil {
		return nil, fmt.Errorf("error unmarshaling trends: %w", err)
	}
	if err := unmarshalInto(techStackJSON, &a.TechStack); err != nil {
		return nil, fmt.Errorf("error unmarshaling tech stack: %w", err)
	}
	if err := unmarshalInto(marketJSON, &a.MarketData); err != nil {
		return nil, fmt.Errorf("error unmarshaling market data: %w", err)
	}
	if err := unmarshalInto(geoJSON, &a.GeoImpact); err != nil {
		return nil, fmt.Errorf("error unmarshaling geo impact: %w", err)
	}
	if err := unmarshalInto(actionsJSON, &a.Actions); err != nil {
		return nil, fmt.Errorf("error unmarshaling actions: %w", err)
	}

	return &a, nil
}

// ListArticles finds articles matching the filter, newest first by default.
// The listing omits full_text and the heavy enrichment blobs; GetArticle
// returns the complete record.
func (s *ArticleStore) ListArticles(ctx context.Context, filter article.ListFilter) ([]article.Article, error) {
	query := `
		SELECT
			id, title, url, published, image_url, media_type, author,
			keywords, tech_stack,
			confidence_score, relevance_score, sentiment_score, trend_score,
			short_description, category, actionable,
			analyzed_at
		FROM articles
		WHERE 1=1
	`

	args := []interface{}{}
	argIndex := 1

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, filter.Category)
		argIndex++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR short_description ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if filter.Analyzed != nil {
		if *filter.Analyzed {
			query += " AND analyzed_at IS NOT NULL"
		} else {
			query += " AND analyzed_at IS NULL"
		}
	}

	if filter.Actionable != nil {
		query += fmt.Sprintf(" AND actionable = $%d", argIndex)
		args = append(args, *filter.Actionable)
		argIndex++
	}

	sortBy := "published"
	if col, ok := sortColumns[strings.ToLower(filter.SortBy)]; ok {
		sortBy = col
	}
	query += fmt.Sprintf(" ORDER BY %s DESC NULLS LAST", sortBy)

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, limit)
	argIndex++

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var articles []article.Article
	for rows.Next() {
		var a article.Article
		var keywordsJSON, techStackJSON []byte

		err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.URL,
			&a.Published,
			&a.ImageURL,
			&a.MediaType,
			&a.Author,
			&keywordsJSON,
			&techStackJSON,
			&a.ConfidenceScore,
			&a.RelevanceScore,
			&a.SentimentScore,
			&a.TrendScore,
			&a.ShortDescription,
			&a.Category,
			&a.Actionable,
			&a.AnalyzedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning article: %w", err)
		}

		if err := unmarshalInto(keywordsJSON, &a.Keywords); err != nil {
			return nil, fmt.Errorf("error unmarshaling keywords: %w", err)
		}
		if err := unmarshalInto(techStackJSON, &a.TechStack); err != nil {
			return nil, fmt.Errorf("error unmarshaling tech stack: %w", err)
		}

		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating articles: %w", err)
	}

	return articles, nil
}

// FindUnanalyzedIDs returns ids of articles that never completed analysis,
// oldest first so the backlog drains in publish order.
func (s *ArticleStore) FindUnanalyzedIDs(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT id
		FROM articles
		WHERE analyzed_at IS NULL
		ORDER BY published ASC NULLS LAST
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning article id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article ids: %w", err)
	}

	return ids, nil
}

// SaveEnrichment writes the full enrichment and the analyzed marker in one
// statement. A re-analysis replaces the previous enrichment entirely.
func (s *ArticleStore) SaveEnrichment(ctx context.Context, a *article.Article) error {
	query := `
		UPDATE articles SET
			full_text = $2,
			author = $3,
			image_url = $4,
			media_type = $5,
			tags = $6,
			sources = $7,
			keywords = $8,
			ai_analysis = $9,
			trends = $10,
			tech_stack = $11,
			market_data = $12,
			geo_impact = $13,
			actions = $14,
			confidence_score = $15,
			relevance_score = $16,
			sentiment_score = $17,
			trend_score = $18,
			short_description = $19,
			long_description = $20,
			category = $21,
			actionable = $22,
			analyzed_at = $23
		WHERE id = $1
	`

	tagsJSON, err := json.Marshal(a.Tags)
	if err != nil {
		return fmt.Errorf("error marshaling tags: %w", err)
	}
	sourcesJSON, err := json.Marshal(a.Sources)
	if err != nil {
		return fmt.Errorf("error marshaling sources: %w", err)
	}
	keywordsJSON, err := json.Marshal(a.Keywords)
	if err != nil {
		return fmt.Errorf("error marshaling keywords: %w", err)
	}
	analysisJSON, err := json.Marshal(a.Classification)
	if err != nil {
		return fmt.Errorf("error marshaling ai analysis: %w", err)
	}
	trendsJSON, err := json.Marshal(a.Trends)
	if err != nil {
		return fmt.Errorf("error marshaling trends: %w", err)
	}
	techStackJSON, err := json.Marshal(a.TechStack)
	if err != nil {
		return fmt.Errorf("error marshaling tech stack: %w", err)
	}
	marketJSON, err := json.Marshal(a.MarketData)
	if err != nil {
		return fmt.Errorf("error marshaling market data: %w", err)
	}
	geoJSON, err := json.Marshal(a.GeoImpact)
	if err != nil {
		return fmt.Errorf("error marshaling geo impact: %w", err)
	}
	actionsJSON, err := json.Marshal(a.Actions)
	if err != nil {
		return fmt.Errorf("error marshaling actions: %w", err)
	}

	tag, err := s.db.Exec(
		ctx,
		query,
		a.ID,
		a.FullText,
		a.Author,
		a.ImageURL,
		a.MediaType,
		tagsJSON,
		sourcesJSON,
		keywordsJSON,
		analysisJSON,
		trendsJSON,
		techStackJSON,
		marketJSON,
		geoJSON,
		actionsJSON,
		a.ConfidenceScore,
		a.RelevanceScore,
		a.SentimentScore,
		a.TrendScore,
		a.ShortDescription,
		a.LongDescription,
		a.Category,
		a.Actionable,
		a.AnalyzedAt,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return article.ErrNotFound
	}

	return nil
}

// GetStats summarizes the article table.
func (s *ArticleStore) GetStats(ctx context.Context) (article.Stats, error) {
	var stats article.Stats

	query := `
		SELECT
			COUNT(*),
			COUNT(analyzed_at),
			COUNT(*) FILTER (WHERE actionable),
			COALESCE(AVG(trend_score) FILTER (WHERE analyzed_at IS NOT NULL), 0),
			MAX(analyzed_at)
		FROM articles
	`

	err := s.db.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Analyzed,
		&stats.Actionable,
		&stats.AvgTrendScore,
		&stats.LastAnalyzed,
	)
	if err != nil {
		return article.Stats{}, fmt.Errorf("error querying stats: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT category, COUNT(*)
		FROM articles
		WHERE category <> ''
		GROUP BY category
	`)
	if err != nil {
		return article.Stats{}, fmt.Errorf("error querying category counts: %w", err)
	}
	defer rows.Close()

	stats.ByCategory = make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return article.Stats{}, fmt.Errorf("error scanning category count: %w", err)
		}
		stats.ByCategory[category] = count
	}

	if err := rows.Err(); err != nil {
		return article.Stats{}, fmt.Errorf("error iterating category counts: %w", err)
	}

	return stats, nil
}

// unmarshalInto decodes a nullable JSONB column, leaving the target zero
// when the column is NULL.
func unmarshalInto(data []byte, target interface{}) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, target)
}
