package article

import (
	"time"

	"newsradar/internal/domain/trend"
)

// DefaultCategory is substituted when the classifier is unavailable.
const DefaultCategory = "Security"

// MergedKeywordWeight is the relevance assigned to classifier-suggested
// keywords that were not found by the extractor.
const MergedKeywordWeight = 50

// Keyword is a weighted keyword extracted from article text.
type Keyword struct {
	Keyword string `json:"keyword"`
	Score   int    `json:"score"`
}

// Scores holds the classifier's numeric assessment of an article.
// Confidence and Relevance are 0-100, Sentiment is -100..100, Trend is
// the composite trend score recorded back after aggregation.
type Scores struct {
	Confidence int `json:"confidence_score"`
	Relevance  int `json:"relevance_score"`
	Sentiment  int `json:"sentiment_score"`
	Trend      int `json:"trend_score"`
}

// Content holds the classifier's textual output.
type Content struct {
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
	Category         string `json:"category"`
}

// Metadata holds the classifier's structured extraction.
type Metadata struct {
	Keywords        []string `json:"keywords"`
	TrendKeywords   []string `json:"trend_keywords"`
	PrimaryCompany  string   `json:"primary_company,omitempty"`
	AffectedRegions []string `json:"affected_regions"`
	Actionable      bool     `json:"actionable"`
}

// Classification is the full output of the article classifier.
type Classification struct {
	Scores   Scores   `json:"scores"`
	Content  Content  `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// DefaultClassification returns the fixed neutral structure used when the
// classifier is unavailable, so downstream steps always receive a
// well-formed object.
func DefaultClassification() *Classification {
	return &Classification{
		Content: Content{
			Category: DefaultCategory,
		},
		Metadata: Metadata{
			Keywords:        []string{},
			TrendKeywords:   []string{},
			AffectedRegions: []string{},
		},
	}
}

// ExtractedContent is the content extractor's view of an article page.
type ExtractedContent struct {
	FullText    string   `json:"full_text"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
	SourceLinks []string `json:"sources"`
	ImageURL    string   `json:"image_url"`
	MediaType   string   `json:"media_type"`
	ReadingTime int      `json:"reading_time"`
}

// UnavailableText is the sentinel full text returned when extraction fails.
const UnavailableText = "Content unavailable."

// GeoImpact describes the regions an article affects.
type GeoImpact struct {
	Regions       []string `json:"regions"`
	PrimaryRegion string   `json:"primary_region"`
	Scope         string   `json:"scope"`
}

// Quote is a point-in-time stock quote from the quote provider.
type Quote struct {
	LastPrice     float64
	PreviousClose float64
	Currency      string
	MarketState   string
}

// MarketData is the market enrichment attached to an article when the
// classifier identified a publicly traded primary company. Price fields
// are nil when the quote provider failed.
type MarketData struct {
	Ticker        string   `json:"ticker"`
	CompanyName   string   `json:"company_name"`
	LastPrice     *float64 `json:"last_price"`
	ChangePercent *float64 `json:"change_percent"`
	Currency      string   `json:"currency"`
	MarketState   string   `json:"market_status"`
	LogoURL       string   `json:"logo_url"`
}

// Action is a recommended follow-up generated from the classification.
type Action struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Article is the persisted news article together with its enrichment.
// The enrichment fields fully replace any prior enrichment on re-analysis.
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Published time.Time `json:"published"`
	ImageURL  string    `json:"image_url,omitempty"`
	MediaType string    `json:"media_type,omitempty"`
	FullText  string    `json:"full_text,omitempty"`
	Author    string    `json:"author,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Sources   []string  `json:"sources,omitempty"`

	Keywords       []Keyword       `json:"keywords,omitempty"`
	Classification *Classification `json:"ai_analysis,omitempty"`
	Trends         *trend.Result   `json:"trends,omitempty"`
	TechStack      []string        `json:"tech_stack,omitempty"`
	MarketData     *MarketData     `json:"market_data,omitempty"`
	GeoImpact      *GeoImpact      `json:"geo_impact,omitempty"`
	Actions        []Action        `json:"actions,omitempty"`

	// First-class queryable copies of the classification scores, written
	// atomically with the enrichment so listing and sorting never read a
	// JSON blob.
	ConfidenceScore  int    `json:"confidence_score"`
	RelevanceScore   int    `json:"relevance_score"`
	SentimentScore   int    `json:"sentiment_score"`
	TrendScore       int    `json:"trend_score"`
	ShortDescription string `json:"short_description,omitempty"`
	LongDescription  string `json:"long_description,omitempty"`
	Category         string `json:"category,omitempty"`
	Actionable       bool   `json:"actionable"`

	AnalyzedAt *time.Time `json:"analyzed_at,omitempty"`
}

// Analyzed reports whether the article has completed an analysis run.
func (a *Article) Analyzed() bool {
	return a.AnalyzedAt != nil
}

// AnalysisOutcome is the result of one Analyze call.
type AnalysisOutcome struct {
	Article         *Article `json:"article,omitempty"`
	AlreadyAnalyzed bool     `json:"already_analyzed"`
}

// BatchResult aggregates the outcome of a batch analysis run.
type BatchResult struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}
