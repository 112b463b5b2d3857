// internal/service/analysis/pipeline.go

package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"newsradar/internal/domain/article"
	"newsradar/internal/domain/trend"
)

// AnalysisCompletedSubject is the event subject published after each
// successful analysis.
const AnalysisCompletedSubject = "analysis.article.completed"

// ContentExtractor pulls readable content from an article URL.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (*article.ExtractedContent, error)
}

// Classifier produces the structured AI assessment of an article.
type Classifier interface {
	Classify(ctx context.Context, title, text string, keywords []article.Keyword) (*article.Classification, error)
}

// EventPublisher broadcasts analysis events. *nats.Conn satisfies it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// PipelineConfig tunes the per-article pipeline.
type PipelineConfig struct {
	// CooldownMin/Max bound the randomized pause after each analysis,
	// protecting upstream providers from burst traffic. Zero disables it.
	CooldownMin time.Duration
	CooldownMax time.Duration

	LookbackMonths int
}

// DefaultPipelineConfig returns production pipeline settings.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		CooldownMin:    3 * time.Second,
		CooldownMax:    5 * time.Second,
		LookbackMonths: 6,
	}
}

// Pipeline runs the enrichment sequence for one article: content
// extraction, keyword extraction, classification, trend aggregation, tech
// stack, market data, geo impact and actions, then a single persistence
// write. Collaborator failures degrade to defaults; only a missing
// article, a duplicate concurrent run, or a failed save surface as errors.
type Pipeline struct {
	store      article.Store
	extractor  ContentExtractor
	classifier Classifier
	trends     trend.Aggregator
	quotes     QuoteProvider
	events     EventPublisher
	log        *logrus.Logger
	config     PipelineConfig
	now        func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewPipeline creates the analysis pipeline. events may be nil when no
// broker is configured.
func NewPipeline(
	store article.Store,
	extractor ContentExtractor,
	classifier Classifier,
	trends trend.Aggregator,
	quotes QuoteProvider,
	events EventPublisher,
	log *logrus.Logger,
	config PipelineConfig,
) *Pipeline {
	return &Pipeline{
		store:      store,
		extractor:  extractor,
		classifier: classifier,
		trends:     trends,
		quotes:     quotes,
		events:     events,
		log:        log,
		config:     config,
		now:        time.Now,
		inFlight:   make(map[string]struct{}),
	}
}

// Analyze implements article.Analyzer.
func (p *Pipeline) Analyze(ctx context.Context, id string, force bool) (*article.AnalysisOutcome, error) {
	if err := p.acquire(id); err != nil {
		return nil, err
	}
	defer p.release(id)

	a, err := p.store.GetArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading article %s: %w", id, err)
	}

	if a.Analyzed() && !force {
		p.log.WithField("article_id", id).Debug("article already analyzed, skipping")
		return &article.AnalysisOutcome{Article: a, AlreadyAnalyzed: true}, nil
	}

	log := p.log.WithFields(logrus.Fields{"article_id": id, "title": truncate(a.Title, 50)})
	log.Info("analyzing article")

	p.extractContent(ctx, a, log)

	keywords := ExtractKeywords(a.FullText, DefaultTopKeywords)

	cls := p.classify(ctx, a, keywords, log)
	keywords = MergeKeywords(keywords, cls.Metadata.Keywords)

	seeds := SeedKeywords(cls, a.Title, keywords)
	trends := p.trends.GetTrends(ctx, seeds, p.config.LookbackMonths)
	cls.Scores.Trend = trends.TrendScore

	techStack := DetectTechStack(a.FullText, keywords)

	var market *article.MarketData
	if cls.Metadata.PrimaryCompany != "" {
		market = FetchMarketData(ctx, p.quotes, cls.Metadata.PrimaryCompany, p.log)
	}

	geo := BuildGeoImpact(cls, a.FullText, a.Title, &trends)
	actions := BuildActions(cls, keywords)

	now := p.now()
	a.Keywords = keywords
	a.Classification = cls
	a.Trends = &trends
	a.TechStack = techStack
	a.MarketData = market
	a.GeoImpact = geo
	a.Actions = actions
	a.ConfidenceScore = cls.Scores.Confidence
	a.RelevanceScore = cls.Scores.Relevance
	a.SentimentScore = cls.Scores.Sentiment
	a.TrendScore = cls.Scores.Trend
	a.ShortDescription = cls.Content.ShortDescription
	a.LongDescription = cls.Content.LongDescription
	a.Category = cls.Content.Category
	a.Actionable = cls.Metadata.Actionable
	a.AnalyzedAt = &now

	if err := p.store.SaveEnrichment(ctx, a); err != nil {
		return nil, fmt.Errorf("saving enrichment for %s: %w", id, err)
	}

	log.WithFields(logrus.Fields{
		"category":    a.Category,
		"trend_score": a.TrendScore,
		"actionable":  a.Actionable,
	}).Info("analysis complete")

	p.publishCompleted(a)
	p.cooldown(ctx)

	return &article.AnalysisOutcome{Article: a}, nil
}

// acquire registers an in-flight analysis for the id, rejecting duplicates.
func (p *Pipeline) acquire(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[id]; busy {
		return fmt.Errorf("article %s: %w", id, article.ErrAnalysisInFlight)
	}
	p.inFlight[id] = struct{}{}
	return nil
}

func (p *Pipeline) release(id string) {
	p.mu.Lock()
	delete(p.inFlight, id)
	p.mu.Unlock()
}

// extractContent refreshes the article's content fields from the page.
// A longer extracted text replaces the stored one; extraction failure
// keeps whatever text the article already had.
func (p *Pipeline) extractContent(ctx context.Context, a *article.Article, log *logrus.Entry) {
	if p.extractor == nil {
		return
	}
	details, err := p.extractor.Extract(ctx, a.URL)
	if err != nil {
		log.WithError(err).Warn("content extraction failed, using stored text")
		if a.FullText == "" {
			a.FullText = article.UnavailableText
		}
		return
	}

	if len(details.FullText) > len(a.FullText) {
		a.FullText = details.FullText
	}
	if details.Author != "" {
		a.Author = details.Author
	}
	if len(details.Tags) > 0 {
		a.Tags = details.Tags
	}
	if len(details.SourceLinks) > 0 {
		a.Sources = details.SourceLinks
	}
	if details.ImageURL != "" {
		a.ImageURL = details.ImageURL
	}
	if details.MediaType != "" {
		a.MediaType = details.MediaType
	}
}

// classify runs the AI classifier, substituting the neutral default when it
// is unavailable so every downstream step sees a well-formed structure.
func (p *Pipeline) classify(ctx context.Context, a *article.Article, keywords []article.Keyword, log *logrus.Entry) *article.Classification {
	if p.classifier == nil {
		return article.DefaultClassification()
	}
	cls, err := p.classifier.Classify(ctx, a.Title, a.FullText, keywords)
	if err != nil {
		log.WithError(err).Warn("classifier unavailable, using defaults")
		return article.DefaultClassification()
	}
	if cls.Content.Category == "" {
		cls.Content.Category = article.DefaultCategory
	}
	return cls
}

// publishCompleted emits the completion event. Failures are logged only.
func (p *Pipeline) publishCompleted(a *article.Article) {
	if p.events == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"article_id":  a.ID,
		"title":       a.Title,
		"category":    a.Category,
		"trend_score": a.TrendScore,
		"actionable":  a.Actionable,
		"analyzed_at": a.AnalyzedAt,
	})
	if err != nil {
		return
	}
	if err := p.events.Publish(AnalysisCompletedSubject, payload); err != nil {
		p.log.WithError(err).Warn("failed to publish analysis event")
	}
}

// cooldown pauses between analyses to stay under provider rate limits.
func (p *Pipeline) cooldown(ctx context.Context) {
	if p.config.CooldownMax <= 0 {
		return
	}
	d := p.config.CooldownMin
	if spread := p.config.CooldownMax - p.config.CooldownMin; spread > 0 {
		d += time.Duration(rand.Int63n(int64(spread)))
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
