package analysis

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsradar/internal/domain/article"
	"newsradar/internal/domain/trend"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeStore struct {
	mu         sync.Mutex
	articles   map[string]*article.Article
	saved      []*article.Article
	saveErr    error
	unanalyzed []string
	findErr    error
}

func newFakeStore(articles ...*article.Article) *fakeStore {
	s := &fakeStore{articles: map[string]*article.Article{}}
	for _, a := range articles {
		s.articles[a.ID] = a
	}
	return s
}

func (s *fakeStore) GetArticle(ctx context.Context, id string) (*article.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return nil, article.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *fakeStore) ListArticles(ctx context.Context, filter article.ListFilter) ([]article.Article, error) {
	return nil, nil
}

func (s *fakeStore) FindUnanalyzedIDs(ctx context.Context, limit int) ([]string, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if len(s.unanalyzed) > limit {
		return s.unanalyzed[:limit], nil
	}
	return s.unanalyzed, nil
}

func (s *fakeStore) SaveEnrichment(ctx context.Context, a *article.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, a)
	s.articles[a.ID] = a
	return nil
}

func (s *fakeStore) GetStats(ctx context.Context) (article.Stats, error) {
	return article.Stats{}, nil
}

func (s *fakeStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

type fakeExtractor struct {
	content *article.ExtractedContent
	err     error
}

func (f *fakeExtractor) Extract(ctx context.Context, url string) (*article.ExtractedContent, error) {
	return f.content, f.err
}

type fakeClassifier struct {
	cls     *article.Classification
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeClassifier) Classify(ctx context.Context, title, text string, keywords []article.Keyword) (*article.Classification, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.cls, f.err
}

type fakeAggregator struct {
	result trend.Result
	seeds  [][]string
	mu     sync.Mutex
}

func (f *fakeAggregator) GetTrends(ctx context.Context, keywords []string, lookbackMonths int) trend.Result {
	f.mu.Lock()
	f.seeds = append(f.seeds, keywords)
	f.mu.Unlock()
	return f.result
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func fullClassification() *article.Classification {
	return &article.Classification{
		Scores: article.Scores{Confidence: 85, Relevance: 70, Sentiment: -40},
		Content: article.Content{
			ShortDescription: "Patch now.",
			LongDescription:  "A critical flaw is being exploited in the wild.",
			Category:         "Security",
		},
		Metadata: article.Metadata{
			Keywords:        []string{"LockBit"},
			TrendKeywords:   []string{"Ransomware"},
			PrimaryCompany:  "Microsoft",
			AffectedRegions: []string{"US", "DE"},
			Actionable:      true,
		},
	}
}

func testPipeline(store *fakeStore, classifier Classifier, agg trend.Aggregator, publisher EventPublisher) *Pipeline {
	return NewPipeline(
		store,
		&fakeExtractor{content: &article.ExtractedContent{
			FullText: "Attackers exploited a critical vulnerability in docker images. Ransomware followed.",
			Author:   "Jane Reporter",
		}},
		classifier,
		agg,
		&fakeQuotes{quote: &article.Quote{LastPrice: 410, PreviousClose: 400, Currency: "USD", MarketState: "Open"}},
		publisher,
		testLogger(),
		PipelineConfig{LookbackMonths: 6}, // no cooldown in tests
	)
}

func TestAnalyzeEnrichesAndPersists(t *testing.T) {
	store := newFakeStore(&article.Article{ID: "a1", Title: "Critical ransomware campaign", URL: "https://example.com/a1"})
	agg := &fakeAggregator{result: trend.Result{TrendScore: 61, Direction: trend.DirectionRising}}
	publisher := &fakePublisher{}
	p := testPipeline(store, &fakeClassifier{cls: fullClassification()}, agg, publisher)

	outcome, err := p.Analyze(context.Background(), "a1", false)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.False(t, outcome.AlreadyAnalyzed)

	require.Equal(t, 1, store.savedCount())
	saved := store.saved[0]

	assert.True(t, saved.Analyzed())
	assert.Equal(t, "Jane Reporter", saved.Author)
	assert.NotEmpty(t, saved.Keywords)
	assert.Equal(t, 85, saved.ConfidenceScore)
	assert.Equal(t, -40, saved.SentimentScore)
	assert.Equal(t, 61, saved.TrendScore)
	assert.Equal(t, 61, saved.Classification.Scores.Trend)
	assert.Equal(t, "Security", saved.Category)
	assert.True(t, saved.Actionable)

	require.NotNil(t, saved.MarketData)
	assert.Equal(t, "MSFT", saved.MarketData.Ticker)

	require.NotNil(t, saved.GeoImpact)
	assert.Equal(t, []string{"US", "DE"}, saved.GeoImpact.Regions)

	require.NotEmpty(t, saved.Actions)
	assert.Equal(t, "patch", saved.Actions[0].Type)

	assert.Contains(t, saved.TechStack, "docker")

	// Classifier trend keywords drive the aggregation.
	require.Len(t, agg.seeds, 1)
	assert.Contains(t, agg.seeds[0], "Ransomware")

	require.Len(t, publisher.subjects, 1)
	assert.Equal(t, AnalysisCompletedSubject, publisher.subjects[0])
}

func TestAnalyzeAlreadyAnalyzedShortCircuits(t *testing.T) {
	analyzedAt := time.Now()
	store := newFakeStore(&article.Article{ID: "a1", Title: "Old news", AnalyzedAt: &analyzedAt})
	publisher := &fakePublisher{}
	p := testPipeline(store, &fakeClassifier{cls: fullClassification()}, &fakeAggregator{}, publisher)

	outcome, err := p.Analyze(context.Background(), "a1", false)
	require.NoError(t, err)
	assert.True(t, outcome.AlreadyAnalyzed)
	assert.Zero(t, store.savedCount())
	assert.Empty(t, publisher.subjects)
}

func TestAnalyzeForceReanalyzes(t *testing.T) {
	analyzedAt := time.Now()
	store := newFakeStore(&article.Article{ID: "a1", Title: "Old news", AnalyzedAt: &analyzedAt})
	p := testPipeline(store, &fakeClassifier{cls: fullClassification()}, &fakeAggregator{}, nil)

	outcome, err := p.Analyze(context.Background(), "a1", true)
	require.NoError(t, err)
	assert.False(t, outcome.AlreadyAnalyzed)
	assert.Equal(t, 1, store.savedCount())
}

func TestAnalyzeUnknownArticle(t *testing.T) {
	p := testPipeline(newFakeStore(), &fakeClassifier{cls: fullClassification()}, &fakeAggregator{}, nil)

	_, err := p.Analyze(context.Background(), "missing", false)
	assert.ErrorIs(t, err, article.ErrNotFound)
}

func TestAnalyzeClassifierFailureDegrades(t *testing.T) {
	store := newFakeStore(&article.Article{ID: "a1", Title: "Some incident", URL: "https://example.com/a1"})
	p := testPipeline(store, &fakeClassifier{err: errors.New("model overloaded")}, &fakeAggregator{result: trend.Result{TrendScore: 12}}, nil)

	outcome, err := p.Analyze(context.Background(), "a1", false)
	require.NoError(t, err)

	saved := outcome.Article
	assert.Equal(t, article.DefaultCategory, saved.Category)
	assert.Zero(t, saved.ConfidenceScore)
	assert.Equal(t, 12, saved.TrendScore)
	assert.False(t, saved.Actionable)
	assert.Nil(t, saved.MarketData)
	assert.Equal(t, 1, store.savedCount())
}

func TestAnalyzePersistenceFailureIsFatal(t *testing.T) {
	store := newFakeStore(&article.Article{ID: "a1", Title: "Some incident"})
	store.saveErr = errors.New("connection reset")
	publisher := &fakePublisher{}
	p := testPipeline(store, &fakeClassifier{cls: fullClassification()}, &fakeAggregator{}, publisher)

	_, err := p.Analyze(context.Background(), "a1", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, publisher.subjects)
}

func TestAnalyzeRejectsConcurrentRunForSameID(t *testing.T) {
	store := newFakeStore(&article.Article{ID: "a1", Title: "Some incident"})
	classifier := &fakeClassifier{
		cls:     fullClassification(),
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	p := testPipeline(store, classifier, &fakeAggregator{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := p.Analyze(context.Background(), "a1", false)
		done <- err
	}()

	<-classifier.started // first run is now inside the pipeline

	_, err := p.Analyze(context.Background(), "a1", false)
	assert.ErrorIs(t, err, article.ErrAnalysisInFlight)

	close(classifier.block)
	require.NoError(t, <-done)

	// The slot is released after completion.
	_, err = p.Analyze(context.Background(), "a1", true)
	assert.NoError(t, err)
}

func TestAnalyzeExtractionFailureKeepsStoredText(t *testing.T) {
	store := newFakeStore(&article.Article{ID: "a1", Title: "Some incident", FullText: "short stored text"})
	p := NewPipeline(
		store,
		&fakeExtractor{err: errors.New("fetch blocked")},
		&fakeClassifier{cls: fullClassification()},
		&fakeAggregator{},
		nil,
		nil,
		testLogger(),
		PipelineConfig{},
	)

	outcome, err := p.Analyze(context.Background(), "a1", false)
	require.NoError(t, err)
	assert.Equal(t, "short stored text", outcome.Article.FullText)
}

func TestAnalyzeExtractionFailureWithoutStoredText(t *testing.T) {
	store := newFakeStore(&article.Article{ID: "a1", Title: "Some incident"})
	p := NewPipeline(
		store,
		&fakeExtractor{err: errors.New("fetch blocked")},
		&fakeClassifier{cls: fullClassification()},
		&fakeAggregator{},
		nil,
		nil,
		testLogger(),
		PipelineConfig{},
	)

	outcome, err := p.Analyze(context.Background(), "a1", false)
	require.NoError(t, err)
	assert.Equal(t, article.UnavailableText, outcome.Article.FullText)
	assert.Empty(t, outcome.Article.Keywords)
}
