package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsradar/internal/domain/article"
)

type fakeAnalyzer struct {
	mu        sync.Mutex
	active    int
	maxActive int
	calls     []string
	errs      map[string]error
	delay     time.Duration
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, id string, force bool) (*article.AnalysisOutcome, error) {
	f.mu.Lock()
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.calls = append(f.calls, id)
	err := f.errs[id]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.active--
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &article.AnalysisOutcome{}, nil
}

func TestAnalyzeManyBoundsParallelism(t *testing.T) {
	analyzer := &fakeAnalyzer{delay: 20 * time.Millisecond}
	s := NewScheduler(analyzer, newFakeStore(), testLogger(), 0)

	ids := make([]string, 8)
	for i := range ids {
		ids[i] = fmt.Sprintf("a%d", i)
	}

	result := s.AnalyzeMany(context.Background(), ids, 2)

	assert.Equal(t, 8, result.Completed)
	assert.Zero(t, result.Failed)
	assert.LessOrEqual(t, analyzer.maxActive, 2)
	assert.Len(t, analyzer.calls, 8)
}

func TestAnalyzeManyIsolatesFailures(t *testing.T) {
	analyzer := &fakeAnalyzer{errs: map[string]error{
		"bad": errors.New("boom"),
	}}
	s := NewScheduler(analyzer, newFakeStore(), testLogger(), 5)

	result := s.AnalyzeMany(context.Background(), []string{"a", "bad", "b"}, 5)

	assert.Equal(t, 2, result.Completed)
	assert.Equal(t, 1, result.Failed)
}

func TestAnalyzeManyTreatsInFlightAsCompleted(t *testing.T) {
	analyzer := &fakeAnalyzer{errs: map[string]error{
		"dup": fmt.Errorf("article dup: %w", article.ErrAnalysisInFlight),
	}}
	s := NewScheduler(analyzer, newFakeStore(), testLogger(), 5)

	result := s.AnalyzeMany(context.Background(), []string{"a", "dup"}, 5)

	assert.Equal(t, 2, result.Completed)
	assert.Zero(t, result.Failed)
}

func TestAnalyzeManyEnforcesHardCap(t *testing.T) {
	analyzer := &fakeAnalyzer{delay: 20 * time.Millisecond}
	s := NewScheduler(analyzer, newFakeStore(), testLogger(), 0)

	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("a%d", i)
	}

	// Requesting more workers than the cap allows must not exceed it.
	s.AnalyzeMany(context.Background(), ids, 50)
	assert.LessOrEqual(t, analyzer.maxActive, MaxWorkerCap)
}

func TestAnalyzeBacklog(t *testing.T) {
	store := newFakeStore()
	store.unanalyzed = []string{"a", "b", "c"}
	analyzer := &fakeAnalyzer{}
	s := NewScheduler(analyzer, store, testLogger(), 5)

	result, err := s.AnalyzeBacklog(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Completed)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, analyzer.calls)
}

func TestAnalyzeBacklogRespectsLimit(t *testing.T) {
	store := newFakeStore()
	store.unanalyzed = []string{"a", "b", "c", "d"}
	analyzer := &fakeAnalyzer{}
	s := NewScheduler(analyzer, store, testLogger(), 5)

	result, err := s.AnalyzeBacklog(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Completed)
}

func TestAnalyzeBacklogStoreError(t *testing.T) {
	store := newFakeStore()
	store.findErr = errors.New("db down")
	s := NewScheduler(&fakeAnalyzer{}, store, testLogger(), 5)

	_, err := s.AnalyzeBacklog(context.Background(), 10)
	assert.Error(t, err)
}
