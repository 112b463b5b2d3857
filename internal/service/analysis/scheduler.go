// internal/service/analysis/scheduler.go

package analysis

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"newsradar/internal/domain/article"
)

// MaxWorkerCap is the hard ceiling on batch parallelism, protecting the
// upstream providers regardless of what a caller requests.
const MaxWorkerCap = 5

// DefaultBacklogLimit bounds how many unanalyzed articles one backlog run
// picks up.
const DefaultBacklogLimit = 50

// Scheduler fans the analyzer out over many articles with bounded
// parallelism. It implements article.BatchAnalyzer.
type Scheduler struct {
	analyzer article.Analyzer
	store    article.Store
	log      *logrus.Logger
	maxCap   int
}

// NewScheduler creates a batch scheduler. maxCap <= 0 selects the default
// hard cap.
func NewScheduler(analyzer article.Analyzer, store article.Store, log *logrus.Logger, maxCap int) *Scheduler {
	if maxCap <= 0 || maxCap > MaxWorkerCap {
		maxCap = MaxWorkerCap
	}
	return &Scheduler{analyzer: analyzer, store: store, log: log, maxCap: maxCap}
}

// AnalyzeMany analyzes the given ids concurrently. One article's failure
// never cancels the others. An article that is already analyzed or already
// being analyzed counts as completed, not failed.
func (s *Scheduler) AnalyzeMany(ctx context.Context, ids []string, maxParallel int) article.BatchResult {
	if maxParallel <= 0 || maxParallel > s.maxCap {
		maxParallel = s.maxCap
	}

	var (
		mu     sync.Mutex
		result article.BatchResult
		wg     sync.WaitGroup
	)
	sem := make(chan struct{}, maxParallel)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := s.analyzer.Analyze(ctx, id, false)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil, errors.Is(err, article.ErrAnalysisInFlight):
				result.Completed++
			default:
				s.log.WithError(err).WithField("article_id", id).Error("batch analysis failed for article")
				result.Failed++
			}
		}(id)
	}

	wg.Wait()
	return result
}

// AnalyzeBacklog selects up to limit unanalyzed articles and analyzes them.
func (s *Scheduler) AnalyzeBacklog(ctx context.Context, limit int) (article.BatchResult, error) {
	if limit <= 0 {
		limit = DefaultBacklogLimit
	}

	ids, err := s.store.FindUnanalyzedIDs(ctx, limit)
	if err != nil {
		return article.BatchResult{}, err
	}

	s.log.WithField("count", len(ids)).Info("starting backlog analysis")
	return s.AnalyzeMany(ctx, ids, s.maxCap), nil
}
