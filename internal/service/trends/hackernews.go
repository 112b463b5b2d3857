// internal/service/trends/hackernews.go

package trends

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"newsradar/internal/domain/trend"
)

// HackerNewsClient measures tech-forum discussion around a keyword via a
// date-sorted story search. Only stories from the last 24 hours count.
type HackerNewsClient struct {
	httpClient    *http.Client
	baseURL       string
	limiter       *ProviderLimiter
	log           *logrus.Logger
	courtesyDelay time.Duration
	now           func() time.Time
}

type hnHit struct {
	Points    int   `json:"points"`
	CreatedAt int64 `json:"created_at_i"`
}

type hnSearchResponse struct {
	Hits []hnHit `json:"hits"`
}

// NewHackerNewsClient creates the tech-forum fetcher.
func NewHackerNewsClient(baseURL string, timeout time.Duration, limiter *ProviderLimiter, log *logrus.Logger) *HackerNewsClient {
	return &HackerNewsClient{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(baseURL, "/"),
		limiter:       limiter,
		log:           log,
		courtesyDelay: time.Second,
		now:           time.Now,
	}
}

// Name returns the provider name.
func (c *HackerNewsClient) Name() string { return trend.ProviderHackerNews }

// Fetch searches recent stories for the primary keyword and fills the
// tech-forum slice of the result. Returns the normalized score, or 0 on
// any failure.
func (c *HackerNewsClient) Fetch(ctx context.Context, req trend.FetchRequest, res *trend.Result) int {
	keyword := req.PrimaryKeyword()
	if keyword == "" {
		return 0
	}

	if err := c.limiter.Wait(ctx, trend.ProviderHackerNews); err != nil {
		return 0
	}

	endpoint := fmt.Sprintf("%s/api/v1/search_by_date?query=%s&tags=story&hitsPerPage=25",
		c.baseURL, url.QueryEscape(keyword))

	var payload hnSearchResponse
	if err := fetchJSON(ctx, c.httpClient, endpoint, &payload); err != nil {
		c.log.WithError(err).Warn("hacker news fetch failed, leaving tech signal empty")
		return 0
	}

	cutoff := c.now().Add(-24 * time.Hour).Unix()

	var postCount, totalPoints int
	for _, hit := range payload.Hits {
		if hit.CreatedAt < cutoff {
			continue
		}
		postCount++
		totalPoints += hit.Points
	}

	sig := res.Sources[trend.ProviderHackerNews]
	if sig == nil {
		sig = &trend.SourceSignal{}
		res.Sources[trend.ProviderHackerNews] = sig
	}

	avgPoints := float64(totalPoints) / float64(maxInt(1, postCount))
	sig.Posts24h = postCount
	sig.AvgPoints = round1(avgPoints)

	// 10+ fresh stories averaging 50+ points saturates the score.
	normalized := float64(postCount)/10*50 + avgPoints/50*50
	if normalized > 100 {
		normalized = 100
	}
	sig.Score = int(normalized)

	courtesySleep(ctx, c.courtesyDelay)
	return sig.Score
}
