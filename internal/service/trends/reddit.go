// internal/service/trends/reddit.go

package trends

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"newsradar/internal/domain/trend"
)

// RedditClient measures social-forum chatter around a keyword over the
// last day. It contributes a score plus post counts, sentiment and the
// most active communities.
type RedditClient struct {
	httpClient    *http.Client
	baseURL       string
	limiter       *ProviderLimiter
	log           *logrus.Logger
	courtesyDelay time.Duration
}

// redditPost is the subset of post fields the signal needs.
type redditPost struct {
	Score       int     `json:"score"`
	Subreddit   string  `json:"subreddit"`
	UpvoteRatio float64 `json:"upvote_ratio"`
}

// redditResponse mirrors the search listing shape.
type redditResponse struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// NewRedditClient creates the social-forum fetcher.
func NewRedditClient(baseURL string, timeout time.Duration, limiter *ProviderLimiter, log *logrus.Logger) *RedditClient {
	return &RedditClient{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(baseURL, "/"),
		limiter:       limiter,
		log:           log,
		courtesyDelay: time.Second,
	}
}

// Name returns the provider name.
func (c *RedditClient) Name() string { return trend.ProviderReddit }

// Fetch searches the last 24 hours for the primary keyword and fills the
// social slice of the result. Returns the normalized score, or 0 on any
// failure.
func (c *RedditClient) Fetch(ctx context.Context, req trend.FetchRequest, res *trend.Result) int {
	keyword := req.PrimaryKeyword()
	if keyword == "" {
		return 0
	}

	if err := c.limiter.Wait(ctx, trend.ProviderReddit); err != nil {
		return 0
	}

	endpoint := fmt.Sprintf("%s/search.json?q=%s&sort=new&limit=25&t=day",
		c.baseURL, url.QueryEscape(keyword))

	var payload redditResponse
	if err := fetchJSON(ctx, c.httpClient, endpoint, &payload); err != nil {
		c.log.WithError(err).Warn("reddit fetch failed, leaving social signal empty")
		return 0
	}

	posts := make([]redditPost, 0, len(payload.Data.Children))
	for _, child := range payload.Data.Children {
		posts = append(posts, child.Data)
	}

	sig := res.Sources[trend.ProviderReddit]
	if sig == nil {
		sig = &trend.SourceSignal{}
		res.Sources[trend.ProviderReddit] = sig
	}

	postCount := len(posts)
	sig.Posts24h = postCount

	var totalScore int
	bySubreddit := make(map[string]int)
	for _, p := range posts {
		totalScore += p.Score
		bySubreddit[p.Subreddit]++
	}
	sig.TopSubreddits = topSubreddits(bySubreddit, 5)

	if postCount > 0 {
		var ratioSum float64
		for _, p := range posts {
			ratioSum += p.UpvoteRatio
		}
		switch avg := ratioSum / float64(postCount); {
		case avg > 0.7:
			sig.Sentiment = "positive"
		case avg < 0.4:
			sig.Sentiment = "negative"
		}
	}

	avgScore := float64(totalScore) / float64(maxInt(1, postCount))

	// 25+ posts in a day saturates the volume component; high average
	// vote counts add at most 20 points on top.
	normalized := float64(postCount)/25*100 + avgScore/100*20
	if normalized > 100 {
		normalized = 100
	}
	sig.Score = int(normalized)

	courtesySleep(ctx, c.courtesyDelay)
	return sig.Score
}

// topSubreddits returns the n most active community names, busiest first.
func topSubreddits(counts map[string]int, n int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
