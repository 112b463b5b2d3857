package trends

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsradar/internal/domain/trend"
)

func TestRedditFetchNormalizesScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "q=LockBit")

		var children []string
		for i := 0; i < 10; i++ {
			sub := "netsec"
			if i%2 == 0 {
				sub = "cybersecurity"
			}
			children = append(children, fmt.Sprintf(
				`{"data":{"score":50,"subreddit":"%s","upvote_ratio":0.8}}`, sub))
		}
		fmt.Fprintf(w, `{"data":{"children":[%s]}}`, strings.Join(children, ","))
	}))
	defer srv.Close()

	client := NewRedditClient(srv.URL, 5*time.Second, NewProviderLimiter(time.Millisecond), testLogger())
	client.courtesyDelay = 0

	res := skeletonResult()
	score := client.Fetch(context.Background(), trend.FetchRequest{Keywords: []string{"LockBit"}}, &res)

	// 10 posts: 10/25*100 = 40 volume, avg score 50: 50/100*20 = 10.
	assert.Equal(t, 50, score)

	sig := res.Sources[trend.ProviderReddit]
	assert.Equal(t, 10, sig.Posts24h)
	assert.Equal(t, "positive", sig.Sentiment)
	assert.Equal(t, []string{"cybersecurity", "netsec"}, sig.TopSubreddits)
}

func TestRedditFetchReturnsZeroOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewRedditClient(srv.URL, 5*time.Second, NewProviderLimiter(time.Millisecond), testLogger())
	client.courtesyDelay = 0

	res := skeletonResult()
	score := client.Fetch(context.Background(), trend.FetchRequest{Keywords: []string{"LockBit"}}, &res)

	assert.Zero(t, score)
	assert.Zero(t, res.Sources[trend.ProviderReddit].Posts24h)
}

func TestHackerNewsFetchFiltersToLastDay(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recent := now.Add(-2 * time.Hour).Unix()
		stale := now.Add(-72 * time.Hour).Unix()
		fmt.Fprintf(w, `{"hits":[
			{"points":40,"created_at_i":%d},
			{"points":20,"created_at_i":%d},
			{"points":500,"created_at_i":%d}
		]}`, recent, recent, stale)
	}))
	defer srv.Close()

	client := NewHackerNewsClient(srv.URL, 5*time.Second, NewProviderLimiter(time.Millisecond), testLogger())
	client.courtesyDelay = 0
	client.now = func() time.Time { return now }

	res := skeletonResult()
	score := client.Fetch(context.Background(), trend.FetchRequest{Keywords: []string{"Go"}}, &res)

	sig := res.Sources[trend.ProviderHackerNews]
	require.Equal(t, 2, sig.Posts24h)
	assert.InDelta(t, 30.0, sig.AvgPoints, 0.01)

	// 2 posts: 2/10*50 = 10 volume, avg 30 points: 30/50*50 = 30.
	assert.Equal(t, 40, score)
}

func TestHackerNewsFetchCapsScoreAtHundred(t *testing.T) {
	now := time.Now()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var hits []string
		for i := 0; i < 25; i++ {
			hits = append(hits, fmt.Sprintf(`{"points":400,"created_at_i":%d}`, now.Unix()))
		}
		fmt.Fprintf(w, `{"hits":[%s]}`, strings.Join(hits, ","))
	}))
	defer srv.Close()

	client := NewHackerNewsClient(srv.URL, 5*time.Second, NewProviderLimiter(time.Millisecond), testLogger())
	client.courtesyDelay = 0

	res := skeletonResult()
	score := client.Fetch(context.Background(), trend.FetchRequest{Keywords: []string{"AI"}}, &res)

	assert.Equal(t, 100, score)
}
