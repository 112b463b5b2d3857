package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsradar/internal/domain/trend"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newGoogleTestClient(t *testing.T, handler http.Handler) *GoogleTrendsClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewGoogleTrendsClient(srv.URL, 5*time.Second, NewProviderLimiter(time.Millisecond), testLogger())
	client.courtesyDelay = 0
	return client
}

func timelineHandler(t *testing.T, points []GoogleTimelinePoint) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/timeline", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(googleTimelineResponse{Timeline: points}))
	})
	mux.HandleFunc("/related", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"queries":[{"query":"lockbit decryptor","growth":"+250%"}]}`)
	})
	mux.HandleFunc("/regions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"regions":[{"country":"US","interest":100},{"country":"DE","interest":0},{"country":"GB","interest":64}]}`)
	})
	return mux
}

func weeklyPoints(values ...float64) []GoogleTimelinePoint {
	points := make([]GoogleTimelinePoint, 0, len(values))
	start := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		points = append(points, GoogleTimelinePoint{
			Date:   start.AddDate(0, 0, i*7).Format("2006-01-02"),
			Values: []float64{v},
		})
	}
	return points
}

func TestGoogleFetchShortHistoryStaysStable(t *testing.T) {
	// Four synthetic weeks and no prior data: not enough points for a
	// change window, so the direction must stay stable.
	client := newGoogleTestClient(t, timelineHandler(t, weeklyPoints(40, 45, 50, 80)))

	res := skeletonResult()
	req := trend.FetchRequest{Keywords: []string{"Ransomware", "LockBit"}, LookbackMonths: 6}
	score := client.Fetch(context.Background(), req, &res)

	assert.Equal(t, 53, score) // mean(40,45,50,80) truncated

	google := res.Sources[trend.ProviderGoogle]
	assert.Equal(t, 53, google.Score)
	assert.Zero(t, google.ChangePercent)
	assert.Equal(t, trend.DirectionStable, google.Direction)

	require.Len(t, res.Graph.DataPoints, 4)
	assert.Equal(t, 80, res.Peak.Value)
	assert.True(t, res.Peak.IsCurrentPeak)
}

func TestGoogleFetchComputesChangeAndDirection(t *testing.T) {
	// Previous window mean 40, recent window mean 60: +50% is surging.
	client := newGoogleTestClient(t, timelineHandler(t, weeklyPoints(40, 40, 40, 40, 60, 60, 60, 60)))

	res := skeletonResult()
	req := trend.FetchRequest{Keywords: []string{"Phishing"}}
	client.Fetch(context.Background(), req, &res)

	google := res.Sources[trend.ProviderGoogle]
	assert.InDelta(t, 50.0, google.ChangePercent, 0.01)
	assert.Equal(t, trend.DirectionSurging, google.Direction)
}

func TestGoogleFetchDownsamplesWithMaxPooling(t *testing.T) {
	values := make([]float64, 26)
	for i := range values {
		values[i] = 10
	}
	values[13] = 95 // mid-window spike that averaging would smooth away

	client := newGoogleTestClient(t, timelineHandler(t, weeklyPoints(values...)))

	res := skeletonResult()
	client.Fetch(context.Background(), trend.FetchRequest{Keywords: []string{"Malware"}}, &res)

	require.NotEmpty(t, res.Graph.DataPoints)
	assert.LessOrEqual(t, len(res.Graph.DataPoints), 10)

	var spikeKept bool
	for _, p := range res.Graph.DataPoints {
		if p.Value == 95 {
			spikeKept = true
		}
	}
	assert.True(t, spikeKept, "max-pooling must preserve the spike")
	assert.Equal(t, 95, res.Peak.Value)

	for i := 1; i < len(res.Graph.DataPoints); i++ {
		assert.Less(t, res.Graph.DataPoints[i-1].Label, res.Graph.DataPoints[i].Label)
	}
}

func TestGoogleFetchAveragesAcrossKeywords(t *testing.T) {
	points := []GoogleTimelinePoint{
		{Date: "2026-08-01", Values: []float64{20, 60}},
		{Date: "2026-08-08", Values: []float64{40, 80}},
	}
	client := newGoogleTestClient(t, timelineHandler(t, points))

	res := skeletonResult()
	client.Fetch(context.Background(), trend.FetchRequest{Keywords: []string{"AI", "OpenAI"}}, &res)

	google := res.Sources[trend.ProviderGoogle]
	require.Len(t, google.RawData, 2)
	assert.Equal(t, 40, google.RawData[0].Value)
	assert.Equal(t, 60, google.RawData[1].Value)
	assert.Equal(t, 50, google.Score)
}

func TestGoogleFetchCollectsBestEffortEnrichments(t *testing.T) {
	client := newGoogleTestClient(t, timelineHandler(t, weeklyPoints(10, 20)))

	res := skeletonResult()
	client.Fetch(context.Background(), trend.FetchRequest{Keywords: []string{"LockBit"}}, &res)

	google := res.Sources[trend.ProviderGoogle]
	require.Len(t, google.RelatedQueries, 1)
	assert.Equal(t, "lockbit decryptor", google.RelatedQueries[0].Query)

	// Zero-interest regions are dropped.
	require.Len(t, google.TrendingRegions, 2)
	assert.Equal(t, "US", google.TrendingRegions[0].Country)
}

func TestGoogleFetchReturnsZeroWhenRateLimited(t *testing.T) {
	client := newGoogleTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	res := skeletonResult()
	score := client.Fetch(context.Background(), trend.FetchRequest{Keywords: []string{"Botnet"}}, &res)

	assert.Zero(t, score)
	assert.Empty(t, res.Graph.DataPoints)
	assert.Zero(t, res.Sources[trend.ProviderGoogle].Score)
}

func TestGoogleFetchReturnsZeroOnEmptyTimeline(t *testing.T) {
	client := newGoogleTestClient(t, timelineHandler(t, nil))

	res := skeletonResult()
	score := client.Fetch(context.Background(), trend.FetchRequest{Keywords: []string{"Botnet"}}, &res)

	assert.Zero(t, score)
	assert.Empty(t, res.Graph.DataPoints)
}
