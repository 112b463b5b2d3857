package trends

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsradar/internal/domain/trend"
)

// fakeFetcher is a scripted signal provider for aggregator tests.
type fakeFetcher struct {
	name  string
	score int
	fill  func(req trend.FetchRequest, res *trend.Result)
	calls int
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Fetch(ctx context.Context, req trend.FetchRequest, res *trend.Result) int {
	f.calls++
	if f.fill != nil {
		f.fill(req, res)
	}
	return f.score
}

func newTestAggregator(primary, social, tech *fakeFetcher) *Aggregator {
	return NewAggregator(
		primary, social, tech,
		NewSynthesizer(),
		NewCache(16, time.Minute),
		testLogger(),
		DefaultAggregatorConfig(),
	)
}

// healthyPrimary scripts a primary provider that produced graph data.
func healthyPrimary(score int, direction string, change float64) *fakeFetcher {
	return &fakeFetcher{
		name:  trend.ProviderGoogle,
		score: score,
		fill: func(req trend.FetchRequest, res *trend.Result) {
			google := res.Sources[trend.ProviderGoogle]
			google.Score = score
			google.Direction = direction
			google.ChangePercent = change
			res.Graph.DataPoints = []trend.DataPoint{
				{Label: "2026-07-01", Value: score - 10},
				{Label: "2026-08-01", Value: score},
			}
			res.Peak = trend.Peak{Date: "2026-08-01", Value: score, IsCurrentPeak: true}
		},
	}
}

func secondary(name string, score int) *fakeFetcher {
	return &fakeFetcher{
		name:  name,
		score: score,
		fill: func(req trend.FetchRequest, res *trend.Result) {
			res.Sources[name].Score = score
		},
	}
}

func TestGetTrendsComputesWeightedComposite(t *testing.T) {
	agg := newTestAggregator(
		healthyPrimary(80, trend.DirectionRising, 18),
		secondary(trend.ProviderReddit, 40),
		secondary(trend.ProviderHackerNews, 40),
	)

	res := agg.GetTrends(context.Background(), []string{"Ransomware"}, 6)

	// 0.50*80 + 0.25*40 + 0.25*40
	assert.Equal(t, 60, res.TrendScore)
	assert.Equal(t, trend.DirectionRising, res.Direction)
	assert.InDelta(t, 18, res.ChangePercent, 0.01)
	assert.Equal(t, trend.VolumeHigh, res.Virality.VolumeLevel)
	assert.False(t, res.Virality.IsTrending)
	assert.False(t, res.Virality.IsBreakout)
	assert.Equal(t, trend.MomentumStable, res.Virality.Momentum)
	assert.Equal(t, "Ransomware", res.PrimaryKeyword)
	assert.False(t, res.Cached)
}

func TestGetTrendsScoreAlwaysInRange(t *testing.T) {
	agg := newTestAggregator(
		healthyPrimary(100, trend.DirectionSurging, 90),
		secondary(trend.ProviderReddit, 100),
		secondary(trend.ProviderHackerNews, 100),
	)

	res := agg.GetTrends(context.Background(), []string{"AI"}, 6)

	assert.Equal(t, 100, res.TrendScore)
	assert.Equal(t, trend.VolumeViral, res.Virality.VolumeLevel)
	assert.True(t, res.Virality.IsTrending)
	assert.True(t, res.Virality.IsBreakout)
	assert.Equal(t, trend.MomentumAccelerating, res.Virality.Momentum)
	assert.LessOrEqual(t, len(res.Graph.DataPoints), 10)
}

func TestGetTrendsAllSourcesFail(t *testing.T) {
	agg := newTestAggregator(
		&fakeFetcher{name: trend.ProviderGoogle},
		&fakeFetcher{name: trend.ProviderReddit},
		&fakeFetcher{name: trend.ProviderHackerNews},
	)

	res := agg.GetTrends(context.Background(), []string{"obscure"}, 6)

	assert.Zero(t, res.TrendScore)
	assert.Equal(t, trend.VolumeLow, res.Virality.VolumeLevel)
	assert.False(t, res.Virality.IsTrending)

	// The fallback synthesizer still guarantees a non-empty graph.
	require.Len(t, res.Graph.DataPoints, 10)
	for i := 1; i < len(res.Graph.DataPoints); i++ {
		assert.LessOrEqual(t, res.Graph.DataPoints[i-1].Label, res.Graph.DataPoints[i].Label)
	}
}

func TestGetTrendsFallsBackWhenPrimaryRateLimited(t *testing.T) {
	agg := newTestAggregator(
		&fakeFetcher{name: trend.ProviderGoogle}, // blocked: no score, no graph
		secondary(trend.ProviderReddit, 40),
		secondary(trend.ProviderHackerNews, 20),
	)

	res := agg.GetTrends(context.Background(), []string{"LockBit"}, 6)

	google := res.Sources[trend.ProviderGoogle]
	assert.Equal(t, trend.DirectionStable, google.Direction)
	assert.Zero(t, google.ChangePercent)
	assert.Equal(t, trend.DirectionStable, res.Direction)
	assert.Zero(t, res.ChangePercent)

	// base = 0.6*40 + 0.4*20 = 32; composite = 0.5*32 + 0.25*40 + 0.25*20
	assert.Equal(t, 32, google.Score)
	assert.Equal(t, 31, res.TrendScore)
	require.Len(t, res.Graph.DataPoints, 10)
}

func TestGetTrendsCachesWithinTTL(t *testing.T) {
	primary := healthyPrimary(60, trend.DirectionStable, 0)
	social := secondary(trend.ProviderReddit, 20)
	tech := secondary(trend.ProviderHackerNews, 20)
	agg := newTestAggregator(primary, social, tech)

	first := agg.GetTrends(context.Background(), []string{"Ransomware", "LockBit"}, 6)
	second := agg.GetTrends(context.Background(), []string{" ransomware ", "LOCKBIT"}, 6)

	assert.Equal(t, 1, primary.calls, "cache hit must not touch the primary provider")
	assert.Equal(t, 1, social.calls)
	assert.Equal(t, 1, tech.calls)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)

	// Identical apart from the cached flag.
	first.Cached = true
	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestGetTrendsNormalizesKeywords(t *testing.T) {
	var seen []string
	primary := &fakeFetcher{
		name: trend.ProviderGoogle,
		fill: func(req trend.FetchRequest, res *trend.Result) {
			seen = req.Keywords
			res.Graph.DataPoints = []trend.DataPoint{{Label: "2026-08-01", Value: 1}}
		},
	}
	agg := newTestAggregator(primary,
		&fakeFetcher{name: trend.ProviderReddit},
		&fakeFetcher{name: trend.ProviderHackerNews})

	agg.GetTrends(context.Background(),
		[]string{" Ransomware ", "x", strings.Repeat("k", 51), "LockBit", "APT29", "Windows", "Linux", "macOS"}, 6)

	// Trimmed, out-of-range lengths dropped, capped at five.
	assert.Equal(t, []string{"Ransomware", "LockBit", "APT29", "Windows", "Linux"}, seen)
}

func TestGetTrendsSubstitutesDefaultKeyword(t *testing.T) {
	agg := newTestAggregator(
		&fakeFetcher{name: trend.ProviderGoogle},
		&fakeFetcher{name: trend.ProviderReddit},
		&fakeFetcher{name: trend.ProviderHackerNews})

	res := agg.GetTrends(context.Background(), nil, 0)

	assert.Equal(t, "cybersecurity", res.PrimaryKeyword)
	assert.Equal(t, "Last 6 Months", res.Graph.Period)
	assert.NotEmpty(t, res.Graph.DataPoints)
}
