// internal/service/trends/aggregator.go

package trends

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"newsradar/internal/domain/trend"
)

// AggregatorConfig contains configuration for composite scoring.
type AggregatorConfig struct {
	GoogleWeight   float64
	RedditWeight   float64
	HNWeight       float64
	DefaultKeyword string
	LookbackMonths int
}

// DefaultAggregatorConfig returns the standard source weighting.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		GoogleWeight:   0.50,
		RedditWeight:   0.25,
		HNWeight:       0.25,
		DefaultKeyword: "cybersecurity",
		LookbackMonths: 6,
	}
}

// Aggregator implements the trend.Aggregator interface. It orchestrates
// the fetchers, the cache and the fallback synthesizer into one composite
// result and guarantees a structurally valid result for any input.
type Aggregator struct {
	primary  trend.SourceFetcher
	social   trend.SourceFetcher
	tech     trend.SourceFetcher
	fallback *Synthesizer
	cache    *Cache
	log      *logrus.Logger
	config   AggregatorConfig
	now      func() time.Time
}

// NewAggregator creates a new trend aggregator.
func NewAggregator(
	primary trend.SourceFetcher,
	social trend.SourceFetcher,
	tech trend.SourceFetcher,
	fallback *Synthesizer,
	cache *Cache,
	log *logrus.Logger,
	config AggregatorConfig,
) *Aggregator {
	return &Aggregator{
		primary:  primary,
		social:   social,
		tech:     tech,
		fallback: fallback,
		cache:    cache,
		log:      log,
		config:   config,
		now:      time.Now,
	}
}

// GetTrends fuses all signal providers into one composite result for the
// given keywords. Cache hits within the TTL are returned as copies marked
// Cached without touching any provider or limiter. The call never fails:
// provider outages degrade through the fallback synthesizer.
func (a *Aggregator) GetTrends(ctx context.Context, keywords []string, lookbackMonths int) trend.Result {
	if lookbackMonths <= 0 {
		lookbackMonths = a.config.LookbackMonths
	}

	clean := normalizeKeywords(keywords)
	if len(clean) == 0 {
		clean = []string{a.config.DefaultKeyword}
	}

	key := CacheKey(clean)
	if cached, ok := a.cache.Get(key); ok {
		cached.Cached = true
		a.log.WithField("keyword", cached.PrimaryKeyword).Debug("using cached trends")
		return cached
	}

	res := a.newResult(clean, lookbackMonths)
	req := trend.FetchRequest{Keywords: clean, LookbackMonths: lookbackMonths}

	googleScore := a.primary.Fetch(ctx, req, &res)
	redditScore := a.social.Fetch(ctx, req, &res)
	hnScore := a.tech.Fetch(ctx, req, &res)

	// A primary failure leaves the graph empty; synthesize one from the
	// secondary signals so the graph contract always holds.
	if len(res.Graph.DataPoints) == 0 {
		googleScore = a.fallback.Synthesize(clean, &res)
	}

	composite := float64(googleScore)*a.config.GoogleWeight +
		float64(redditScore)*a.config.RedditWeight +
		float64(hnScore)*a.config.HNWeight
	res.TrendScore = int(math.Round(math.Min(100, math.Max(0, composite))))

	classifyVirality(&res)

	// The primary provider is the single source of truth for direction.
	google := res.Sources[trend.ProviderGoogle]
	res.Direction = google.Direction
	res.ChangePercent = google.ChangePercent

	a.cache.Put(key, res)

	a.log.WithFields(logrus.Fields{
		"keyword":     res.PrimaryKeyword,
		"trend_score": res.TrendScore,
		"google":      googleScore,
		"reddit":      redditScore,
		"hackernews":  hnScore,
	}).Info("trend aggregation complete")

	return res
}

// newResult builds the unified result skeleton so every fetcher and every
// consumer sees a well-formed structure regardless of what succeeds.
func (a *Aggregator) newResult(keywords []string, lookbackMonths int) trend.Result {
	return trend.Result{
		Direction: trend.DirectionStable,
		Graph: trend.Graph{
			Period:            fmt.Sprintf("Last %d Months", lookbackMonths),
			KeywordsAnalyzed:  keywords,
			AggregationMethod: "composite_average",
		},
		Sources: map[string]*trend.SourceSignal{
			trend.ProviderGoogle:     {Direction: trend.DirectionStable},
			trend.ProviderReddit:     {Sentiment: "neutral"},
			trend.ProviderHackerNews: {},
		},
		Virality: trend.Virality{
			VolumeLevel: trend.VolumeNormal,
			Momentum:    trend.MomentumStable,
		},
		PrimaryKeyword: keywords[0],
		GeneratedAt:    a.now(),
	}
}

// classifyVirality derives volume, breakout and momentum labels from the
// composite score and the primary provider's movement.
func classifyVirality(res *trend.Result) {
	switch score := res.TrendScore; {
	case score >= 90:
		res.Virality.IsTrending = true
		res.Virality.VolumeLevel = trend.VolumeViral
	case score >= 75:
		res.Virality.IsTrending = true
		res.Virality.VolumeLevel = trend.VolumeHigh
	case score >= 50:
		res.Virality.VolumeLevel = trend.VolumeHigh
	case score >= 25:
		res.Virality.VolumeLevel = trend.VolumeNormal
	default:
		res.Virality.VolumeLevel = trend.VolumeLow
	}

	change := res.Sources[trend.ProviderGoogle].ChangePercent
	res.Virality.IsBreakout = change > 50

	switch {
	case change > 20:
		res.Virality.Momentum = trend.MomentumAccelerating
	case change < -20:
		res.Virality.Momentum = trend.MomentumDecelerating
	default:
		res.Virality.Momentum = trend.MomentumStable
	}
}

// normalizeKeywords trims input, drops out-of-range lengths and caps the
// list at the 5 keywords the primary provider accepts.
func normalizeKeywords(keywords []string) []string {
	clean := make([]string, 0, 5)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if len(kw) < 2 || len(kw) > 50 {
			continue
		}
		clean = append(clean, kw)
		if len(clean) == 5 {
			break
		}
	}
	return clean
}
