// internal/service/trends/google.go

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

// Direction thresholds on the primary provider's change percentage.
const (
	surgingThreshold   = 30
	risingThreshold    = 15
	fallingThreshold   = -15
	decliningThreshold = -30
)

const graphTargetPoints = 10

// GoogleTrendsClient fetches search-interest time series from the
// trends timeline API. It is the primary signal source and the only one
// that contributes graph data.
type GoogleTrendsClient struct {
	httpClient    *http.Client
	baseURL       string
	limiter       *ProviderLimiter
	log           *logrus.Logger
	courtesyDelay time.Duration
}

// GoogleTimelinePoint is one dated sample with per-keyword values.
type GoogleTimelinePoint struct {
	Date   string    `json:"date"`
	Values []float64 `json:"values"`
}

// googleTimelineResponse is the timeline endpoint payload.
type googleTimelineResponse struct {
	Timeline []GoogleTimelinePoint `json:"timeline"`
}

type googleRelatedResponse struct {
	Queries []trend.RelatedQuery `json:"queries"`
}

type googleRegionsResponse struct {
	Regions []trend.RegionInterest `json:"regions"`
}

// NewGoogleTrendsClient creates the primary trend fetcher.
func NewGoogleTrendsClient(baseURL string, timeout time.Duration, limiter *ProviderLimiter, log *logrus.Logger) *GoogleTrendsClient {
	return &GoogleTrendsClient{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(baseURL, "/"),
		limiter:       limiter,
		log:           log,
		courtesyDelay: time.Second,
	}
}

// Name returns the provider name.
func (c *GoogleTrendsClient) Name() string { return trend.ProviderGoogle }

// Fetch queries interest over time for up to 5 keywords, downsamples the
// series to at most 10 points by max-pooling, and fills the result's
// graph, peak and primary source slice. Related queries and regional
// interest are fetched best-effort and never fail the call. Returns the
// normalized score, or 0 on any failure.
func (c *GoogleTrendsClient) Fetch(ctx context.Context, req trend.FetchRequest, res *trend.Result) int {
	keywords := req.Keywords
	if len(keywords) == 0 {
		return 0
	}
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}

	if err := c.limiter.Wait(ctx, trend.ProviderGoogle); err != nil {
		return 0
	}

	months := req.LookbackMonths
	if months <= 0 {
		months = 6
	}
	endpoint := fmt.Sprintf("%s/timeline?keywords=%s&months=%d",
		c.baseURL, url.QueryEscape(strings.Join(keywords, ",")), months)

	var payload googleTimelineResponse
	if err := fetchJSON(ctx, c.httpClient, endpoint, &payload); err != nil {
		c.log.WithError(err).Warn("google trends fetch failed, leaving primary signal empty")
		return 0
	}
	if len(payload.Timeline) == 0 {
		c.log.Warn("google trends returned empty timeline")
		return 0
	}

	google := res.Sources[trend.ProviderGoogle]
	if google == nil {
		google = &trend.SourceSignal{}
		res.Sources[trend.ProviderGoogle] = google
	}

	// Composite value per date: average across the requested keywords.
	composite := make([]float64, 0, len(payload.Timeline))
	for _, point := range payload.Timeline {
		var sum float64
		for _, v := range point.Values {
			sum += v
		}
		value := 0.0
		if len(point.Values) > 0 {
			value = sum / float64(len(point.Values))
		}
		composite = append(composite, value)
		google.RawData = append(google.RawData, trend.DataPoint{
			Label: point.Date,
			Value: int(value),
		})
	}

	res.Graph.DataPoints, res.Peak = downsample(google.RawData)
	res.Graph.KeywordsAnalyzed = keywords

	score := int(meanTail(composite, 4))
	google.Score = score

	// Week-over-week style movement needs two full windows.
	if len(composite) >= 8 {
		recent := meanTail(composite, 4)
		previous := meanTail(composite[:len(composite)-4], 4)
		if previous > 0 {
			change := (recent - previous) / previous * 100
			google.ChangePercent = round1(change)
			google.Direction = directionFor(change)
		}
	}

	courtesySleep(ctx, c.courtesyDelay)
	c.fetchRelatedQueries(ctx, keywords[0], google)

	courtesySleep(ctx, c.courtesyDelay)
	c.fetchTrendingRegions(ctx, keywords[0], google)

	return score
}

// fetchRelatedQueries is a best-effort enrichment; failures only log.
func (c *GoogleTrendsClient) fetchRelatedQueries(ctx context.Context, keyword string, sig *trend.SourceSignal) {
	endpoint := fmt.Sprintf("%s/related?keyword=%s", c.baseURL, url.QueryEscape(keyword))

	var payload googleRelatedResponse
	if err := fetchJSON(ctx, c.httpClient, endpoint, &payload); err != nil {
		c.log.WithError(err).Debug("related queries fetch failed")
		return
	}
	if len(payload.Queries) > 5 {
		payload.Queries = payload.Queries[:5]
	}
	sig.RelatedQueries = payload.Queries
}

// fetchTrendingRegions is a best-effort enrichment; failures only log.
func (c *GoogleTrendsClient) fetchTrendingRegions(ctx context.Context, keyword string, sig *trend.SourceSignal) {
	endpoint := fmt.Sprintf("%s/regions?keyword=%s", c.baseURL, url.QueryEscape(keyword))

	var payload googleRegionsResponse
	if err := fetchJSON(ctx, c.httpClient, endpoint, &payload); err != nil {
		c.log.WithError(err).Debug("trending regions fetch failed")
		return
	}
	for _, region := range payload.Regions {
		if region.Interest <= 0 {
			continue
		}
		sig.TrendingRegions = append(sig.TrendingRegions, region)
		if len(sig.TrendingRegions) == 5 {
			break
		}
	}
}

// downsample reduces the raw series to at most graphTargetPoints using
// max-pooling per chunk, preserving spikes that averaging would smooth
// away. It also locates the peak.
func downsample(raw []trend.DataPoint) ([]trend.DataPoint, trend.Peak) {
	total := len(raw)
	if total == 0 {
		return nil, trend.Peak{}
	}

	chunkSize := (total + graphTargetPoints - 1) / graphTargetPoints

	points := make([]trend.DataPoint, 0, graphTargetPoints)
	peak := trend.Peak{}

	for start := 0; start < total; start += chunkSize {
		end := start + chunkSize
		if end > total {
			end = total
		}

		best := raw[start]
		for _, p := range raw[start+1 : end] {
			if p.Value > best.Value {
				best = p
			}
		}
		points = append(points, best)

		if best.Value > peak.Value {
			peak.Value = best.Value
			peak.Date = best.Label
		}
	}

	if len(points) > graphTargetPoints {
		points = points[len(points)-graphTargetPoints:]
	}
	if peak.Date != "" && len(points) > 0 {
		peak.IsCurrentPeak = peak.Date == points[len(points)-1].Label
	}

	return points, peak
}

// directionFor maps a change percentage to a direction label.
func directionFor(change float64) string {
	switch {
	case change > surgingThreshold:
		return trend.DirectionSurging
	case change > risingThreshold:
		return trend.DirectionRising
	case change < decliningThreshold:
		return trend.DirectionDeclining
	case change < fallingThreshold:
		return trend.DirectionFalling
	default:
		return trend.DirectionStable
	}
}

// meanTail averages the last n values, or all values if fewer exist.
func meanTail(values []float64, n int) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) < n {
		n = len(values)
	}
	var sum float64
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n)
}

func round1(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}
