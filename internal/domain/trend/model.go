package trend

import (
	"time"
)

// Direction labels describing how interest in a topic moved over the
// lookback window.
const (
	DirectionSurging   = "surging"
	DirectionRising    = "rising"
	DirectionStable    = "stable"
	DirectionFalling   = "falling"
	DirectionDeclining = "declining"
)

// Volume levels for virality classification.
const (
	VolumeLow    = "low"
	VolumeNormal = "normal"
	VolumeHigh   = "high"
	VolumeViral  = "viral"
)

// Momentum labels derived from the primary provider's rate of change.
const (
	MomentumAccelerating = "accelerating"
	MomentumStable       = "stable"
	MomentumDecelerating = "decelerating"
)

// Provider names used as keys in Result.Sources.
const (
	ProviderGoogle     = "google"
	ProviderReddit     = "reddit"
	ProviderHackerNews = "hackernews"
)

// DataPoint is one dated sample in a trend graph.
type DataPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Graph holds the downsampled time series for plotting.
type Graph struct {
	Period            string      `json:"period"`
	DataPoints        []DataPoint `json:"data_points"`
	KeywordsAnalyzed  []string    `json:"keywords_analyzed"`
	AggregationMethod string      `json:"aggregation_method"`
}

// Peak marks the highest point in the graph window.
type Peak struct {
	Date          string `json:"date,omitempty"`
	Value         int    `json:"value"`
	IsCurrentPeak bool   `json:"is_current_peak"`
}

// RelatedQuery is a rising search query related to the primary keyword.
type RelatedQuery struct {
	Query  string `json:"query"`
	Growth string `json:"growth"`
}

// RegionInterest is per-country interest reported by the primary provider.
type RegionInterest struct {
	Country  string `json:"country"`
	Interest int    `json:"interest"`
}

// SourceSignal is one provider's contribution to the composite score.
// Immutable once produced; only the fields relevant to a given provider
// are populated.
type SourceSignal struct {
	Score         int     `json:"score"`
	Direction     string  `json:"direction,omitempty"`
	ChangePercent float64 `json:"change_percent,omitempty"`

	// Primary provider extras.
	RawData         []DataPoint      `json:"raw_data,omitempty"`
	RelatedQueries  []RelatedQuery   `json:"related_queries,omitempty"`
	TrendingRegions []RegionInterest `json:"trending_regions,omitempty"`

	// Social-forum extras.
	Posts24h      int      `json:"posts_24h,omitempty"`
	Sentiment     string   `json:"sentiment,omitempty"`
	TopSubreddits []string `json:"top_subreddits,omitempty"`

	// Tech-forum extras.
	AvgPoints float64 `json:"avg_points,omitempty"`
}

// Virality classifies how hot a topic currently is.
type Virality struct {
	IsTrending  bool   `json:"is_trending"`
	IsBreakout  bool   `json:"is_breakout"`
	VolumeLevel string `json:"volume_level"`
	Momentum    string `json:"momentum"`
}

// Result is the unit of output from the trend aggregator. TrendScore is
// always within [0,100] and Graph.DataPoints holds at most 10 points in
// chronological order.
type Result struct {
	TrendScore     int                      `json:"trend_score"`
	Direction      string                   `json:"trend_direction"`
	ChangePercent  float64                  `json:"change_percent"`
	Graph          Graph                    `json:"graph"`
	Peak           Peak                     `json:"peak"`
	Sources        map[string]*SourceSignal `json:"sources"`
	Virality       Virality                 `json:"virality"`
	PrimaryKeyword string                   `json:"primary_keyword"`
	GeneratedAt    time.Time                `json:"generated_at"`
	Cached         bool                     `json:"cached"`
}

// Clone returns a copy of the result that shares no mutable state with
// the receiver. Source signals are copied by value; their slices are
// never mutated after production so they can be shared.
func (r Result) Clone() Result {
	out := r
	out.Sources = make(map[string]*SourceSignal, len(r.Sources))
	for name, sig := range r.Sources {
		copied := *sig
		out.Sources[name] = &copied
	}
	out.Graph.DataPoints = append([]DataPoint(nil), r.Graph.DataPoints...)
	out.Graph.KeywordsAnalyzed = append([]string(nil), r.Graph.KeywordsAnalyzed...)
	return out
}
