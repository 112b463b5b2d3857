// internal/domain/trend/aggregator.go

package trend

import (
	"context"
)

// Aggregator defines the interface for composite trend scoring
type Aggregator interface {
	// GetTrends fuses the configured signal providers into one composite
	// result for the given keywords. It never returns an error: provider
	// failures degrade to defaults or synthesized data.
	GetTrends(ctx context.Context, keywords []string, lookbackMonths int) Result
}

// FetchRequest carries the normalized inputs handed to every fetcher.
type FetchRequest struct {
	// Keywords is the normalized keyword list, at most 5 entries.
	Keywords []string

	// LookbackMonths is the time window for providers that build a
	// series; providers without history ignore it.
	LookbackMonths int
}

// PrimaryKeyword returns the first keyword of the request.
func (r FetchRequest) PrimaryKeyword() string {
	if len(r.Keywords) == 0 {
		return ""
	}
	return r.Keywords[0]
}

// SourceFetcher defines one external signal provider
type SourceFetcher interface {
	// Name returns the provider name used as the key in Result.Sources
	Name() string

	// Fetch queries the provider and fills its slice of the shared result.
	// It returns the provider's normalized score in [0,100]. Failures of
	// any kind yield 0 with the result left at defaults; Fetch never
	// panics and never returns an error.
	Fetch(ctx context.Context, req FetchRequest, res *Result) int
}
