// internal/service/analysis/market.go

package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"newsradar/internal/domain/article"
)

// QuoteProvider fetches a live quote for a ticker symbol.
type QuoteProvider interface {
	GetQuote(ctx context.Context, ticker string) (*article.Quote, error)
}

// FetchMarketData resolves the classifier's primary company against the
// ticker table and attaches a live quote. An unknown company or a company
// without a public ticker yields nil. A quote failure degrades to static
// data with nil price fields rather than dropping the enrichment.
func FetchMarketData(ctx context.Context, quotes QuoteProvider, mention string, log *logrus.Logger) *article.MarketData {
	info, ok := LookupCompany(mention)
	if !ok || info.Ticker == "" {
		return nil
	}

	data := &article.MarketData{
		Ticker:      info.Ticker,
		CompanyName: info.Name,
		Currency:    "USD",
		MarketState: "Unknown",
		LogoURL:     fmt.Sprintf("https://logo.clearbit.com/%s", info.Domain),
	}

	if quotes == nil {
		return data
	}

	quote, err := quotes.GetQuote(ctx, info.Ticker)
	if err != nil {
		log.WithError(err).WithField("ticker", info.Ticker).Warn("quote fetch failed, keeping static market data")
		return data
	}

	last := round2(quote.LastPrice)
	data.LastPrice = &last
	if quote.PreviousClose > 0 {
		change := round2((quote.LastPrice - quote.PreviousClose) / quote.PreviousClose * 100)
		data.ChangePercent = &change
	}
	if quote.Currency != "" {
		data.Currency = quote.Currency
	}
	if quote.MarketState != "" {
		data.MarketState = quote.MarketState
	}
	return data
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
