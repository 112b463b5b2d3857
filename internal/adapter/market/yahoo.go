// internal/adapter/market/yahoo.go

package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"newsradar/internal/domain/article"
)

const userAgent = "newsradar/1.0"

// YahooQuoteClient fetches point-in-time quotes from a Yahoo-style finance
// quote API.
type YahooQuoteClient struct {
	client  *http.Client
	baseURL string
	log     *logrus.Logger
}

// NewYahooQuoteClient creates a quote client. baseURL is the API root,
// e.g. "https://query1.finance.yahoo.com".
func NewYahooQuoteClient(baseURL string, timeout time.Duration, log *logrus.Logger) *YahooQuoteClient {
	return &YahooQuoteClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
			Currency                   string  `json:"currency"`
			MarketState                string  `json:"marketState"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// GetQuote implements analysis.QuoteProvider.
func (c *YahooQuoteClient) GetQuote(ctx context.Context, ticker string) (*article.Quote, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating quote request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching quote for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote api returned status %d for %s", resp.StatusCode, ticker)
	}

	var decoded quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding quote response: %w", err)
	}
	if len(decoded.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}

	q := decoded.QuoteResponse.Result[0]
	return &article.Quote{
		LastPrice:     q.RegularMarketPrice,
		PreviousClose: q.RegularMarketPreviousClose,
		Currency:      q.Currency,
		MarketState:   marketState(q.MarketState),
	}, nil
}

// marketState maps the API's state codes to display values.
func marketState(state string) string {
	switch strings.ToUpper(state) {
	case "REGULAR":
		return "Open"
	case "PRE", "PREPRE":
		return "Pre-Market"
	case "POST", "POSTPOST":
		return "After-Hours"
	case "CLOSED":
		return "Closed"
	default:
		if state == "" {
			return "Unknown"
		}
		return state
	}
}
