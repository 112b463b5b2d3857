// internal/service/trends/http.go

package trends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const userAgent = "newsradar/1.0"

// errRateLimited marks a provider response that indicates throttling or
// blocking. It is never retried; the caller degrades instead.
var errRateLimited = errors.New("provider rate limited")

// fetchJSON performs a GET with retry on transient transport failures and
// decodes the JSON body into out. Provider-side rejections (429, 400,
// rate-limit messages, other non-200 statuses, malformed payloads) are
// permanent: callers handle them by degrading, not by hammering the
// provider again.
func fetchJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("reading provider response: %w", err))
		}

		if resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusBadRequest ||
			strings.Contains(strings.ToLower(string(body)), "rate limit") {
			return backoff.Permanent(errRateLimited)
		}

		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("provider returned status %d", resp.StatusCode))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding provider response: %w", err))
		}

		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 2), ctx))
}

// courtesySleep applies a short fixed delay after a successful provider
// call, respecting cancellation.
func courtesySleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
