// internal/adapter/scraper/readability.go

package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/sirupsen/logrus"

	"newsradar/internal/domain/article"
)

const userAgent = "newsradar/1.0"

const wordsPerMinute = 200

// Extractor pulls readable text and page metadata from an article URL
// using go-readability.
type Extractor struct {
	client *http.Client
	log    *logrus.Logger
}

// NewExtractor creates a content extractor with the given request timeout.
func NewExtractor(timeout time.Duration, log *logrus.Logger) *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Extract fetches the page and distills it into readable content. The
// caller decides how to degrade on error; Extract never partially fills
// the result on failure.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*article.ExtractedContent, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing article url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching article page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching article page: unexpected status %d", resp.StatusCode)
	}

	parsed, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing article page: %w", err)
	}

	text := strings.TrimSpace(parsed.TextContent)
	if text == "" {
		text = article.UnavailableText
	}

	content := &article.ExtractedContent{
		FullText:    text,
		Author:      strings.TrimSpace(parsed.Byline),
		ImageURL:    parsed.Image,
		MediaType:   mediaTypeFor(pageURL),
		ReadingTime: readingTime(text),
	}

	e.log.WithFields(logrus.Fields{
		"url":          rawURL,
		"chars":        len(text),
		"reading_time": content.ReadingTime,
	}).Debug("article content extracted")

	return content, nil
}

func readingTime(text string) int {
	words := len(strings.Fields(text))
	minutes := words / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func mediaTypeFor(pageURL *url.URL) string {
	host := strings.ToLower(pageURL.Hostname())
	if strings.Contains(host, "youtube.") || strings.Contains(host, "youtu.be") || strings.Contains(host, "vimeo.") {
		return "video"
	}
	return "article"
}
