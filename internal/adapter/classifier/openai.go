// internal/adapter/classifier/openai.go

package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"newsradar/internal/domain/article"
)

const maxPromptChars = 4000

// OpenAIClassifier produces structured article assessments through an
// OpenAI-compatible chat completions endpoint.
type OpenAIClassifier struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	log     *logrus.Logger
}

// NewOpenAIClassifier creates a classifier client. baseURL is the API root
// without a trailing slash, e.g. "https://api.openai.com/v1".
func NewOpenAIClassifier(baseURL, apiKey, model string, timeout time.Duration, log *logrus.Logger) *OpenAIClassifier {
	return &OpenAIClassifier{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		log:     log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify sends the article to the model and decodes its JSON verdict.
// The caller substitutes defaults on error.
func (c *OpenAIClassifier) Classify(ctx context.Context, title, text string, keywords []article.Keyword) (*article.Classification, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("classifier api key not configured")
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a cybersecurity analyst. Return only valid JSON."},
			{Role: "user", Content: buildPrompt(title, text, keywords)},
		},
		Temperature: 0.3,
	}
	body.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, raw)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decoding classifier response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("classifier returned no choices")
	}

	cls := article.DefaultClassification()
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), cls); err != nil {
		return nil, fmt.Errorf("decoding classifier verdict: %w", err)
	}
	normalize(cls)
	return cls, nil
}

// normalize keeps the structure well-formed even when the model omits
// fields.
func normalize(cls *article.Classification) {
	if cls.Content.Category == "" {
		cls.Content.Category = article.DefaultCategory
	}
	if cls.Metadata.Keywords == nil {
		cls.Metadata.Keywords = []string{}
	}
	if cls.Metadata.TrendKeywords == nil {
		cls.Metadata.TrendKeywords = []string{}
	}
	if cls.Metadata.AffectedRegions == nil {
		cls.Metadata.AffectedRegions = []string{}
	}
}

func buildPrompt(title, text string, keywords []article.Keyword) string {
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}

	names := make([]string, 0, 5)
	for _, kw := range keywords {
		names = append(names, kw.Keyword)
		if len(names) == 5 {
			break
		}
	}

	var b strings.Builder
	b.WriteString("Analyze this cybersecurity news article.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", title)
	fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "Content: %s\n\n", text)
	b.WriteString(`Return a JSON object with:
1. scores:
   - confidence_score (0-100): How factual/reliable?
   - relevance_score (0-100): Impact on tech industry?
   - sentiment_score (-100 to 100): Negative (breach) to Positive (launch)
2. content:
   - short_description: 2 sentences max (for cards)
   - long_description: 4-5 sentences (detailed summary)
   - category: Choose ONE from [Security, Product Launch, Legal, Market, AI, DevOps]
3. metadata:
   - keywords: List of 3-5 key entities/topics
   - trend_keywords: List of 3-5 terms for trend search
   - primary_company: Main company involved (or null)
   - affected_regions: List of 2-letter country codes (e.g. US, CN)
   - actionable: boolean (true if reader needs to patch/act)`)
	return b.String()
}
