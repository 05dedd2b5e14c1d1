package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"triggers-triumphs-api/src/cards"
	"triggers-triumphs-api/src/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// ChatCompletionURL is the production Chat Completions endpoint.
	ChatCompletionURL = "https://api.openai.com/v1/chat/completions"

	// DefaultModel balances card quality against cost.
	DefaultModel = "gpt-4o-mini"

	defaultTimeout = 30 * time.Second

	// cardMaxTokens caps a single card completion. Cards are short; a
	// well-behaved reply fits comfortably.
	cardMaxTokens = 300

	// cardTemperature keeps the deck from repeating itself.
	cardTemperature = 1.0
)

// Client calls the OpenAI Chat Completions API.
type Client struct {
	APIKey     string
	Model      string
	URL        string
	HTTPClient *http.Client
}

var _ cards.Generator = (*Client)(nil)

// NewClient returns a Client pointed at the production endpoint.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		Model:      DefaultModel,
		URL:        ChatCompletionURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateCard asks the model for one card and parses the reply. The reply
// is always a renderable card when err is nil, even if the model misbehaved.
func (c *Client) GenerateCard(ctx context.Context, category, tone, theme string) (*cards.Card, error) {
	if c.APIKey == "" {
		return nil, errors.New("openai api key is not configured")
	}

	payload := completionRequest{
		Model: c.Model,
		Messages: []message{
			{Role: "system", Content: cards.SystemPrompt},
			{Role: "user", Content: cards.UserPrompt(category, tone, theme)},
		},
		Temperature: cardTemperature,
		MaxTokens:   cardMaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("chat completion returned %s: %s", res.Status, snippet)
	}

	var completion completionResponse
	if err = json.NewDecoder(res.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("decoding chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	c.recordUsage(completion)

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	return cards.ParseCard(content), nil
}

func (c *Client) recordUsage(res completionResponse) {
	labels := prometheus.Labels{metrics.LabelModel: c.Model}
	metrics.PromptTokens.With(labels).Add(float64(res.Usage.PromptTokens))
	metrics.CompletionTokens.With(labels).Add(float64(res.Usage.CompletionTokens))
	metrics.TotalTokens.With(labels).Add(float64(res.Usage.TotalTokens))
}
