// Package genai provides GenAI-enhanced operations using the OpenAI API.
//
// The valuation engine works without it; when a client is configured, the
// closing message of a completed conversation is generated from the
// valuation result instead of the static template.
package genai

import (
	"context"
	"fmt"
	"os"

	"github.com/UpswitchEU/upswitch-valuation-tester/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// summarySystemPrompt instructs the model how to phrase the wrap-up.
const summarySystemPrompt = "You are a friendly business valuation assistant. " +
	"Write a short, warm closing message (2-3 sentences) presenting the completed valuation to the business owner. " +
	"Mention the estimated value and the range. Do not give investment advice."

// Opts holds configuration options for the GenAI client.
type Opts struct {
	// APIKey is the OpenAI API key. Falls back to $OPENAI_API_KEY.
	APIKey string
}

// Option configures GenAI client creation.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) {
		o.APIKey = key
	}
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	client openai.Client
}

// NewClient initializes a new GenAI client.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{client: cli}, nil
}

// SummarizeValuation generates a conversational wrap-up for a completed
// valuation result.
func (c *Client) SummarizeValuation(ctx context.Context, result models.ValuationResult) (string, error) {
	userPrompt := fmt.Sprintf(
		"Company: %s. Estimated equity value: %d EUR, range %d-%d EUR, confidence %.2f, methodology: %s. Industry: %s, country: %s.",
		result.CompanyName, result.EquityValue, result.ValuationRange.Min, result.ValuationRange.Max,
		result.ConfidenceScore, result.Methodology, result.Industry, result.Country,
	)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(summarySystemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
