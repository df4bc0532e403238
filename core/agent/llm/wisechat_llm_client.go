package llm

import (
	"context"
	"errors"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultMaxTokens   = 512
	DefaultTemperature = 0.4
	DefaultTimeout     = 10 * time.Second
)

// ErrEmptyResponse is returned when the remote answers without choices.
var ErrEmptyResponse = errors.New("llm: empty response")

// Client is a thin chat-completion client over go-openai.
type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// CompletionConfig carries everything the client needs. Nothing is read from
// the environment at call time.
type CompletionConfig struct {
	APIKey      string
	BaseURL     string // empty uses the OpenAI default
	Model       string
	MaxTokens   int
	Temperature float64 // negative uses DefaultTemperature, zero is greedy
	Timeout     time.Duration
}

func (c CompletionConfig) withDefaults() CompletionConfig {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature < 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

func NewClient(cfg CompletionConfig) *Client {
	cfg = cfg.withDefaults()

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	// go-openai omits a zero temperature from the request, which the API
	// reads as its own default of 1.
	temperature := float32(cfg.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	return &Client{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: temperature,
	}
}

// CompleteJSON sends a system + user prompt and requests a JSON object back.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}
