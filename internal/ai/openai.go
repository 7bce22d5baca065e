// Package ai generates text through an OpenAI-compatible chat completions API.
package ai

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"inkpress/internal/models"
	"inkpress/internal/observability"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const systemPrompt = "You are a writing assistant for a blog. Answer with plain text only, no preamble."

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config configures an OpenAIGenerator.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIGenerator implements Generator on the chat completions endpoint.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator builds a generator. Provider rate limits are surfaced to
// callers instead of being retried.
func NewOpenAIGenerator(cfg Config) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Generate sends prompt as a single user turn and returns the first choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", translateError(err)
	}
	if len(completion.Choices) == 0 {
		return "", models.NewUpstreamError("AI provider", errors.New("empty completion"))
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func translateError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		observability.AIRateLimited.Inc()
		var retryAfter time.Duration
		if apiErr.Response != nil {
			retryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"), time.Now())
		}
		return models.NewRateLimitedError("AI provider rate limit reached, try again later", retryAfter)
	}
	return models.NewUpstreamError("AI provider", err)
}

// parseRetryAfter accepts delay-seconds or an HTTP date. Unparseable values yield zero.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
