package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AnshRaj112/ai-journal-backend/internal/apperrors"
)

// Analyzer returns the raw model output for a journal entry.
type Analyzer interface {
	Analyze(ctx context.Context, content string) (string, error)
}

// AIRecorder receives one observation per upstream call.
type AIRecorder interface {
	ObserveAI(outcome string, duration time.Duration)
}

// AIOptions configures the chat completions call.
type AIOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// AIClient sends one chat completion per Analyze call through a circuit breaker.
// It never retries.
type AIClient struct {
	client  *openai.Client
	opts    AIOptions
	breaker *gobreaker.CircuitBreaker
	metrics AIRecorder
	logger  *zap.Logger
}

func NewAIClient(opts AIOptions, metrics AIRecorder, logger *zap.Logger) *AIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	c := &AIClient{
		client:  openai.NewClientWithConfig(cfg),
		opts:    opts,
		metrics: metrics,
		logger:  logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ai-analysis",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// Configuration errors, bad requests and caller aborts say nothing about
		// upstream health, so only unavailable and rate limited count as failures.
		IsSuccessful: func(err error) bool {
			return !apperrors.HasCode(err, apperrors.CodeAIUnavailable) &&
				!apperrors.HasCode(err, apperrors.CodeAIRateLimited)
		},
	})
	return c
}

// Analyze asks the model for a JSON summary, suggestion and mood.
func (c *AIClient) Analyze(ctx context.Context, content string) (string, error) {
	if c.opts.APIKey == "" {
		c.observe(apperrors.CodeAIConfiguration, 0)
		return "", apperrors.NewAIServiceError(apperrors.CodeAIConfiguration, "AI service configuration error")
	}

	if err := ctx.Err(); err != nil {
		c.observe(outcomeCanceled, 0)
		return "", canceledError(err)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, BuildAnalysisPrompt(content))
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.observe("breaker_open", 0)
		return "", apperrors.NewAIServiceError(apperrors.CodeAIUnavailable, "AI service temporarily unavailable").WithCause(err)
	}

	outcome := "success"
	if appErr := apperrors.Get(err); appErr != nil {
		outcome = appErr.Code
	}
	if apperrors.HasCode(err, apperrors.CodeAICanceled) {
		outcome = outcomeCanceled
	}
	c.observe(outcome, time.Since(start))

	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// complete makes the upstream call. The per-call timeout is the client's own
// deadline and classifies as unavailable; cancellation of the caller's ctx does not.
func (c *AIClient) complete(ctx context.Context, prompt string) (string, error) {
	callCtx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", canceledError(ctxErr)
		}
		return "", classifyUpstreamError(err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewAIServiceError(apperrors.CodeAIUnavailable, "AI service returned invalid response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *AIClient) observe(outcome string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveAI(outcome, d)
	}
}

const outcomeCanceled = "canceled"

func canceledError(err error) *apperrors.AppError {
	return apperrors.NewAIServiceError(apperrors.CodeAICanceled, "Request canceled").WithCause(err)
}

// classifyUpstreamError maps transport failures onto AI_SERVICE subkinds.
func classifyUpstreamError(err error) *apperrors.AppError {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return apperrors.NewAIServiceError(apperrors.CodeAIAuth, "AI service authentication failed").WithCause(err)
	case status == http.StatusTooManyRequests:
		return apperrors.NewAIServiceError(apperrors.CodeAIRateLimited, "AI service rate limit exceeded").WithCause(err)
	case status >= 400 && status < 500:
		return apperrors.NewAIServiceError(apperrors.CodeAIBadRequest, "Invalid request to AI service").WithCause(err)
	default:
		return apperrors.NewAIServiceError(apperrors.CodeAIUnavailable, "AI service unavailable").WithCause(err)
	}
}

// BuildAnalysisPrompt embeds the entry in the JSON-only instruction prompt.
func BuildAnalysisPrompt(content string) string {
	return fmt.Sprintf(`You are a JSON-only assistant.

Analyze the following journal entry and respond in ONLY valid JSON format.

Your response must include:
- A detailed summary of the entry (about 5 to 6 lines).
- A brief suggestion or advice to help the user feel better or improve their situation.
- The mood detected from the entry (choose from: Happy, Sad, Angry, Stressed, Neutral).

Respond strictly in this format:
{
  "summary": "...",
  "suggestion": "...",
  "mood": "Happy"
}

Journal Entry: %q`, content)
}
