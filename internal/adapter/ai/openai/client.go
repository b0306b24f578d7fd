// Package openai implements the AI client against an OpenAI-compatible
// chat completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/careerpilot/insights/internal/adapter/ai"
	"github.com/careerpilot/insights/internal/adapter/observability"
	"github.com/careerpilot/insights/internal/config"
	"github.com/careerpilot/insights/internal/domain"
)

// Client implements domain.AIClient with a single non-streaming POST per
// call. It never retries: failure policy belongs to the orchestrator, which
// falls back immediately to keep worst-case latency at one round trip.
type Client struct {
	cfg    config.Config
	hc     *http.Client
	tokens *ai.TokenCounter
}

// New constructs a Client. The HTTP client timeout acts as a backstop; the
// per-call deadline comes from the caller's context.
func New(cfg config.Config) *Client {
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout:   cfg.ModelTimeout + 5*time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens: ai.NewTokenCounter(),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatJSON issues one chat completion and returns the raw message content.
func (c *Client) ChatJSON(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.cfg.ModelAPIKey == "" {
		return "", fmt.Errorf("%w: MODEL_API_KEY missing", domain.ErrUpstreamUnavailable)
	}
	if maxTokens <= 0 {
		maxTokens = c.cfg.ModelMaxTokens
	}

	body, _ := json.Marshal(chatRequest{
		Model:       c.cfg.ModelName,
		Temperature: 0.2,
		MaxTokens:   maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ModelBaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("op=ai.chat: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.ModelAPIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	observability.AIRequestDuration.WithLabelValues("openai").Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			observability.AIRequestsTotal.WithLabelValues("openai", "timeout").Inc()
			slog.Warn("model call timed out", slog.String("model", c.cfg.ModelName), slog.Duration("elapsed", time.Since(start)))
			return "", fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
		}
		observability.AIRequestsTotal.WithLabelValues("openai", "error").Inc()
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		observability.AIRequestsTotal.WithLabelValues("openai", "error").Inc()
		return "", fmt.Errorf("%w: read body: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.AIRequestsTotal.WithLabelValues("openai", "error").Inc()
		snippet := string(raw)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		slog.Warn("model provider non-2xx",
			slog.Int("status", resp.StatusCode),
			slog.String("model", c.cfg.ModelName),
			slog.String("body", snippet))
		return "", fmt.Errorf("%w: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		observability.AIRequestsTotal.WithLabelValues("openai", "error").Inc()
		return "", fmt.Errorf("%w: decode: %v", domain.ErrUpstream, err)
	}
	if len(out.Choices) == 0 {
		observability.AIRequestsTotal.WithLabelValues("openai", "error").Inc()
		return "", fmt.Errorf("%w: empty choices", domain.ErrUpstream)
	}
	content := out.Choices[0].Message.Content

	observability.AIRequestsTotal.WithLabelValues("openai", "ok").Inc()
	observability.AITokensTotal.WithLabelValues("openai", "prompt").
		Add(float64(c.tokens.CountPrompt(systemPrompt, userPrompt, c.cfg.ModelName)))
	observability.AITokensTotal.WithLabelValues("openai", "completion").
		Add(float64(c.tokens.CountCompletion(content, c.cfg.ModelName)))
	return content, nil
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
