package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rbright/lma/internal/config"
)

// Observer receives per-attempt outcomes; metrics recorders implement it.
type Observer interface {
	ObserveLLMAttempt(backend string, outcome string)
	ObserveLLMFailover(from string, to string)
	ObserveLLMExhausted()
}

type noopObserver struct{}

func (noopObserver) ObserveLLMAttempt(string, string)  {}
func (noopObserver) ObserveLLMFailover(string, string) {}
func (noopObserver) ObserveLLMExhausted()              {}

// Gateway tries the primary backend, then the fallback, each with its own retry budget.
type Gateway struct {
	Primary     Backend
	Fallback    Backend
	MaxAttempts int
	Backoff     time.Duration

	logger   *slog.Logger
	observer Observer
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithObserver reports attempts to observer.
func WithObserver(observer Observer) Option {
	return func(g *Gateway) {
		if observer != nil {
			g.observer = observer
		}
	}
}

// NewGateway wires primary and fallback backends.
func NewGateway(primary Backend, fallback Backend, maxAttempts int, backoff time.Duration, logger *slog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		Primary:     primary,
		Fallback:    fallback,
		MaxAttempts: maxAttempts,
		Backoff:     backoff,
		logger:      logger,
		observer:    noopObserver{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FromConfig builds the remote and local backends and orders them by llm.mode.
func FromConfig(cfg config.LLMConfig, logger *slog.Logger, opts ...Option) *Gateway {
	client := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}

	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	model := cfg.OpenAIModel
	if model == "" && mode != "local" && mode != "remote" && mode != "openai" {
		model = cfg.Mode
	}

	remote := &RemoteBackend{
		URL:          cfg.OpenAIURL,
		APIKey:       cfg.OpenAIAPIKey,
		Model:        model,
		SystemPrompt: cfg.SystemPrompt,
		Client:       client,
	}
	local := &LocalBackend{
		Endpoint:     cfg.LocalEndpoint,
		Model:        cfg.PrimaryLocalModel,
		SystemPrompt: cfg.SystemPrompt,
		Client:       client,
	}

	backoff := time.Duration(cfg.BackoffMS) * time.Millisecond
	if mode == "local" {
		return NewGateway(local, remote, cfg.MaxAttempts, backoff, logger, opts...)
	}
	return NewGateway(remote, local, cfg.MaxAttempts, backoff, logger, opts...)
}

// Send returns the first successful reply. When both backends fail the error
// wraps ErrBackendExhausted together with each backend's last error.
func (g *Gateway) Send(ctx context.Context, prompt Prompt) (string, error) {
	req := g.encode(prompt)

	reply, primaryErr := g.try(ctx, g.Primary, req)
	if primaryErr == nil {
		return reply, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if g.Fallback == nil {
		g.observer.ObserveLLMExhausted()
		return "", errors.Join(ErrBackendExhausted, primaryErr)
	}

	g.log().Warn("llm primary backend failed; using fallback",
		"primary", g.Primary.Name(),
		"fallback", g.Fallback.Name(),
		"error", primaryErr.Error(),
	)
	g.observer.ObserveLLMFailover(g.Primary.Name(), g.Fallback.Name())

	reply, fallbackErr := g.try(ctx, g.Fallback, req)
	if fallbackErr == nil {
		return reply, nil
	}

	g.observer.ObserveLLMExhausted()
	g.log().Error("llm backends exhausted",
		"primary_error", primaryErr.Error(),
		"fallback_error", fallbackErr.Error(),
	)
	return "", errors.Join(ErrBackendExhausted, primaryErr, fallbackErr)
}

func (g *Gateway) try(ctx context.Context, backend Backend, req Request) (string, error) {
	onFailure := func(attempt int, err error) {
		g.observer.ObserveLLMAttempt(backend.Name(), outcomeFor(err))
		g.log().Warn("llm attempt failed",
			"backend", backend.Name(),
			"attempt", attempt,
			"max_attempts", g.MaxAttempts,
			"retryable", Retryable(err),
			"error", err.Error(),
		)
	}

	reply, err := retry(ctx, g.MaxAttempts, g.Backoff, onFailure, func() (string, error) {
		return backend.Complete(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", backend.Name(), err)
	}
	g.observer.ObserveLLMAttempt(backend.Name(), "success")
	return reply, nil
}

func (g *Gateway) encode(prompt Prompt) Request {
	req := Request{Text: prompt.Text}
	if strings.TrimSpace(prompt.ImagePath) == "" {
		return req
	}

	data, err := os.ReadFile(prompt.ImagePath)
	if err != nil {
		g.log().Warn("screenshot unreadable; sending text only", "path", prompt.ImagePath, "error", err.Error())
		return req
	}
	req.ImageBase64 = base64.StdEncoding.EncodeToString(data)
	return req
}

func (g *Gateway) log() *slog.Logger {
	if g.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return g.logger
}

func outcomeFor(err error) string {
	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.As(err, &statusErr):
		return "status"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "network"
	}
}
