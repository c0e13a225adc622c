// Package llm sends prompts to a primary language model backend with retries and failover.
package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrBackendExhausted is returned when every configured backend failed.
	ErrBackendExhausted = errors.New("all llm backends failed")
	// ErrMalformedResponse marks a reply body that could not be interpreted; it is never retried.
	ErrMalformedResponse = errors.New("malformed llm response")
)

// Prompt is one request to a model: text plus an optional screenshot path.
type Prompt struct {
	Text      string
	ImagePath string
}

// Request is the encoded form handed to a Backend.
type Request struct {
	Text string
	// ImageBase64 is empty when no image accompanies the prompt.
	ImageBase64 string
}

// Backend performs a single request attempt.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// StatusError is a non-2xx reply from a backend.
type StatusError struct {
	Backend    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Backend, e.StatusCode, e.Body)
}

// Retryable reports whether another attempt against the same backend may succeed.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMalformedResponse) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
