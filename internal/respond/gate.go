package respond

import (
	"context"
	"time"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string, title string) bool
}

// Gate blocks a command until the user answers.
type Gate struct {
	confirmer Confirmer
	timeout   time.Duration
}

// NewGate wraps confirmer. A zero timeout waits until the user answers or ctx ends.
func NewGate(confirmer Confirmer, timeout time.Duration) *Gate {
	return &Gate{confirmer: confirmer, timeout: timeout}
}

// Confirm reports true only on an explicit yes. Timeout and cancellation deny.
func (g *Gate) Confirm(ctx context.Context, message string, title string) bool {
	if g == nil || g.confirmer == nil {
		return false
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	answer := make(chan bool, 1)
	go func() {
		answer <- g.confirmer.Confirm(ctx, message, title)
	}()

	select {
	case ok := <-answer:
		return ok && ctx.Err() == nil
	case <-ctx.Done():
		return false
	}
}
