package settings

import (
	"context"
	"errors"
	"sync"
)

// ErrUnavailable is returned when the gate is abandoned before settings
// resolve. Scheduling is deferred indefinitely until a snapshot exists; there
// are no fallback interval values.
var ErrUnavailable = errors.New("settings: unavailable")

// Gate is a one-shot asynchronous settings dependency. The loader resolves it
// exactly once; everything that needs intervals or advisories blocks on Wait.
type Gate struct {
	once     sync.Once
	resolved chan struct{}
	value    Settings
}

// NewGate constructs an unresolved gate.
func NewGate() *Gate {
	return &Gate{resolved: make(chan struct{})}
}

// Resolve publishes the settings snapshot. Only the first call has any
// effect; the snapshot is immutable for the session.
func (g *Gate) Resolve(value Settings) {
	g.once.Do(func() {
		g.value = value
		close(g.resolved)
	})
}

// Wait blocks until the gate resolves or the context ends. A context error is
// reported as ErrUnavailable.
func (g *Gate) Wait(ctx context.Context) (Settings, error) {
	select {
	case <-g.resolved:
		return g.value, nil
	case <-ctx.Done():
		return Settings{}, ErrUnavailable
	}
}

// Resolved reports whether a snapshot has been published.
func (g *Gate) Resolved() bool {
	select {
	case <-g.resolved:
		return true
	default:
		return false
	}
}
