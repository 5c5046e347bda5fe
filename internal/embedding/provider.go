package embedding

import (
	"context"
	"errors"
	"sync"
)

// ErrUnavailable signals that no embedding model is reachable. Callers are
// expected to fall back to the documented neutral authenticity value rather
// than surface this to users.
var ErrUnavailable = errors.New("embedding provider unavailable")

// Provider produces a vector for a text. Implementations must be safe for
// concurrent use.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Disabled is the degraded-mode provider: every call fails with
// ErrUnavailable.
type Disabled struct{}

func (Disabled) Embed(context.Context, string) ([]float32, error) {
	return nil, ErrUnavailable
}

// Lazy defers construction of an expensive provider until first use and
// guarantees the build function runs at most once process-wide, even under
// concurrent first calls.
type Lazy struct {
	once     sync.Once
	build    func() Provider
	provider Provider
}

// NewLazy wraps a provider constructor.
func NewLazy(build func() Provider) *Lazy {
	return &Lazy{build: build}
}

func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	l.once.Do(func() {
		l.provider = l.build()
	})
	if l.provider == nil {
		return nil, ErrUnavailable
	}
	return l.provider.Embed(ctx, text)
}
