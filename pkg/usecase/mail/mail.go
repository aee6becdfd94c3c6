// Package mail adapts email-shaped payloads onto the generic memory
// orchestrator and enriches search results with their structured attributes.
package mail

import (
	"context"
	"time"

	"github.com/engramhq/engram/pkg/interfaces"
	"github.com/engramhq/engram/pkg/usecase/memory"
	"github.com/engramhq/engram/pkg/usecase/search"
)

const defaultCallTimeout = 15 * time.Second

// UseCase provides mail-flavored memory operations
type UseCase struct {
	store        interfaces.ContentStore
	orchestrator *memory.UseCase
	engine       *search.Engine
	timeout      time.Duration
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithCallTimeout bounds the mail table's own store calls. The orchestrator
// and engine carry their own timeouts.
func WithCallTimeout(timeout time.Duration) Option {
	return func(uc *UseCase) {
		uc.timeout = timeout
	}
}

// New creates a new mail UseCase instance
func New(
	store interfaces.ContentStore,
	orchestrator *memory.UseCase,
	engine *search.Engine,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		store:        store,
		orchestrator: orchestrator,
		engine:       engine,
		timeout:      defaultCallTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (u *UseCase) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, u.timeout)
}
