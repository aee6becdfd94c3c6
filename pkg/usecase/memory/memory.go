// Package memory owns the create/update/delete protocol across the content
// store and the vector index. The content store is authoritative; the index
// is best-effort, with per-operation failure handling encoded in policy.go.
//
// There is no transaction across the two stores and no reconciliation job.
// Two divergent states are reachable and accepted: a content-only memory
// (visible by ID, invisible to search, left by a failed create) and a
// vector-only entry (never surfaced, because search drops hits without a
// content row). Create always mints a fresh ID, so retrying a failed create
// produces a duplicate row rather than repairing the orphan. Concurrent
// updates to the same ID are last-writer-wins on each store independently.
package memory

import (
	"context"
	"time"

	"github.com/engramhq/engram/pkg/interfaces"
)

const defaultCallTimeout = 15 * time.Second

// UseCase provides memory orchestration operations
type UseCase struct {
	store    interfaces.ContentStore
	index    interfaces.VectorIndex
	embedder interfaces.Embedder
	timeout  time.Duration
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithCallTimeout bounds every external store/index/embedding call. A timeout
// is handled exactly like any other failure of that call.
func WithCallTimeout(timeout time.Duration) Option {
	return func(uc *UseCase) {
		uc.timeout = timeout
	}
}

// New creates a new memory UseCase instance
func New(
	store interfaces.ContentStore,
	index interfaces.VectorIndex,
	embedder interfaces.Embedder,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		store:    store,
		index:    index,
		embedder: embedder,
		timeout:  defaultCallTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (u *UseCase) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, u.timeout)
}
