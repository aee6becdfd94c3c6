// Package search ranks memories by similarity and joins the ranked hits
// against the authoritative content store.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engramhq/engram/pkg/interfaces"
	"github.com/engramhq/engram/pkg/model"
	"github.com/engramhq/engram/pkg/utils/logging"
)

const (
	defaultLimit       = 10
	defaultCallTimeout = 15 * time.Second
)

// Engine performs similarity search over one owner's namespace
type Engine struct {
	store    interfaces.ContentStore
	index    interfaces.VectorIndex
	embedder interfaces.Embedder
	timeout  time.Duration
}

// Option is a functional option for Engine
type Option func(*Engine)

// WithCallTimeout bounds every external store/index/embedding call.
func WithCallTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		e.timeout = timeout
	}
}

// New creates a new search Engine instance
func New(
	store interfaces.ContentStore,
	index interfaces.VectorIndex,
	embedder interfaces.Embedder,
	opts ...Option,
) *Engine {
	e := &Engine{
		store:    store,
		index:    index,
		embedder: embedder,
		timeout:  defaultCallTimeout,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// AttributeFilter is an exact-match constraint applied to merged results
// after ranking. It removes hits, never re-orders them.
type AttributeFilter struct {
	Key   string
	Value string
}

// Input contains parameters for a search
type Input struct {
	Owner  string
	Query  string
	Limit  int
	Filter *AttributeFilter
}

// Search embeds the query, asks the index for the top candidates, joins them
// against the content store in one batched fetch, drops hits without a
// backing content row, and applies the optional attribute filter. Relative
// order among surviving hits is exactly the index's similarity order.
func (e *Engine) Search(ctx context.Context, input Input) ([]*model.SearchHit, error) {
	if input.Owner == "" {
		return nil, goerr.New("owner is required", goerr.T(model.TagValidation))
	}
	if strings.TrimSpace(input.Query) == "" {
		return nil, goerr.New("query is required", goerr.T(model.TagValidation))
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	embedCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	vector, err := e.embedder.Embed(embedCtx, input.Query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query", goerr.T(model.TagIndex))
	}

	queryCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	candidates, err := e.index.Query(queryCtx, input.Owner, vector, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query index", goerr.T(model.TagIndex))
	}
	if len(candidates) == 0 {
		return []*model.SearchHit{}, nil
	}

	ids := make([]model.MemoryID, 0, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.ID)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	records, err := e.store.GetMemories(fetchCtx, ids, input.Owner)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch matched memories", goerr.T(model.TagStore))
	}

	hits := make([]*model.SearchHit, 0, len(candidates))
	for _, candidate := range candidates {
		record, ok := records[candidate.ID]
		if !ok {
			// Vector-only orphan: a stray index entry with no content row.
			logging.From(ctx).Debug("dropping orphan search hit",
				"id", string(candidate.ID), "owner", input.Owner)
			continue
		}
		if f := input.Filter; f != nil && candidate.Attributes[f.Key] != f.Value {
			continue
		}
		hits = append(hits, &model.SearchHit{
			Memory:     record,
			Score:      candidate.Score,
			Attributes: candidate.Attributes,
		})
	}

	return hits, nil
}
