package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engramhq/engram/pkg/model"
	"github.com/engramhq/engram/pkg/utils/logging"
)

// Operation names the orchestrator operations subject to the failure policy.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// FailureMode decides what happens when the embedding or index side of an
// operation fails after the authoritative content write already succeeded.
type FailureMode int

const (
	// Propagate surfaces the failure to the caller. The content row stays
	// committed, so the caller sees an explicit partial success.
	Propagate FailureMode = iota
	// Swallow logs the failure and reports overall success, tolerating a
	// stale or orphaned index entry.
	Swallow
)

// IndexFailurePolicy is the single encoding of the per-operation asymmetry:
// losing authoritative content is unacceptable, but a temporarily
// unsearchable or stale-indexed memory is tolerable. Content store failures
// are always fatal and never consult this table.
var IndexFailurePolicy = map[Operation]FailureMode{
	OpCreate: Propagate, // caller must learn the memory is invisible to search
	OpUpdate: Swallow,   // stale index entry, content update still succeeds
	OpDelete: Swallow,   // vector-only orphan, hidden by the search-side join
}

// indexFailure applies the policy to an embedding or index error. Returns nil
// when the failure is swallowed.
func (u *UseCase) indexFailure(ctx context.Context, op Operation, id model.MemoryID, err error) error {
	wrapped := goerr.Wrap(err, "vector index side of operation failed",
		goerr.V("operation", op), goerr.V("id", id), goerr.T(model.TagIndex))

	if IndexFailurePolicy[op] == Swallow {
		logging.From(ctx).Warn("index failure swallowed",
			"operation", string(op), "id", string(id), "error", wrapped)
		return nil
	}
	return wrapped
}
