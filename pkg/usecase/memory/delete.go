package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engramhq/engram/pkg/model"
)

// Delete removes the content row (authoritative), then best-effort deletes
// the index entry. An index-side failure is swallowed and logged; the stray
// vector entry can still rank as a candidate but never reaches a caller,
// because search joins against the content store and drops it there.
func (u *UseCase) Delete(ctx context.Context, id model.MemoryID, owner string) error {
	deleteCtx, cancel := u.callContext(ctx)
	defer cancel()
	changed, err := u.store.DeleteMemory(deleteCtx, id, owner)
	if err != nil {
		return goerr.Wrap(err, "failed to delete memory", goerr.T(model.TagStore))
	}
	if changed == 0 {
		return goerr.New("memory not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}

	indexCtx, cancel := u.callContext(ctx)
	defer cancel()
	if err := u.index.Delete(indexCtx, owner, id); err != nil {
		return u.indexFailure(ctx, OpDelete, id, err)
	}

	return nil
}
