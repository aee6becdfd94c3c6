package mail

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engramhq/engram/pkg/model"
	"github.com/engramhq/engram/pkg/utils/logging"
)

// Delete removes the mail row, then delegates to the orchestrator for the
// content row and index entry. The deletes are sequential, not atomic: a
// failure partway is reported (or logged, for an already-missing content
// row) but prior deletions are not rolled back.
func (u *UseCase) Delete(ctx context.Context, id model.MemoryID, owner string) error {
	deleteCtx, cancel := u.callContext(ctx)
	defer cancel()
	changed, err := u.store.DeleteMail(deleteCtx, id, owner)
	if err != nil {
		return goerr.Wrap(err, "failed to delete mail", goerr.T(model.TagStore))
	}
	if changed == 0 {
		return goerr.New("mail not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}

	if err := u.orchestrator.Delete(ctx, id, owner); err != nil {
		if model.HasTag(err, model.TagNotFound) {
			// Mail row existed without its memory; the attribute orphan is
			// now fully gone.
			logging.From(ctx).Warn("mail deleted without backing memory", "id", string(id))
			return nil
		}
		return err
	}

	return nil
}
