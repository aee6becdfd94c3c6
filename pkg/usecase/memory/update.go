package memory

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engramhq/engram/pkg/model"
)

// UpdateInput contains parameters for updating a memory's content
type UpdateInput struct {
	ID      model.MemoryID
	Owner   string
	Content string
	// Attributes, when set, replace the index entry's attribute map on the
	// re-upsert. When nil the existing attributes are preserved.
	Attributes map[string]string
}

// Update replaces the content of (ID, Owner), then re-embeds and re-upserts
// the index entry. An index-side failure is swallowed and logged: the content
// update still reports success, leaving a lagging index entry until the next
// successful update.
func (u *UseCase) Update(ctx context.Context, input UpdateInput) error {
	if strings.TrimSpace(input.Content) == "" {
		return goerr.New("content is required", goerr.T(model.TagValidation))
	}

	updateCtx, cancel := u.callContext(ctx)
	defer cancel()
	changed, err := u.store.UpdateMemory(updateCtx, input.ID, input.Owner, input.Content)
	if err != nil {
		return goerr.Wrap(err, "failed to update memory", goerr.T(model.TagStore))
	}
	if changed == 0 {
		return goerr.New("memory not found", goerr.V("id", input.ID), goerr.T(model.TagNotFound))
	}

	attrs := input.Attributes
	if attrs == nil {
		// Re-upserting replaces the whole index entry, so a content-only
		// update must carry the existing attributes forward or filtered
		// search loses the memory.
		getCtx, cancel := u.callContext(ctx)
		defer cancel()
		existing, err := u.index.Get(getCtx, input.Owner, input.ID)
		switch {
		case err == nil:
			attrs = existing.Attributes
		case model.HasTag(err, model.TagNotFound):
			// No entry to preserve; the memory was never indexed.
		default:
			return u.indexFailure(ctx, OpUpdate, input.ID, err)
		}
	}

	embedCtx, cancel := u.callContext(ctx)
	defer cancel()
	vector, err := u.embedder.Embed(embedCtx, input.Content)
	if err != nil {
		return u.indexFailure(ctx, OpUpdate, input.ID, err)
	}

	upsertCtx, cancel := u.callContext(ctx)
	defer cancel()
	entry := &model.IndexEntry{ID: input.ID, Vector: vector, Attributes: attrs}
	if err := u.index.Upsert(upsertCtx, input.Owner, entry); err != nil {
		return u.indexFailure(ctx, OpUpdate, input.ID, err)
	}

	return nil
}
