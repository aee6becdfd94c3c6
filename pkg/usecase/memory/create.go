package memory

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engramhq/engram/pkg/model"
)

// CreateInput contains parameters for creating a memory
type CreateInput struct {
	Owner      string
	Content    string
	Attributes map[string]string
}

// Create persists the content row, then embeds and indexes it.
//
// The content write is authoritative: if it fails nothing else is attempted.
// An embedding or index failure afterwards is propagated per the policy
// table, and the returned *model.Memory is still non-nil in that case so the
// caller knows the content row exists but is invisible to search.
func (u *UseCase) Create(ctx context.Context, input CreateInput) (*model.Memory, error) {
	if input.Owner == "" {
		return nil, goerr.New("owner is required", goerr.T(model.TagValidation))
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, goerr.New("content is required", goerr.T(model.TagValidation))
	}

	memory := &model.Memory{
		ID:        model.NewMemoryID(),
		Owner:     input.Owner,
		Content:   input.Content,
		CreatedAt: time.Now().UTC(),
	}

	putCtx, cancel := u.callContext(ctx)
	defer cancel()
	if err := u.store.PutMemory(putCtx, memory); err != nil {
		return nil, goerr.Wrap(err, "failed to store memory", goerr.T(model.TagStore))
	}

	embedCtx, cancel := u.callContext(ctx)
	defer cancel()
	vector, err := u.embedder.Embed(embedCtx, input.Content)
	if err != nil {
		return memory, u.indexFailure(ctx, OpCreate, memory.ID, err)
	}

	upsertCtx, cancel := u.callContext(ctx)
	defer cancel()
	entry := &model.IndexEntry{ID: memory.ID, Vector: vector, Attributes: input.Attributes}
	if err := u.index.Upsert(upsertCtx, input.Owner, entry); err != nil {
		return memory, u.indexFailure(ctx, OpCreate, memory.ID, err)
	}

	return memory, nil
}
