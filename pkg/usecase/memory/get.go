package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engramhq/engram/pkg/model"
)

// Get retrieves a memory by ID within an owner scope. A content-only orphan
// is still reachable here even though search never returns it.
func (u *UseCase) Get(ctx context.Context, id model.MemoryID, owner string) (*model.Memory, error) {
	getCtx, cancel := u.callContext(ctx)
	defer cancel()

	memory, err := u.store.GetMemory(getCtx, id, owner)
	if err != nil {
		if model.HasTag(err, model.TagNotFound) {
			return nil, err
		}
		return nil, goerr.Wrap(err, "failed to get memory", goerr.T(model.TagStore))
	}
	return memory, nil
}

// List returns all memories for an owner, newest first.
func (u *UseCase) List(ctx context.Context, owner string) ([]*model.Memory, error) {
	listCtx, cancel := u.callContext(ctx)
	defer cancel()

	memories, err := u.store.ListMemories(listCtx, owner)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memories", goerr.T(model.TagStore))
	}
	return memories, nil
}
