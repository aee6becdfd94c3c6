package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engramhq/engram/pkg/model"
)

// Memory is a map-backed ContentStore for tests and ephemeral runs. It keeps
// the same owner-scoping and ordering semantics as the SQL store.
type Memory struct {
	mu       sync.RWMutex
	memories map[model.MemoryID]*model.Memory
	mails    map[model.MemoryID]*model.MailRecord
}

// NewMemory returns an empty in-memory content store.
func NewMemory() *Memory {
	return &Memory{
		memories: make(map[model.MemoryID]*model.Memory),
		mails:    make(map[model.MemoryID]*model.MailRecord),
	}
}

func (r *Memory) EnsureSchema(ctx context.Context) error {
	return nil
}

func (r *Memory) PutMemory(ctx context.Context, memory *model.Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *memory
	r.memories[memory.ID] = &copied
	return nil
}

func (r *Memory) GetMemory(ctx context.Context, id model.MemoryID, owner string) (*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	memory, ok := r.memories[id]
	if !ok || memory.Owner != owner {
		return nil, goerr.New("memory not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}
	copied := *memory
	return &copied, nil
}

func (r *Memory) GetMemories(ctx context.Context, ids []model.MemoryID, owner string) (map[model.MemoryID]*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[model.MemoryID]*model.Memory, len(ids))
	for _, id := range ids {
		if memory, ok := r.memories[id]; ok && memory.Owner == owner {
			copied := *memory
			found[id] = &copied
		}
	}
	return found, nil
}

func (r *Memory) UpdateMemory(ctx context.Context, id model.MemoryID, owner, content string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	memory, ok := r.memories[id]
	if !ok || memory.Owner != owner {
		return 0, nil
	}
	memory.Content = content
	return 1, nil
}

func (r *Memory) DeleteMemory(ctx context.Context, id model.MemoryID, owner string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	memory, ok := r.memories[id]
	if !ok || memory.Owner != owner {
		return 0, nil
	}
	delete(r.memories, id)
	return 1, nil
}

func (r *Memory) ListMemories(ctx context.Context, owner string) ([]*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var memories []*model.Memory
	for _, memory := range r.memories {
		if memory.Owner == owner {
			copied := *memory
			memories = append(memories, &copied)
		}
	}
	sort.Slice(memories, func(i, j int) bool {
		return memories[i].CreatedAt.After(memories[j].CreatedAt)
	})
	return memories, nil
}

func (r *Memory) PutMail(ctx context.Context, mail *model.MailRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *mail
	r.mails[mail.ID] = &copied
	return nil
}

func (r *Memory) GetMail(ctx context.Context, id model.MemoryID, owner string) (*model.MailRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mail, ok := r.mails[id]
	if !ok || mail.Owner != owner {
		return nil, goerr.New("mail not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}
	copied := *mail
	return &copied, nil
}

func (r *Memory) GetMails(ctx context.Context, ids []model.MemoryID, owner string) (map[model.MemoryID]*model.MailRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[model.MemoryID]*model.MailRecord, len(ids))
	for _, id := range ids {
		if mail, ok := r.mails[id]; ok && mail.Owner == owner {
			copied := *mail
			found[id] = &copied
		}
	}
	return found, nil
}

func (r *Memory) DeleteMail(ctx context.Context, id model.MemoryID, owner string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mail, ok := r.mails[id]
	if !ok || mail.Owner != owner {
		return 0, nil
	}
	delete(r.mails, id)
	return 1, nil
}

func (r *Memory) ListMails(ctx context.Context, owner string) ([]*model.MailRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var mails []*model.MailRecord
	for _, mail := range r.mails {
		if mail.Owner == owner {
			copied := *mail
			mails = append(mails, &copied)
		}
	}
	sort.Slice(mails, func(i, j int) bool {
		if !mails[i].Date.Equal(mails[j].Date) {
			return mails[i].Date.After(mails[j].Date)
		}
		return mails[i].CreatedAt.After(mails[j].CreatedAt)
	})
	return mails, nil
}
