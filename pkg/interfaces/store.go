package interfaces

import (
	"context"

	"github.com/engramhq/engram/pkg/model"
)

// ContentStore is the authoritative record store. Implementations must report
// not-found conditions with model.TagNotFound, make EnsureSchema idempotent,
// and serve GetMemories/GetMails as a single batched query regardless of the
// number of IDs.
type ContentStore interface {
	// EnsureSchema creates the store's tables and indexes if absent. Safe to
	// call concurrently and repeatedly.
	EnsureSchema(ctx context.Context) error

	PutMemory(ctx context.Context, memory *model.Memory) error
	GetMemory(ctx context.Context, id model.MemoryID, owner string) (*model.Memory, error)
	GetMemories(ctx context.Context, ids []model.MemoryID, owner string) (map[model.MemoryID]*model.Memory, error)
	// UpdateMemory replaces the content of the row matching (id, owner) and
	// returns the number of rows changed.
	UpdateMemory(ctx context.Context, id model.MemoryID, owner, content string) (int64, error)
	// DeleteMemory removes the row matching (id, owner) and returns the
	// number of rows removed.
	DeleteMemory(ctx context.Context, id model.MemoryID, owner string) (int64, error)
	// ListMemories returns all memories for an owner, newest first.
	ListMemories(ctx context.Context, owner string) ([]*model.Memory, error)

	PutMail(ctx context.Context, mail *model.MailRecord) error
	GetMail(ctx context.Context, id model.MemoryID, owner string) (*model.MailRecord, error)
	GetMails(ctx context.Context, ids []model.MemoryID, owner string) (map[model.MemoryID]*model.MailRecord, error)
	DeleteMail(ctx context.Context, id model.MemoryID, owner string) (int64, error)
	// ListMails returns all mail records for an owner, ordered by mail date
	// descending then creation time descending.
	ListMails(ctx context.Context, owner string) ([]*model.MailRecord, error)
}

// VectorIndex is the similarity-search side store. Entries are scoped by
// namespace (the owner ID); queries never cross namespaces.
type VectorIndex interface {
	Upsert(ctx context.Context, namespace string, entry *model.IndexEntry) error
	// Get returns the stored entry, or a model.TagNotFound-tagged error when
	// no entry exists for the ID.
	Get(ctx context.Context, namespace string, id model.MemoryID) (*model.IndexEntry, error)
	// Query returns up to topK hits ordered by descending similarity.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]*model.VectorHit, error)
	Delete(ctx context.Context, namespace string, id model.MemoryID) error
}

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
