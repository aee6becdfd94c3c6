package adapter

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	chromem "github.com/philippgille/chromem-go"

	"github.com/engramhq/engram/pkg/model"
)

// ChromemIndex is a VectorIndex backed by chromem-go, an embedded pure-Go
// vector database. Each namespace maps to its own collection, so similarity
// queries never cross owners.
type ChromemIndex struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

// NewChromem creates an in-process chromem index.
func NewChromem() *ChromemIndex {
	return &ChromemIndex{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

// NewPersistentChromem creates a chromem index that persists collections
// under dir, so entries survive across process runs.
func NewPersistentChromem(dir string) (*ChromemIndex, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open persistent index", goerr.V("dir", dir))
	}

	return &ChromemIndex{
		db:          db,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

func (x *ChromemIndex) collection(namespace string) (*chromem.Collection, error) {
	x.mu.RLock()
	col, ok := x.collections[namespace]
	x.mu.RUnlock()
	if ok {
		return col, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if col, ok := x.collections[namespace]; ok {
		return col, nil
	}

	// No embedding func: vectors are always supplied by the caller.
	col, err := x.db.GetOrCreateCollection("ns_"+namespace, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create collection",
			goerr.V("namespace", namespace), goerr.T(model.TagIndex))
	}

	x.collections[namespace] = col
	return col, nil
}

func (x *ChromemIndex) Upsert(ctx context.Context, namespace string, entry *model.IndexEntry) error {
	col, err := x.collection(namespace)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:        string(entry.ID),
		Embedding: entry.Vector,
		Metadata:  entry.Attributes,
		Content:   " ", // content lives in the content store, not the index
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to upsert index entry",
			goerr.V("id", entry.ID), goerr.T(model.TagIndex))
	}
	return nil
}

func (x *ChromemIndex) Get(ctx context.Context, namespace string, id model.MemoryID) (*model.IndexEntry, error) {
	col, err := x.collection(namespace)
	if err != nil {
		return nil, err
	}

	// GetByID only fails for an empty or unknown ID.
	doc, err := col.GetByID(ctx, string(id))
	if err != nil {
		return nil, goerr.New("index entry not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}

	return &model.IndexEntry{
		ID:         model.MemoryID(doc.ID),
		Vector:     doc.Embedding,
		Attributes: doc.Metadata,
	}, nil
}

func (x *ChromemIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]*model.VectorHit, error) {
	col, err := x.collection(namespace)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection size.
	n := topK
	if count := col.Count(); count < n {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query index",
			goerr.V("namespace", namespace), goerr.T(model.TagIndex))
	}

	hits := make([]*model.VectorHit, 0, len(results))
	for _, result := range results {
		hits = append(hits, &model.VectorHit{
			ID:         model.MemoryID(result.ID),
			Score:      result.Similarity,
			Attributes: result.Metadata,
		})
	}
	return hits, nil
}

func (x *ChromemIndex) Delete(ctx context.Context, namespace string, id model.MemoryID) error {
	col, err := x.collection(namespace)
	if err != nil {
		return err
	}

	if err := col.Delete(ctx, nil, nil, string(id)); err != nil {
		return goerr.Wrap(err, "failed to delete index entry",
			goerr.V("id", id), goerr.T(model.TagIndex))
	}
	return nil
}
