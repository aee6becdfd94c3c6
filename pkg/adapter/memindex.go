package adapter

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engramhq/engram/pkg/model"
)

// MemoryIndex is a map-backed VectorIndex for tests and ephemeral runs.
// Queries do a full cosine-similarity scan of the namespace.
type MemoryIndex struct {
	mu         sync.RWMutex
	namespaces map[string]map[model.MemoryID]*model.IndexEntry
}

// NewMemoryIndex returns an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		namespaces: make(map[string]map[model.MemoryID]*model.IndexEntry),
	}
}

func (x *MemoryIndex) Upsert(ctx context.Context, namespace string, entry *model.IndexEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	ns, ok := x.namespaces[namespace]
	if !ok {
		ns = make(map[model.MemoryID]*model.IndexEntry)
		x.namespaces[namespace] = ns
	}

	copied := *entry
	ns[entry.ID] = &copied
	return nil
}

func (x *MemoryIndex) Get(ctx context.Context, namespace string, id model.MemoryID) (*model.IndexEntry, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	entry, ok := x.namespaces[namespace][id]
	if !ok {
		return nil, goerr.New("index entry not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}
	copied := *entry
	return &copied, nil
}

func (x *MemoryIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]*model.VectorHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var hits []*model.VectorHit
	for _, entry := range x.namespaces[namespace] {
		hits = append(hits, &model.VectorHit{
			ID:         entry.ID,
			Score:      cosineSimilarity(vector, entry.Vector),
			Attributes: entry.Attributes,
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (x *MemoryIndex) Delete(ctx context.Context, namespace string, id model.MemoryID) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	delete(x.namespaces[namespace], id)
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
