package model

import (
	"time"

	"github.com/google/uuid"
)

type MemoryID string

// NewMemoryID generates a new unique MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

// Memory is the authoritative content record. The same ID keys both the
// content store row and the vector index entry; there is no mapping table.
type Memory struct {
	ID        MemoryID  `json:"id"`
	Owner     string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// IndexEntry is the vector index side of a Memory. It may transiently exist
// without its content row (or vice versa) because the two stores are written
// without a transaction.
type IndexEntry struct {
	ID         MemoryID
	Vector     []float32
	Attributes map[string]string
}

// VectorHit is a ranked nearest-neighbor candidate returned by the index.
type VectorHit struct {
	ID         MemoryID
	Score      float32
	Attributes map[string]string
}

// SearchHit is a vector hit joined against its content row. Hits whose ID has
// no backing content row are dropped before they reach a caller.
type SearchHit struct {
	Memory     *Memory           `json:"memory"`
	Score      float32           `json:"score"`
	Attributes map[string]string `json:"attributes,omitempty"`
}
