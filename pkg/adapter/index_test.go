package adapter_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/engramhq/engram/pkg/adapter"
	"github.com/engramhq/engram/pkg/interfaces"
	"github.com/engramhq/engram/pkg/model"
)

// runIndexTests exercises the VectorIndex contract against an implementation.
func runIndexTests(t *testing.T, newIndex func(t *testing.T) interfaces.VectorIndex) {
	embed := func(t *testing.T, text string) []float32 {
		t.Helper()
		vector, err := adapter.NewMockEmbedder().Embed(context.Background(), text)
		gt.NoError(t, err)
		return vector
	}

	upsert := func(t *testing.T, index interfaces.VectorIndex, namespace, text string, attrs map[string]string) model.MemoryID {
		t.Helper()
		id := model.NewMemoryID()
		gt.NoError(t, index.Upsert(context.Background(), namespace, &model.IndexEntry{
			ID:         id,
			Vector:     embed(t, text),
			Attributes: attrs,
		}))
		return id
	}

	t.Run("QueryRanksBySimilarity", func(t *testing.T) {
		index := newIndex(t)
		ctx := context.Background()

		relevant := upsert(t, index, "alice", "quarterly budget planning meeting", nil)
		upsert(t, index, "alice", "office plant watering schedule", nil)

		hits, err := index.Query(ctx, "alice", embed(t, "quarterly budget meeting"), 10)
		gt.NoError(t, err)
		gt.A(t, hits).Length(2)
		gt.Equal(t, hits[0].ID, relevant)
		gt.True(t, hits[0].Score >= hits[1].Score)
	})

	t.Run("QueryRespectsTopK", func(t *testing.T) {
		index := newIndex(t)
		ctx := context.Background()

		for _, text := range []string{"alpha report", "beta report", "gamma report"} {
			upsert(t, index, "alice", text, nil)
		}

		hits, err := index.Query(ctx, "alice", embed(t, "report"), 2)
		gt.NoError(t, err)
		gt.A(t, hits).Length(2)
	})

	t.Run("QueryEmptyNamespace", func(t *testing.T) {
		index := newIndex(t)

		hits, err := index.Query(context.Background(), "nobody", embed(t, "anything"), 10)
		gt.NoError(t, err)
		gt.A(t, hits).Length(0)
	})

	t.Run("NamespaceIsolation", func(t *testing.T) {
		index := newIndex(t)
		ctx := context.Background()

		aliceID := upsert(t, index, "alice", "shared phrasing for both owners", nil)
		upsert(t, index, "bob", "shared phrasing for both owners", nil)

		hits, err := index.Query(ctx, "alice", embed(t, "shared phrasing"), 10)
		gt.NoError(t, err)
		gt.A(t, hits).Length(1)
		gt.Equal(t, hits[0].ID, aliceID)
	})

	t.Run("AttributesCarriedOnHits", func(t *testing.T) {
		index := newIndex(t)
		ctx := context.Background()

		upsert(t, index, "alice", "vendor invoice follow up", map[string]string{
			model.AttrCompany: "acme",
		})

		hits, err := index.Query(ctx, "alice", embed(t, "vendor invoice"), 10)
		gt.NoError(t, err)
		gt.A(t, hits).Length(1)
		gt.Equal(t, hits[0].Attributes[model.AttrCompany], "acme")
	})

	t.Run("GetReturnsStoredEntry", func(t *testing.T) {
		index := newIndex(t)
		ctx := context.Background()

		id := upsert(t, index, "alice", "stored entry", map[string]string{
			model.AttrCompany: "acme",
		})

		entry, err := index.Get(ctx, "alice", id)
		gt.NoError(t, err)
		gt.Equal(t, entry.ID, id)
		gt.Equal(t, entry.Attributes[model.AttrCompany], "acme")
		gt.A(t, entry.Vector).Longer(0)

		_, err = index.Get(ctx, "alice", model.NewMemoryID())
		gt.Error(t, err)
		gt.True(t, model.HasTag(err, model.TagNotFound))

		_, err = index.Get(ctx, "bob", id)
		gt.Error(t, err)
		gt.True(t, model.HasTag(err, model.TagNotFound))
	})

	t.Run("UpsertReplacesEntry", func(t *testing.T) {
		index := newIndex(t)
		ctx := context.Background()

		id := model.NewMemoryID()
		gt.NoError(t, index.Upsert(ctx, "alice", &model.IndexEntry{
			ID:     id,
			Vector: embed(t, "original wording"),
		}))
		gt.NoError(t, index.Upsert(ctx, "alice", &model.IndexEntry{
			ID:     id,
			Vector: embed(t, "rewritten wording"),
		}))

		hits, err := index.Query(ctx, "alice", embed(t, "rewritten wording"), 10)
		gt.NoError(t, err)
		gt.A(t, hits).Length(1)
		gt.Equal(t, hits[0].ID, id)
	})

	t.Run("Delete", func(t *testing.T) {
		index := newIndex(t)
		ctx := context.Background()

		id := upsert(t, index, "alice", "entry to remove", nil)
		kept := upsert(t, index, "alice", "entry to keep", nil)

		gt.NoError(t, index.Delete(ctx, "alice", id))

		hits, err := index.Query(ctx, "alice", embed(t, "entry"), 10)
		gt.NoError(t, err)
		gt.A(t, hits).Length(1)
		gt.Equal(t, hits[0].ID, kept)
	})
}

func TestMemoryIndex(t *testing.T) {
	runIndexTests(t, func(t *testing.T) interfaces.VectorIndex {
		return adapter.NewMemoryIndex()
	})
}

func TestChromemIndex(t *testing.T) {
	runIndexTests(t, func(t *testing.T) interfaces.VectorIndex {
		return adapter.NewChromem()
	})
}

func TestPersistentChromemIndex(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := adapter.NewPersistentChromem(dir)
	gt.NoError(t, err)

	vector, err := adapter.NewMockEmbedder().Embed(ctx, "persisted entry")
	gt.NoError(t, err)
	id := model.NewMemoryID()
	gt.NoError(t, first.Upsert(ctx, "alice", &model.IndexEntry{ID: id, Vector: vector}))

	// A fresh handle over the same directory sees the entry.
	second, err := adapter.NewPersistentChromem(dir)
	gt.NoError(t, err)
	hits, err := second.Query(ctx, "alice", vector, 10)
	gt.NoError(t, err)
	gt.A(t, hits).Length(1)
	gt.Equal(t, hits[0].ID, id)
}
