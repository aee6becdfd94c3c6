package search_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/engramhq/engram/pkg/adapter"
	"github.com/engramhq/engram/pkg/interfaces"
	"github.com/engramhq/engram/pkg/model"
	"github.com/engramhq/engram/pkg/repository"
	"github.com/engramhq/engram/pkg/usecase/memory"
	"github.com/engramhq/engram/pkg/usecase/search"
)

// countingStore wraps a ContentStore and counts GetMemories calls.
type countingStore struct {
	interfaces.ContentStore
	batchCalls int
}

func (c *countingStore) GetMemories(ctx context.Context, ids []model.MemoryID, owner string) (map[model.MemoryID]*model.Memory, error) {
	c.batchCalls++
	return c.ContentStore.GetMemories(ctx, ids, owner)
}

type fixture struct {
	store    *repository.Memory
	index    *adapter.MemoryIndex
	embedder *adapter.MockEmbedder
	memories *memory.UseCase
	engine   *search.Engine
}

func newFixture() *fixture {
	store := repository.NewMemory()
	index := adapter.NewMemoryIndex()
	embedder := adapter.NewMockEmbedder()
	return &fixture{
		store:    store,
		index:    index,
		embedder: embedder,
		memories: memory.New(store, index, embedder),
		engine:   search.New(store, index, embedder),
	}
}

func (f *fixture) create(t *testing.T, owner, content string) *model.Memory {
	t.Helper()
	mem, err := f.memories.Create(context.Background(), memory.CreateInput{
		Owner:   owner,
		Content: content,
	})
	gt.NoError(t, err)
	return mem
}

func TestSearchRanksByRelevance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	relevant := f.create(t, "alice", "the quarterly budget meeting is scheduled for tuesday")
	f.create(t, "alice", "remember to water the office plants")

	hits, err := f.engine.Search(ctx, search.Input{
		Owner: "alice",
		Query: "when is the quarterly budget meeting",
	})
	gt.NoError(t, err)
	gt.A(t, hits).Longer(0)
	gt.Equal(t, hits[0].Memory.ID, relevant.ID)
}

func TestSearchEmptyNamespace(t *testing.T) {
	f := newFixture()

	hits, err := f.engine.Search(context.Background(), search.Input{
		Owner: "nobody",
		Query: "anything at all",
	})
	gt.NoError(t, err)
	gt.A(t, hits).Length(0)
}

func TestSearchValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.engine.Search(ctx, search.Input{Owner: "alice", Query: "  "})
	gt.Error(t, err)
	gt.True(t, model.HasTag(err, model.TagValidation))

	_, err = f.engine.Search(ctx, search.Input{Owner: "", Query: "something"})
	gt.Error(t, err)
	gt.True(t, model.HasTag(err, model.TagValidation))
}

func TestSearchDropsOrphanedIndexEntries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	kept := f.create(t, "alice", "project kickoff notes from monday")

	// A stray index entry whose content row never existed must be silently
	// filtered out, not surfaced as an error.
	orphanVector, err := f.embedder.Embed(ctx, "project kickoff notes from monday")
	gt.NoError(t, err)
	gt.NoError(t, f.index.Upsert(ctx, "alice", &model.IndexEntry{
		ID:     model.NewMemoryID(),
		Vector: orphanVector,
	}))

	hits, err := f.engine.Search(ctx, search.Input{
		Owner: "alice",
		Query: "project kickoff notes",
	})
	gt.NoError(t, err)
	gt.A(t, hits).Length(1)
	gt.Equal(t, hits[0].Memory.ID, kept.ID)
}

func TestSearchHidesDeletedMemory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	mem := f.create(t, "alice", "secret launch date for the new product")

	// Remove only the content row, leaving the index entry behind. This is the
	// state a delete leaves when the index removal fails.
	changed, err := f.store.DeleteMemory(ctx, mem.ID, "alice")
	gt.NoError(t, err)
	gt.Equal(t, changed, int64(1))

	hits, err := f.engine.Search(ctx, search.Input{
		Owner: "alice",
		Query: "secret launch date",
	})
	gt.NoError(t, err)
	gt.A(t, hits).Length(0)
}

func TestSearchOwnerIsolation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.create(t, "alice", "alice's travel itinerary for the berlin trip")
	f.create(t, "bob", "bob's travel itinerary for the berlin trip")

	hits, err := f.engine.Search(ctx, search.Input{
		Owner: "alice",
		Query: "travel itinerary berlin",
	})
	gt.NoError(t, err)
	gt.A(t, hits).Length(1)
	gt.Equal(t, hits[0].Memory.Owner, "alice")
}

func TestSearchAttributeFilter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var acmeIDs []model.MemoryID
	for _, tc := range []struct {
		content string
		company string
	}{
		{"invoice follow up with the vendor", "acme"},
		{"invoice reminder for the contractor", "globex"},
		{"invoice escalation to finance", "acme"},
	} {
		mem, err := f.memories.Create(ctx, memory.CreateInput{
			Owner:      "alice",
			Content:    tc.content,
			Attributes: map[string]string{model.AttrCompany: tc.company},
		})
		gt.NoError(t, err)
		if tc.company == "acme" {
			acmeIDs = append(acmeIDs, mem.ID)
		}
	}

	unfiltered, err := f.engine.Search(ctx, search.Input{
		Owner: "alice",
		Query: "invoice",
	})
	gt.NoError(t, err)
	gt.A(t, unfiltered).Length(3)

	filtered, err := f.engine.Search(ctx, search.Input{
		Owner:  "alice",
		Query:  "invoice",
		Filter: &search.AttributeFilter{Key: model.AttrCompany, Value: "acme"},
	})
	gt.NoError(t, err)
	gt.A(t, filtered).Length(2)
	for _, hit := range filtered {
		gt.Equal(t, hit.Attributes[model.AttrCompany], "acme")
	}

	// Filtering removes hits but never reorders the survivors: they appear in
	// the same relative order as in the unfiltered result.
	var surviving []model.MemoryID
	for _, hit := range unfiltered {
		for _, id := range acmeIDs {
			if hit.Memory.ID == id {
				surviving = append(surviving, hit.Memory.ID)
			}
		}
	}
	gt.A(t, filtered).Length(len(surviving))
	for i, hit := range filtered {
		gt.Equal(t, hit.Memory.ID, surviving[i])
	}
}

func TestSearchBatchesContentFetch(t *testing.T) {
	store := repository.NewMemory()
	counting := &countingStore{ContentStore: store}
	index := adapter.NewMemoryIndex()
	embedder := adapter.NewMockEmbedder()
	memories := memory.New(store, index, embedder)
	engine := search.New(counting, index, embedder)
	ctx := context.Background()

	for _, content := range []string{
		"standup notes from monday morning",
		"standup notes from tuesday morning",
		"standup notes from wednesday morning",
		"standup notes from thursday morning",
	} {
		_, err := memories.Create(ctx, memory.CreateInput{Owner: "alice", Content: content})
		gt.NoError(t, err)
	}

	hits, err := engine.Search(ctx, search.Input{Owner: "alice", Query: "standup notes"})
	gt.NoError(t, err)
	gt.A(t, hits).Length(4)
	gt.Equal(t, counting.batchCalls, 1)
}

func TestSearchLimit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, content := range []string{
		"meeting recap alpha",
		"meeting recap beta",
		"meeting recap gamma",
	} {
		f.create(t, "alice", content)
	}

	hits, err := f.engine.Search(ctx, search.Input{
		Owner: "alice",
		Query: "meeting recap",
		Limit: 2,
	})
	gt.NoError(t, err)
	gt.A(t, hits).Length(2)
}
