package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"

	"github.com/engramhq/engram/pkg/interfaces"
	"github.com/engramhq/engram/pkg/model"
	"github.com/engramhq/engram/pkg/repository"
)

// newOwner returns a fresh owner ID so subtests stay isolated even against a
// persistent backend.
func newOwner() string {
	return "user-" + uuid.NewString()
}

func newMemoryRow(owner, content string, createdAt time.Time) *model.Memory {
	return &model.Memory{
		ID:        model.NewMemoryID(),
		Owner:     owner,
		Content:   content,
		CreatedAt: createdAt,
	}
}

func newMailRow(owner, subject string, date time.Time) *model.MailRecord {
	return &model.MailRecord{
		ID:        model.NewMemoryID(),
		Owner:     owner,
		Sender:    "cfo@acme.com",
		Subject:   subject,
		Date:      date,
		Company:   "acme",
		CreatedAt: time.Now().UTC(),
	}
}

// runStoreTests exercises the ContentStore contract against an implementation.
func runStoreTests(t *testing.T, newStore func(t *testing.T) interfaces.ContentStore) {
	t.Run("MemoryRoundtrip", func(t *testing.T) {
		store := newStore(t)
		owner := newOwner()
		ctx := context.Background()

		mem := newMemoryRow(owner, "hello world", time.Now().UTC())
		gt.NoError(t, store.PutMemory(ctx, mem))

		got, err := store.GetMemory(ctx, mem.ID, owner)
		gt.NoError(t, err)
		gt.Equal(t, got.ID, mem.ID)
		gt.Equal(t, got.Owner, owner)
		gt.Equal(t, got.Content, "hello world")
		gt.True(t, got.CreatedAt.Equal(mem.CreatedAt))
	})

	t.Run("MemoryNotFound", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetMemory(context.Background(), model.NewMemoryID(), newOwner())
		gt.Error(t, err)
		gt.True(t, model.HasTag(err, model.TagNotFound))
	})

	t.Run("MemoryOwnerScoped", func(t *testing.T) {
		store := newStore(t)
		owner := newOwner()
		ctx := context.Background()

		mem := newMemoryRow(owner, "private", time.Now().UTC())
		gt.NoError(t, store.PutMemory(ctx, mem))

		_, err := store.GetMemory(ctx, mem.ID, newOwner())
		gt.Error(t, err)
		gt.True(t, model.HasTag(err, model.TagNotFound))
	})

	t.Run("GetMemoriesBatch", func(t *testing.T) {
		store := newStore(t)
		owner := newOwner()
		ctx := context.Background()

		first := newMemoryRow(owner, "first", time.Now().UTC())
		second := newMemoryRow(owner, "second", time.Now().UTC())
		other := newMemoryRow(newOwner(), "someone else's", time.Now().UTC())
		for _, mem := range []*model.Memory{first, second, other} {
			gt.NoError(t, store.PutMemory(ctx, mem))
		}

		missing := model.NewMemoryID()
		found, err := store.GetMemories(ctx, []model.MemoryID{first.ID, second.ID, other.ID, missing}, owner)
		gt.NoError(t, err)
		gt.Equal(t, len(found), 2)
		gt.V(t, found[first.ID]).NotNil()
		gt.V(t, found[second.ID]).NotNil()
		gt.V(t, found[other.ID]).Nil()
		gt.V(t, found[missing]).Nil()
	})

	t.Run("GetMemoriesEmpty", func(t *testing.T) {
		store := newStore(t)

		found, err := store.GetMemories(context.Background(), nil, newOwner())
		gt.NoError(t, err)
		gt.Equal(t, len(found), 0)
	})

	t.Run("UpdateMemory", func(t *testing.T) {
		store := newStore(t)
		owner := newOwner()
		ctx := context.Background()

		mem := newMemoryRow(owner, "before", time.Now().UTC())
		gt.NoError(t, store.PutMemory(ctx, mem))

		changed, err := store.UpdateMemory(ctx, mem.ID, owner, "after")
		gt.NoError(t, err)
		gt.Equal(t, changed, int64(1))

		got, err := store.GetMemory(ctx, mem.ID, owner)
		gt.NoError(t, err)
		gt.Equal(t, got.Content, "after")

		changed, err = store.UpdateMemory(ctx, model.NewMemoryID(), owner, "nowhere")
		gt.NoError(t, err)
		gt.Equal(t, changed, int64(0))

		changed, err = store.UpdateMemory(ctx, mem.ID, newOwner(), "wrong owner")
		gt.NoError(t, err)
		gt.Equal(t, changed, int64(0))
	})

	t.Run("DeleteMemory", func(t *testing.T) {
		store := newStore(t)
		owner := newOwner()
		ctx := context.Background()

		mem := newMemoryRow(owner, "doomed", time.Now().UTC())
		gt.NoError(t, store.PutMemory(ctx, mem))

		changed, err := store.DeleteMemory(ctx, mem.ID, newOwner())
		gt.NoError(t, err)
		gt.Equal(t, changed, int64(0))

		changed, err = store.DeleteMemory(ctx, mem.ID, owner)
		gt.NoError(t, err)
		gt.Equal(t, changed, int64(1))

		changed, err = store.DeleteMemory(ctx, mem.ID, owner)
		gt.NoError(t, err)
		gt.Equal(t, changed, int64(0))
	})

	t.Run("ListMemoriesNewestFirst", func(t *testing.T) {
		store := newStore(t)
		owner := newOwner()
		ctx := context.Background()

		base := time.Now().UTC()
		oldest := newMemoryRow(owner, "oldest", base.Add(-2*time.Hour))
		middle := newMemoryRow(owner, "middle", base.Add(-time.Hour))
		newest := newMemoryRow(owner, "newest", base)
		other := newMemoryRow(newOwner(), "someone else's", base)
		for _, mem := range []*model.Memory{middle, oldest, newest, other} {
			gt.NoError(t, store.PutMemory(ctx, mem))
		}

		memories, err := store.ListMemories(ctx, owner)
		gt.NoError(t, err)
		gt.A(t, memories).Length(3)
		gt.Equal(t, memories[0].Content, "newest")
		gt.Equal(t, memories[1].Content, "middle")
		gt.Equal(t, memories[2].Content, "oldest")
	})

	t.Run("MailRoundtrip", func(t *testing.T) {
		store := newStore(t)
		owner := newOwner()
		ctx := context.Background()

		record := newMailRow(owner, "Q3 numbers", time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC))
		record.Recipients = []string{"alice@example.com", "bob@example.com"}
		record.MessageID = "<msg-1@acme.com>"
		record.InReplyTo = "<msg-0@acme.com>"
		gt.NoError(t, store.PutMail(ctx, record))

		got, err := store.GetMail(ctx, record.ID, owner)
		gt.NoError(t, err)
		gt.Equal(t, got.Sender, "cfo@acme.com")
		gt.Equal(t, got.Recipients, []string{"alice@example.com", "bob@example.com"})
		gt.Equal(t, got.Subject, "Q3 numbers")
		gt.True(t, got.Date.Equal(record.Date))
		gt.Equal(t, got.MessageID, "<msg-1@acme.com>")
		gt.Equal(t, got.InReplyTo, "<msg-0@acme.com>")
		gt.Equal(t, got.Company, "acme")

		_, err = store.GetMail(ctx, record.ID, newOwner())
		gt.Error(t, err)
		gt.True(t, model.HasTag(err, model.TagNotFound))
	})

	t.Run("GetMailsBatch", func(t *testing.T) {
		store := newStore(t)
		owner := newOwner()
		ctx := context.Background()

		var ids []model.MemoryID
		for _, subject := range []string{"one", "two"} {
			record := newMailRow(owner, subject, time.Now().UTC())
			gt.NoError(t, store.PutMail(ctx, record))
			ids = append(ids, record.ID)
		}

		found, err := store.GetMails(ctx, append(ids, model.NewMemoryID()), owner)
		gt.NoError(t, err)
		gt.Equal(t, len(found), 2)
	})

	t.Run("DeleteMail", func(t *testing.T) {
		store := newStore(t)
		owner := newOwner()
		ctx := context.Background()

		record := newMailRow(owner, "bye", time.Now().UTC())
		gt.NoError(t, store.PutMail(ctx, record))

		changed, err := store.DeleteMail(ctx, record.ID, owner)
		gt.NoError(t, err)
		gt.Equal(t, changed, int64(1))

		changed, err = store.DeleteMail(ctx, record.ID, owner)
		gt.NoError(t, err)
		gt.Equal(t, changed, int64(0))
	})

	t.Run("ListMailsOrderedByDate", func(t *testing.T) {
		store := newStore(t)
		owner := newOwner()
		ctx := context.Background()

		base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		for i, subject := range []string{"oldest", "middle", "newest"} {
			record := newMailRow(owner, subject, base.Add(time.Duration(i)*24*time.Hour))
			gt.NoError(t, store.PutMail(ctx, record))
		}
		// Same date as "newest", later creation: creation time breaks the tie.
		tied := newMailRow(owner, "newest-tiebreak", base.Add(2*24*time.Hour))
		tied.CreatedAt = time.Now().UTC().Add(time.Minute)
		gt.NoError(t, store.PutMail(ctx, tied))

		records, err := store.ListMails(ctx, owner)
		gt.NoError(t, err)
		gt.A(t, records).Length(4)
		gt.Equal(t, records[0].Subject, "newest-tiebreak")
		gt.Equal(t, records[1].Subject, "newest")
		gt.Equal(t, records[2].Subject, "middle")
		gt.Equal(t, records[3].Subject, "oldest")
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) interfaces.ContentStore {
		return repository.NewMemory()
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) interfaces.ContentStore {
		store, err := repository.NewSQLite(filepath.Join(t.TempDir(), "engram.db"))
		gt.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		gt.NoError(t, store.EnsureSchema(context.Background()))
		return store
	})
}
