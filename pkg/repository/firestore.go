package repository

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/engramhq/engram/pkg/model"
)

const (
	memoryCollection = "memories"
	mailCollection   = "mails"
)

// Firestore is a ContentStore backed by Cloud Firestore. Documents are keyed
// by memory ID with the owner stored as a field; owner scoping is enforced on
// every read.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a Firestore-backed content store.
func NewFirestore(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

// EnsureSchema is a no-op: Firestore is schemaless and collections are
// created on first write. Composite indexes are managed out of band.
func (r *Firestore) EnsureSchema(ctx context.Context) error {
	return nil
}

// Close releases the underlying client.
func (r *Firestore) Close() error {
	return r.client.Close()
}

type memoryDoc struct {
	Owner     string    `firestore:"owner"`
	Content   string    `firestore:"content"`
	CreatedAt time.Time `firestore:"created_at"`
}

type mailDoc struct {
	Owner      string    `firestore:"owner"`
	Sender     string    `firestore:"sender"`
	Recipients string    `firestore:"recipients"`
	Subject    string    `firestore:"subject"`
	Date       time.Time `firestore:"date"`
	MessageID  string    `firestore:"message_id"`
	InReplyTo  string    `firestore:"in_reply_to"`
	Company    string    `firestore:"company"`
	CreatedAt  time.Time `firestore:"created_at"`
}

func (r *Firestore) PutMemory(ctx context.Context, memory *model.Memory) error {
	ref := r.client.Collection(memoryCollection).Doc(string(memory.ID))
	_, err := ref.Set(ctx, memoryDoc{
		Owner:     memory.Owner,
		Content:   memory.Content,
		CreatedAt: memory.CreatedAt,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to put memory", goerr.V("id", memory.ID))
	}
	return nil
}

func (r *Firestore) GetMemory(ctx context.Context, id model.MemoryID, owner string) (*model.Memory, error) {
	snap, err := r.client.Collection(memoryCollection).Doc(string(id)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, goerr.New("memory not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get memory", goerr.V("id", id))
	}

	memory, err := snapToMemory(snap)
	if err != nil {
		return nil, err
	}
	if memory.Owner != owner {
		return nil, goerr.New("memory not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}
	return memory, nil
}

func (r *Firestore) GetMemories(ctx context.Context, ids []model.MemoryID, owner string) (map[model.MemoryID]*model.Memory, error) {
	found := make(map[model.MemoryID]*model.Memory, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.client.Collection(memoryCollection).Doc(string(id)))
	}

	snaps, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to batch get memories", goerr.V("count", len(ids)))
	}

	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		memory, err := snapToMemory(snap)
		if err != nil {
			return nil, err
		}
		if memory.Owner != owner {
			continue
		}
		found[memory.ID] = memory
	}
	return found, nil
}

func (r *Firestore) UpdateMemory(ctx context.Context, id model.MemoryID, owner, content string) (int64, error) {
	ref := r.client.Collection(memoryCollection).Doc(string(id))

	var changed int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return nil
		}
		if err != nil {
			return err
		}

		var doc memoryDoc
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		if doc.Owner != owner {
			return nil
		}

		if err := tx.Update(ref, []firestore.Update{{Path: "content", Value: content}}); err != nil {
			return err
		}
		changed = 1
		return nil
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to update memory", goerr.V("id", id))
	}
	return changed, nil
}

func (r *Firestore) DeleteMemory(ctx context.Context, id model.MemoryID, owner string) (int64, error) {
	ref := r.client.Collection(memoryCollection).Doc(string(id))

	var changed int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return nil
		}
		if err != nil {
			return err
		}

		var doc memoryDoc
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		if doc.Owner != owner {
			return nil
		}

		if err := tx.Delete(ref); err != nil {
			return err
		}
		changed = 1
		return nil
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete memory", goerr.V("id", id))
	}
	return changed, nil
}

func (r *Firestore) ListMemories(ctx context.Context, owner string) ([]*model.Memory, error) {
	iter := r.client.Collection(memoryCollection).
		Where("owner", "==", owner).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var memories []*model.Memory
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list memories", goerr.V("owner", owner))
		}

		memory, err := snapToMemory(snap)
		if err != nil {
			return nil, err
		}
		memories = append(memories, memory)
	}
	return memories, nil
}

func (r *Firestore) PutMail(ctx context.Context, mail *model.MailRecord) error {
	ref := r.client.Collection(mailCollection).Doc(string(mail.ID))
	_, err := ref.Set(ctx, mailDoc{
		Owner:      mail.Owner,
		Sender:     mail.Sender,
		Recipients: strings.Join(mail.Recipients, ","),
		Subject:    mail.Subject,
		Date:       mail.Date,
		MessageID:  mail.MessageID,
		InReplyTo:  mail.InReplyTo,
		Company:    mail.Company,
		CreatedAt:  mail.CreatedAt,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to put mail", goerr.V("id", mail.ID))
	}
	return nil
}

func (r *Firestore) GetMail(ctx context.Context, id model.MemoryID, owner string) (*model.MailRecord, error) {
	snap, err := r.client.Collection(mailCollection).Doc(string(id)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, goerr.New("mail not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get mail", goerr.V("id", id))
	}

	mail, err := snapToMail(snap)
	if err != nil {
		return nil, err
	}
	if mail.Owner != owner {
		return nil, goerr.New("mail not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}
	return mail, nil
}

func (r *Firestore) GetMails(ctx context.Context, ids []model.MemoryID, owner string) (map[model.MemoryID]*model.MailRecord, error) {
	found := make(map[model.MemoryID]*model.MailRecord, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.client.Collection(mailCollection).Doc(string(id)))
	}

	snaps, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to batch get mails", goerr.V("count", len(ids)))
	}

	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		mail, err := snapToMail(snap)
		if err != nil {
			return nil, err
		}
		if mail.Owner != owner {
			continue
		}
		found[mail.ID] = mail
	}
	return found, nil
}

func (r *Firestore) DeleteMail(ctx context.Context, id model.MemoryID, owner string) (int64, error) {
	ref := r.client.Collection(mailCollection).Doc(string(id))

	var changed int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return nil
		}
		if err != nil {
			return err
		}

		var doc mailDoc
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		if doc.Owner != owner {
			return nil
		}

		if err := tx.Delete(ref); err != nil {
			return err
		}
		changed = 1
		return nil
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete mail", goerr.V("id", id))
	}
	return changed, nil
}

func (r *Firestore) ListMails(ctx context.Context, owner string) ([]*model.MailRecord, error) {
	iter := r.client.Collection(mailCollection).
		Where("owner", "==", owner).
		OrderBy("date", firestore.Desc).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var mails []*model.MailRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list mails", goerr.V("owner", owner))
		}

		mail, err := snapToMail(snap)
		if err != nil {
			return nil, err
		}
		mails = append(mails, mail)
	}
	return mails, nil
}

func snapToMemory(snap *firestore.DocumentSnapshot) (*model.Memory, error) {
	var doc memoryDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode memory document", goerr.V("id", snap.Ref.ID))
	}
	return &model.Memory{
		ID:        model.MemoryID(snap.Ref.ID),
		Owner:     doc.Owner,
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func snapToMail(snap *firestore.DocumentSnapshot) (*model.MailRecord, error) {
	var doc mailDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode mail document", goerr.V("id", snap.Ref.ID))
	}

	mail := &model.MailRecord{
		ID:        model.MemoryID(snap.Ref.ID),
		Owner:     doc.Owner,
		Sender:    doc.Sender,
		Subject:   doc.Subject,
		Date:      doc.Date,
		MessageID: doc.MessageID,
		InReplyTo: doc.InReplyTo,
		Company:   doc.Company,
		CreatedAt: doc.CreatedAt,
	}
	if doc.Recipients != "" {
		mail.Recipients = strings.Split(doc.Recipients, ",")
	}
	return mail, nil
}
