package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engramhq/engram/pkg/model"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// schema holds the idempotent DDL for both tables. memories is the generic
// content table; mails carries the structured attributes with secondary
// indexes for company-filtered listing and message-id lookup within an owner.
const schema = `
CREATE TABLE IF NOT EXISTS memories (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memories_owner ON memories (owner_id, created_at);

CREATE TABLE IF NOT EXISTS mails (
    id TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    sender TEXT NOT NULL,
    recipients TEXT NOT NULL,
    subject TEXT NOT NULL,
    date INTEGER NOT NULL,
    message_id TEXT,
    in_reply_to TEXT,
    company TEXT,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (id, owner_id)
);
CREATE INDEX IF NOT EXISTS idx_mails_owner_company ON mails (owner_id, company);
CREATE INDEX IF NOT EXISTS idx_mails_owner_message ON mails (owner_id, message_id);
`

// SQLite is a ContentStore backed by an embedded SQLite database.
type SQLite struct {
	db     *sql.DB
	ready  atomic.Bool
	initMu sync.Mutex
}

// NewSQLite opens (or creates) the database file at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}

	return &SQLite{db: db}, nil
}

// EnsureSchema runs the DDL at most once per process. The statements are
// themselves IF NOT EXISTS, so a lost race with another process is harmless.
func (r *SQLite) EnsureSchema(ctx context.Context) error {
	if r.ready.Load() {
		return nil
	}

	r.initMu.Lock()
	defer r.initMu.Unlock()
	if r.ready.Load() {
		return nil
	}

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return goerr.Wrap(err, "failed to create schema")
	}

	r.ready.Store(true)
	return nil
}

// Close releases the underlying database handle.
func (r *SQLite) Close() error {
	return r.db.Close()
}

func (r *SQLite) PutMemory(ctx context.Context, memory *model.Memory) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memories (id, owner_id, content, created_at) VALUES (?, ?, ?, ?)`,
		string(memory.ID), memory.Owner, memory.Content, memory.CreatedAt.UnixNano(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert memory", goerr.V("id", memory.ID))
	}
	return nil
}

func (r *SQLite) GetMemory(ctx context.Context, id model.MemoryID, owner string) (*model.Memory, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, content, created_at FROM memories WHERE id = ? AND owner_id = ?`,
		string(id), owner,
	)

	memory, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.New("memory not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get memory", goerr.V("id", id))
	}
	return memory, nil
}

func (r *SQLite) GetMemories(ctx context.Context, ids []model.MemoryID, owner string) (map[model.MemoryID]*model.Memory, error) {
	found := make(map[model.MemoryID]*model.Memory, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	query := `SELECT id, owner_id, content, created_at FROM memories WHERE owner_id = ? AND id IN (` +
		placeholders(len(ids)) + `)`
	args := make([]any, 0, len(ids)+1)
	args = append(args, owner)
	for _, id := range ids {
		args = append(args, string(id))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get memories", goerr.V("count", len(ids)))
	}
	defer rows.Close()

	for rows.Next() {
		memory, err := scanMemory(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan memory row")
		}
		found[memory.ID] = memory
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate memory rows")
	}
	return found, nil
}

func (r *SQLite) UpdateMemory(ctx context.Context, id model.MemoryID, owner, content string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE memories SET content = ? WHERE id = ? AND owner_id = ?`,
		content, string(id), owner,
	)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to update memory", goerr.V("id", id))
	}
	return res.RowsAffected()
}

func (r *SQLite) DeleteMemory(ctx context.Context, id model.MemoryID, owner string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM memories WHERE id = ? AND owner_id = ?`,
		string(id), owner,
	)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete memory", goerr.V("id", id))
	}
	return res.RowsAffected()
}

func (r *SQLite) ListMemories(ctx context.Context, owner string) ([]*model.Memory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, content, created_at FROM memories WHERE owner_id = ? ORDER BY created_at DESC`,
		owner,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memories", goerr.V("owner", owner))
	}
	defer rows.Close()

	var memories []*model.Memory
	for rows.Next() {
		memory, err := scanMemory(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan memory row")
		}
		memories = append(memories, memory)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate memory rows")
	}
	return memories, nil
}

func (r *SQLite) PutMail(ctx context.Context, mail *model.MailRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO mails (id, owner_id, sender, recipients, subject, date, message_id, in_reply_to, company, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(mail.ID), mail.Owner, mail.Sender, strings.Join(mail.Recipients, ","),
		mail.Subject, unixOrZero(mail.Date), mail.MessageID, mail.InReplyTo, mail.Company,
		mail.CreatedAt.UnixNano(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert mail", goerr.V("id", mail.ID))
	}
	return nil
}

func (r *SQLite) GetMail(ctx context.Context, id model.MemoryID, owner string) (*model.MailRecord, error) {
	row := r.db.QueryRowContext(ctx,
		selectMail+` WHERE id = ? AND owner_id = ?`,
		string(id), owner,
	)

	mail, err := scanMail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.New("mail not found", goerr.V("id", id), goerr.T(model.TagNotFound))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get mail", goerr.V("id", id))
	}
	return mail, nil
}

func (r *SQLite) GetMails(ctx context.Context, ids []model.MemoryID, owner string) (map[model.MemoryID]*model.MailRecord, error) {
	found := make(map[model.MemoryID]*model.MailRecord, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	query := selectMail + ` WHERE owner_id = ? AND id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, 0, len(ids)+1)
	args = append(args, owner)
	for _, id := range ids {
		args = append(args, string(id))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get mails", goerr.V("count", len(ids)))
	}
	defer rows.Close()

	for rows.Next() {
		mail, err := scanMail(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan mail row")
		}
		found[mail.ID] = mail
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate mail rows")
	}
	return found, nil
}

func (r *SQLite) DeleteMail(ctx context.Context, id model.MemoryID, owner string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM mails WHERE id = ? AND owner_id = ?`,
		string(id), owner,
	)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete mail", goerr.V("id", id))
	}
	return res.RowsAffected()
}

func (r *SQLite) ListMails(ctx context.Context, owner string) ([]*model.MailRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		selectMail+` WHERE owner_id = ? ORDER BY date DESC, created_at DESC`,
		owner,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list mails", goerr.V("owner", owner))
	}
	defer rows.Close()

	var mails []*model.MailRecord
	for rows.Next() {
		mail, err := scanMail(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan mail row")
		}
		mails = append(mails, mail)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate mail rows")
	}
	return mails, nil
}

const selectMail = `SELECT id, owner_id, sender, recipients, subject, date, message_id, in_reply_to, company, created_at FROM mails`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*model.Memory, error) {
	var (
		memory    model.Memory
		id        string
		createdAt int64
	)
	if err := row.Scan(&id, &memory.Owner, &memory.Content, &createdAt); err != nil {
		return nil, err
	}
	memory.ID = model.MemoryID(id)
	memory.CreatedAt = time.Unix(0, createdAt)
	return &memory, nil
}

func scanMail(row rowScanner) (*model.MailRecord, error) {
	var (
		mail       model.MailRecord
		id         string
		recipients string
		date       int64
		createdAt  int64
	)
	if err := row.Scan(&id, &mail.Owner, &mail.Sender, &recipients, &mail.Subject,
		&date, &mail.MessageID, &mail.InReplyTo, &mail.Company, &createdAt); err != nil {
		return nil, err
	}
	mail.ID = model.MemoryID(id)
	if recipients != "" {
		mail.Recipients = strings.Split(recipients, ",")
	}
	if date != 0 {
		mail.Date = time.Unix(0, date)
	}
	mail.CreatedAt = time.Unix(0, createdAt)
	return &mail, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
