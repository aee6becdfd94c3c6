package mail

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engramhq/engram/pkg/model"
	"github.com/engramhq/engram/pkg/usecase/memory"
)

// CreateInput contains the structured payload for a mail-backed memory
type CreateInput struct {
	Owner      string
	Subject    string
	Body       string
	Sender     string
	Recipients []string
	Date       time.Time
	MessageID  string
	InReplyTo  string
	// Company overrides the value derived from Sender when set.
	Company string
}

// Create derives the company attribute, builds the textual projection, runs
// the generic create, then persists the mail row. The two writes are
// independent: when the mail row write fails after the memory was created,
// the memory stays searchable but carries no structured attributes, and the
// failure is surfaced to the caller.
func (u *UseCase) Create(ctx context.Context, input CreateInput) (*model.MailRecord, error) {
	if input.Owner == "" {
		return nil, goerr.New("owner is required", goerr.T(model.TagValidation))
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, goerr.New("subject is required", goerr.T(model.TagValidation))
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, goerr.New("body is required", goerr.T(model.TagValidation))
	}
	if strings.TrimSpace(input.Sender) == "" {
		return nil, goerr.New("sender is required", goerr.T(model.TagValidation))
	}

	company := input.Company
	if company == "" {
		company = model.DeriveCompany(input.Sender)
	}

	mem, err := u.orchestrator.Create(ctx, memory.CreateInput{
		Owner:      input.Owner,
		Content:    projection(input),
		Attributes: flatten(input, company),
	})
	if err != nil {
		return nil, err
	}

	record := &model.MailRecord{
		ID:         mem.ID,
		Owner:      input.Owner,
		Sender:     input.Sender,
		Recipients: input.Recipients,
		Subject:    input.Subject,
		Date:       input.Date,
		MessageID:  input.MessageID,
		InReplyTo:  input.InReplyTo,
		Company:    company,
		CreatedAt:  mem.CreatedAt,
	}

	putCtx, cancel := u.callContext(ctx)
	defer cancel()
	if err := u.store.PutMail(putCtx, record); err != nil {
		return nil, goerr.Wrap(err, "failed to store mail attributes, memory is left without them",
			goerr.V("id", mem.ID), goerr.T(model.TagStore))
	}

	return record, nil
}

// projection is the text that gets embedded: subject and participants are
// included so semantic search matches on them, not just the body.
func projection(input CreateInput) string {
	var b strings.Builder
	b.WriteString("Subject: ")
	b.WriteString(input.Subject)
	b.WriteString("\nFrom: ")
	b.WriteString(input.Sender)
	if len(input.Recipients) > 0 {
		b.WriteString("\nTo: ")
		b.WriteString(strings.Join(input.Recipients, ", "))
	}
	b.WriteString("\n\n")
	b.WriteString(input.Body)
	return b.String()
}

// flatten builds the scalar attribute map stored on the index entry for
// exact-match filtering. Empty values are omitted.
func flatten(input CreateInput, company string) map[string]string {
	attrs := map[string]string{
		model.AttrSubject: input.Subject,
		model.AttrSender:  input.Sender,
	}
	if len(input.Recipients) > 0 {
		attrs[model.AttrRecipients] = strings.Join(input.Recipients, ",")
	}
	if !input.Date.IsZero() {
		attrs[model.AttrDate] = input.Date.UTC().Format(time.RFC3339)
	}
	if company != "" {
		attrs[model.AttrCompany] = company
	}
	if input.MessageID != "" {
		attrs[model.AttrMessageID] = input.MessageID
	}
	if input.InReplyTo != "" {
		attrs[model.AttrInReplyTo] = input.InReplyTo
	}
	return attrs
}
