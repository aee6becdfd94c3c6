package mail

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engramhq/engram/pkg/model"
)

// Get joins the mail attributes with the memory's content by (id, owner).
func (u *UseCase) Get(ctx context.Context, id model.MemoryID, owner string) (*model.MailDetail, error) {
	getCtx, cancel := u.callContext(ctx)
	defer cancel()
	record, err := u.store.GetMail(getCtx, id, owner)
	if err != nil {
		if model.HasTag(err, model.TagNotFound) {
			return nil, err
		}
		return nil, goerr.Wrap(err, "failed to get mail", goerr.T(model.TagStore))
	}

	detail := &model.MailDetail{Record: record}

	memory, err := u.orchestrator.Get(ctx, id, owner)
	if err != nil {
		if model.HasTag(err, model.TagNotFound) {
			// Attribute row without content: left by a partial delete.
			return detail, nil
		}
		return nil, err
	}
	detail.Content = memory.Content

	return detail, nil
}

// List returns the owner's mail records ordered by mail date descending,
// then creation time descending.
func (u *UseCase) List(ctx context.Context, owner string) ([]*model.MailRecord, error) {
	listCtx, cancel := u.callContext(ctx)
	defer cancel()

	records, err := u.store.ListMails(listCtx, owner)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list mails", goerr.T(model.TagStore))
	}
	return records, nil
}
