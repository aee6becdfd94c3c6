package mail

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/engramhq/engram/pkg/model"
	"github.com/engramhq/engram/pkg/usecase/search"
)

// SearchInput contains parameters for a mail search
type SearchInput struct {
	Owner string
	Query string
	Limit int
	// Company, when set, keeps only hits whose company attribute matches
	// exactly. Filtering never re-sorts the similarity ranking.
	Company string
}

// Search delegates to the search engine, then resolves the structured
// attributes of every surviving hit in one batched lookup, preserving the
// engine's ordering. A hit whose mail row is missing (partial create) is
// still returned, with Record nil.
func (u *UseCase) Search(ctx context.Context, input SearchInput) ([]*model.MailHit, error) {
	var filter *search.AttributeFilter
	if input.Company != "" {
		filter = &search.AttributeFilter{Key: model.AttrCompany, Value: input.Company}
	}

	hits, err := u.engine.Search(ctx, search.Input{
		Owner:  input.Owner,
		Query:  input.Query,
		Limit:  input.Limit,
		Filter: filter,
	})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return []*model.MailHit{}, nil
	}

	ids := make([]model.MemoryID, 0, len(hits))
	for _, hit := range hits {
		ids = append(ids, hit.Memory.ID)
	}

	getCtx, cancel := u.callContext(ctx)
	defer cancel()
	records, err := u.store.GetMails(getCtx, ids, input.Owner)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve mail attributes", goerr.T(model.TagStore))
	}

	enriched := make([]*model.MailHit, 0, len(hits))
	for _, hit := range hits {
		enriched = append(enriched, &model.MailHit{
			Record:  records[hit.Memory.ID],
			Content: hit.Memory.Content,
			Score:   hit.Score,
		})
	}

	return enriched, nil
}
