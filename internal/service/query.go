package service

import (
	"context"
	"strings"

	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/search"
)

// QueryService answers free-text searches over one kind. Hits keep the
// index's relevance order.
type QueryService[R model.Record] struct {
	index      search.Index
	mapper     search.Mapper[R]
	maxResults int
}

func NewQueryService[R model.Record](index search.Index, mapper search.Mapper[R], maxResults int) *QueryService[R] {
	return &QueryService[R]{
		index:      index,
		mapper:     mapper,
		maxResults: maxResults,
	}
}

// Search runs text as a query string. Blank text returns no results without
// querying the index. A zero page limit means the configured maximum.
func (q *QueryService[R]) Search(ctx context.Context, text string, page search.Page) ([]R, error) {
	if strings.TrimSpace(text) == "" {
		return []R{}, nil
	}

	if page.Limit <= 0 || page.Limit > q.maxResults {
		page.Limit = q.maxResults
	}
	if page.Offset < 0 {
		page.Offset = 0
	}

	docs, err := q.index.Query(ctx, search.Query{Text: text, Page: page})
	if err != nil {
		return nil, err
	}

	records := make([]R, 0, len(docs))
	for _, doc := range docs {
		record, err := q.mapper.ToRecord(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}
