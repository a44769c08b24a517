package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/deppfellow/pixelmags/internal/errs"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/rs/zerolog"
)

const idPageSize = 1000

// BleveIndex is an Index backed by a bleve index.
type BleveIndex struct {
	kind   model.Kind
	index  bleve.Index
	logger *zerolog.Logger
}

// OpenBleveIndex opens the index for kind under dir, creating it with the
// mapping derived from schema when it does not exist yet. An empty dir keeps
// the index in memory.
func OpenBleveIndex(dir string, kind model.Kind, schema Schema, logger *zerolog.Logger) (*BleveIndex, error) {
	im := indexMapping(schema)

	var (
		index bleve.Index
		err   error
	)

	if dir == "" {
		index, err = bleve.NewMemOnly(im)
	} else {
		path := filepath.Join(dir, kind.String()+".bleve")
		if _, statErr := os.Stat(path); statErr == nil {
			index, err = bleve.Open(path)
		} else {
			index, err = bleve.New(path, im)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s index: %w", kind, err)
	}

	return &BleveIndex{kind: kind, index: index, logger: logger}, nil
}

// Kind returns the entity kind this index holds.
func (b *BleveIndex) Kind() model.Kind {
	return b.kind
}

func (b *BleveIndex) Upsert(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := indexData(doc)
	if err != nil {
		return err
	}

	if err := b.index.Index(doc.ID, data); err != nil {
		return b.wrap("upsert", err)
	}
	return nil
}

// UpsertAll writes docs in a single batch.
func (b *BleveIndex) UpsertAll(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := b.index.NewBatch()
	for _, doc := range docs {
		data, err := indexData(doc)
		if err != nil {
			return err
		}
		if err := batch.Index(doc.ID, data); err != nil {
			return b.wrap("batch", err)
		}
	}

	if err := b.index.Batch(batch); err != nil {
		return b.wrap("batch", err)
	}
	return nil
}

func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := b.index.Delete(id); err != nil {
		return b.wrap("delete", err)
	}
	return nil
}

// Query runs a query-string search. Blank text matches nothing.
func (b *BleveIndex) Query(ctx context.Context, q Query) ([]Document, error) {
	if strings.TrimSpace(q.Text) == "" {
		return []Document{}, nil
	}

	qsq := bleve.NewQueryStringQuery(q.Text)
	if _, err := qsq.Parse(); err != nil {
		return nil, &errs.SearchQueryError{Kind: b.kind.String(), Query: q.Text, Err: err}
	}

	limit := q.Page.Limit
	if limit <= 0 {
		return []Document{}, nil
	}

	req := bleve.NewSearchRequestOptions(qsq, limit, max(q.Page.Offset, 0), false)
	req.Fields = []string{sourceField}

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, b.wrap("query", err)
	}

	docs := make([]Document, 0, len(res.Hits))
	for _, hit := range res.Hits {
		doc, err := fromSource(hit.ID, hit.Fields[sourceField])
		if err != nil {
			return nil, fmt.Errorf("%s index: %w", b.kind, err)
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// IDs lists every document id in the index.
func (b *BleveIndex) IDs(ctx context.Context) ([]string, error) {
	var ids []string

	for from := 0; ; from += idPageSize {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), idPageSize, from, false)
		res, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, b.wrap("list", err)
		}

		for _, hit := range res.Hits {
			ids = append(ids, hit.ID)
		}

		if len(res.Hits) < idPageSize {
			break
		}
	}

	return ids, nil
}

func (b *BleveIndex) Count(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count, err := b.index.DocCount()
	if err != nil {
		return 0, b.wrap("count", err)
	}
	return count, nil
}

func (b *BleveIndex) Close() error {
	return b.index.Close()
}

func (b *BleveIndex) wrap(op string, err error) error {
	if errors.Is(err, bleve.ErrorIndexClosed) {
		return fmt.Errorf("%s %s: %w", b.kind, op, errs.ErrIndexUnavailable)
	}
	return fmt.Errorf("%s %s: %w", b.kind, op, err)
}

// indexData is the value handed to bleve: the searchable fields plus the
// JSON of the whole document under _source.
func indexData(doc Document) (map[string]any, error) {
	source, err := json.Marshal(doc.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document %s: %w", doc.ID, err)
	}

	data := make(map[string]any, len(doc.Fields)+2)
	for name, value := range doc.Fields {
		data[name] = value
	}
	data[idField] = doc.ID
	data[sourceField] = string(source)

	return data, nil
}

func fromSource(id string, source any) (Document, error) {
	raw, ok := source.(string)
	if !ok {
		return Document{}, fmt.Errorf("document %s has no stored source", id)
	}

	fields := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Document{}, fmt.Errorf("failed to decode document %s: %w", id, err)
	}

	return Document{ID: id, Fields: fields}, nil
}
