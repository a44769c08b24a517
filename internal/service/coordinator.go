package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/deppfellow/pixelmags/internal/errs"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/repository"
	"github.com/deppfellow/pixelmags/internal/search"
)

// SyncCoordinator writes records of one kind to the entity store and mirrors
// every committed change into the search index.
//
// The store is authoritative: a store failure aborts the operation before the
// index is touched. An index failure after a committed store write is handed
// to the SyncReporter and never returned to the caller.
//
// Writes of one kind run concurrently with each other but never alongside a
// Reindex of that kind.
type SyncCoordinator[R model.Record] struct {
	mu sync.RWMutex

	kind     model.Kind
	store    repository.EntityStore[R]
	index    search.Index
	mapper   search.Mapper[R]
	reporter SyncReporter
}

func NewSyncCoordinator[R model.Record](
	store repository.EntityStore[R],
	index search.Index,
	mapper search.Mapper[R],
	reporter SyncReporter,
) *SyncCoordinator[R] {
	return &SyncCoordinator[R]{
		kind:     mapper.Kind(),
		store:    store,
		index:    index,
		mapper:   mapper,
		reporter: reporter,
	}
}

func (c *SyncCoordinator[R]) Kind() model.Kind {
	return c.kind
}

// Save inserts a record without an id and updates one that has an id. It
// returns the stored record, including store-generated values.
func (c *SyncCoordinator[R]) Save(ctx context.Context, record R) (R, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var (
		saved R
		err   error
	)

	if record.GetID() == 0 {
		saved, err = c.store.Insert(ctx, record)
	} else {
		saved, err = c.store.Update(ctx, record)
	}
	if err != nil {
		var zero R
		return zero, err
	}

	c.mirror(ctx, saved)

	return saved, nil
}

// Create saves a new record. A record that already carries an id is rejected
// without touching the store.
func (c *SyncCoordinator[R]) Create(ctx context.Context, record R) (R, error) {
	if id := record.GetID(); id != 0 {
		var zero R
		return zero, &errs.ConflictError{Kind: c.kind.String(), ID: id}
	}
	return c.Save(ctx, record)
}

// Update saves an existing record in place.
func (c *SyncCoordinator[R]) Update(ctx context.Context, record R) (R, error) {
	if record.GetID() == 0 {
		var zero R
		return zero, &errs.NotFoundError{Kind: c.kind.String()}
	}
	return c.Save(ctx, record)
}

func (c *SyncCoordinator[R]) FindAll(ctx context.Context) ([]R, error) {
	return c.store.FindAll(ctx)
}

// FindAllWhere lists the records matching a named relationship filter.
func (c *SyncCoordinator[R]) FindAllWhere(ctx context.Context, filter string) ([]R, error) {
	return c.store.FindAllWhere(ctx, filter)
}

func (c *SyncCoordinator[R]) FindOne(ctx context.Context, id int64) (R, error) {
	return c.store.FindByID(ctx, id)
}

// Delete removes the record from the store and then its document from the
// index. Deleting an unknown id succeeds.
func (c *SyncCoordinator[R]) Delete(ctx context.Context, id int64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.store.DeleteByID(ctx, id); err != nil {
		return err
	}

	if err := c.index.Delete(ctx, search.FormatID(id)); err != nil {
		c.report(ctx, id, errs.SyncOpDelete, err)
	}

	return nil
}

// Resync converges the index entry for id to the current store state.
func (c *SyncCoordinator[R]) Resync(ctx context.Context, id int64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, _, err := c.converge(ctx, id, nil)
	return err
}

// converge re-reads id from the store and makes its index entry match: the
// document is deleted when the record is gone and upserted otherwise. An
// upsert is skipped when the current projection equals indexed. It reports
// whether a document was written and whether one was removed.
func (c *SyncCoordinator[R]) converge(ctx context.Context, id int64, indexed *search.Document) (bool, bool, error) {
	record, err := c.store.FindByID(ctx, id)

	var notFound *errs.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return false, true, c.index.Delete(ctx, search.FormatID(id))
	case err != nil:
		return false, false, err
	}

	doc := c.mapper.ToDocument(record)
	if indexed != nil && reflect.DeepEqual(indexed.Fields, doc.Fields) {
		return false, false, nil
	}
	return true, false, c.index.Upsert(ctx, doc)
}

// ReindexResult summarizes a full rebuild of one index.
type ReindexResult struct {
	Kind    model.Kind `json:"kind"`
	Indexed int        `json:"indexed"`
	Removed int        `json:"removed"`
}

// Reindex writes every stored record to the index and removes documents
// whose record no longer exists.
//
// The store snapshot only seeds the batch. Every document id found in the
// index afterwards is checked against the store again, so records written
// by another process while the batch ran are kept or removed by their
// current state.
func (c *SyncCoordinator[R]) Reindex(ctx context.Context) (ReindexResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := ReindexResult{Kind: c.kind}

	records, err := c.store.FindAll(ctx)
	if err != nil {
		return result, fmt.Errorf("reindex %s: %w", c.kind, err)
	}

	docs := make([]search.Document, 0, len(records))
	snapshot := make(map[string]int, len(records))
	for _, record := range records {
		doc := c.mapper.ToDocument(record)
		snapshot[doc.ID] = len(docs)
		docs = append(docs, doc)
	}

	if err := c.index.UpsertAll(ctx, docs); err != nil {
		return result, fmt.Errorf("reindex %s: %w", c.kind, err)
	}
	result.Indexed = len(docs)

	ids, err := c.index.IDs(ctx)
	if err != nil {
		return result, fmt.Errorf("reindex %s: %w", c.kind, err)
	}

	for _, docID := range ids {
		id, err := search.ParseID(docID)
		if err != nil {
			if err := c.index.Delete(ctx, docID); err != nil {
				return result, fmt.Errorf("reindex %s: %w", c.kind, err)
			}
			result.Removed++
			continue
		}

		var indexed *search.Document
		pos, seen := snapshot[docID]
		if seen {
			indexed = &docs[pos]
		}

		written, removed, err := c.converge(ctx, id, indexed)
		if err != nil {
			return result, fmt.Errorf("reindex %s: %w", c.kind, err)
		}
		switch {
		case removed:
			result.Removed++
			if seen {
				result.Indexed--
			}
		case written && !seen:
			result.Indexed++
		}
	}

	return result, nil
}

func (c *SyncCoordinator[R]) mirror(ctx context.Context, record R) {
	if err := c.index.Upsert(ctx, c.mapper.ToDocument(record)); err != nil {
		c.report(ctx, record.GetID(), errs.SyncOpUpsert, err)
	}
}

func (c *SyncCoordinator[R]) report(ctx context.Context, id int64, op errs.SyncOp, err error) {
	if c.reporter == nil {
		return
	}
	c.reporter.ReportSyncFailure(ctx, &errs.IndexSyncWarning{
		Kind: c.kind.String(),
		ID:   id,
		Op:   op,
		Err:  err,
	})
}
