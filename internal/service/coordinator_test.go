package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/deppfellow/pixelmags/internal/errs"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/search"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type coordinatorFixture struct {
	store    *memStore
	index    *flakyIndex
	reporter *recordingReporter
	svc      *EntityService[*model.Magazine]
}

func newCoordinatorFixture(t *testing.T) *coordinatorFixture {
	t.Helper()

	logger := zerolog.Nop()
	bleveIndex, err := search.OpenBleveIndex("", model.KindMagazine, search.Schemas[model.KindMagazine], &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bleveIndex.Close() })

	f := &coordinatorFixture{
		store:    newMemStore(),
		index:    &flakyIndex{Index: bleveIndex},
		reporter: &recordingReporter{},
	}
	f.svc = NewEntityService[*model.Magazine](f.store, f.index, search.MagazineMapper, f.reporter, 50)

	return f
}

// afterSnapshot rebuilds the service so that hook runs once Reindex has read
// its store snapshot.
func (f *coordinatorFixture) afterSnapshot(hook func()) {
	store := &hookStore{memStore: f.store, afterFindAll: hook}
	f.svc = NewEntityService[*model.Magazine](store, f.index, search.MagazineMapper, f.reporter, 50)
}

// writeElsewhere applies a committed write the way another process would:
// straight to the store and the index, without this service.
func (f *coordinatorFixture) writeElsewhere(t *testing.T, m *model.Magazine) *model.Magazine {
	t.Helper()
	ctx := context.Background()

	var (
		saved *model.Magazine
		err   error
	)
	if m.ID == 0 {
		saved, err = f.store.Insert(ctx, m)
	} else {
		saved, err = f.store.Update(ctx, m)
	}
	require.NoError(t, err)
	require.NoError(t, f.index.Index.Upsert(ctx, search.MagazineMapper.ToDocument(saved)))
	return saved
}

func (f *coordinatorFixture) searchIDs(t *testing.T, text string) []int64 {
	t.Helper()

	found, err := f.svc.Search(context.Background(), text, search.Page{})
	require.NoError(t, err)

	out := make([]int64, 0, len(found))
	for _, m := range found {
		out = append(out, m.ID)
	}
	return out
}

func magazine(code string, price int64) *model.Magazine {
	return &model.Magazine{Code: code, Price: decimal.NewFromInt(price)}
}

func TestCreate_SavesAndIndexes(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Create(ctx, magazine("AAAAAAAAAA", 1))
	require.NoError(t, err)
	require.NotZero(t, saved.ID)
	assert.Equal(t, "AAAAAAAAAA", saved.Code)
	assert.True(t, decimal.NewFromInt(1).Equal(saved.Price))

	all, err := f.svc.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, saved.ID, all[0].ID)

	found, err := f.svc.FindOne(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, found)

	assert.Equal(t, []int64{saved.ID}, f.searchIDs(t, "id:"+search.FormatID(saved.ID)))
	assert.Empty(t, f.reporter.warnings)
}

func TestCreate_WithIDConflictsBeforeStore(t *testing.T) {
	f := newCoordinatorFixture(t)

	m := magazine("AAAAAAAAAA", 1)
	m.ID = 7

	_, err := f.svc.Create(context.Background(), m)

	var conflict *errs.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(7), conflict.ID)
	assert.Empty(t, f.store.calls)
	assert.Empty(t, f.index.calls)
}

func TestUpdate_RequiresID(t *testing.T) {
	f := newCoordinatorFixture(t)

	_, err := f.svc.Update(context.Background(), magazine("AAA", 1))

	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, f.store.calls)
}

func TestUpdate_UnknownID(t *testing.T) {
	f := newCoordinatorFixture(t)

	m := magazine("AAA", 1)
	m.ID = 99
	_, err := f.svc.Update(context.Background(), m)

	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, f.index.calls)
}

func TestSave_UpdatesInPlace(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Save(ctx, magazine("AAAAAAAAAA", 1))
	require.NoError(t, err)

	saved.Price = decimal.NewFromInt(2)
	updated, err := f.svc.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)

	found, err := f.svc.FindOne(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2).Equal(found.Price))

	hits, err := f.svc.Search(ctx, "id:"+search.FormatID(saved.ID), search.Page{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.True(t, decimal.NewFromInt(2).Equal(hits[0].Price))

	count, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSave_StoreWriteComesFirst(t *testing.T) {
	f := newCoordinatorFixture(t)

	saved, err := f.svc.Save(context.Background(), magazine("AAA", 1))
	require.NoError(t, err)

	assert.Equal(t, []string{"insert"}, f.store.calls)
	assert.Equal(t, []string{"upsert:" + search.FormatID(saved.ID)}, f.index.calls)
}

func TestSave_StoreFailureSkipsIndex(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.store.failAll = errors.New("disk full")

	_, err := f.svc.Save(context.Background(), magazine("AAA", 1))
	assert.EqualError(t, err, "disk full")
	assert.Empty(t, f.index.calls)
	assert.Empty(t, f.reporter.warnings)
}

func TestSave_IndexFailureIsReportedNotReturned(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.index.failWrites = true
	ctx := context.Background()

	saved, err := f.svc.Save(ctx, magazine("AAA", 1))
	require.NoError(t, err)

	found, err := f.svc.FindOne(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "AAA", found.Code)

	require.Len(t, f.reporter.warnings, 1)
	warning := f.reporter.warnings[0]
	assert.Equal(t, "magazine", warning.Kind)
	assert.Equal(t, saved.ID, warning.ID)
	assert.Equal(t, errs.SyncOpUpsert, warning.Op)
	assert.ErrorIs(t, warning, errIndexDown)
}

func TestDelete_RemovesFromStoreAndIndex(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Save(ctx, magazine("AAA", 1))
	require.NoError(t, err)
	query := "id:" + search.FormatID(saved.ID)
	require.Len(t, f.searchIDs(t, query), 1)

	require.NoError(t, f.svc.Delete(ctx, saved.ID))

	_, err = f.svc.FindOne(ctx, saved.ID)
	var notFound *errs.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Empty(t, f.searchIDs(t, query))

	require.NoError(t, f.svc.Delete(ctx, saved.ID))
}

func TestDelete_UnknownIDStillClearsIndex(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	_, err := f.svc.Save(ctx, magazine("AAA", 1))
	require.NoError(t, err)
	f.index.calls = nil

	require.NoError(t, f.svc.Delete(ctx, 404))

	count, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, []string{"delete:404"}, f.index.calls)
}

func TestDelete_IndexFailureIsReported(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Save(ctx, magazine("AAA", 1))
	require.NoError(t, err)

	f.index.failWrites = true
	require.NoError(t, f.svc.Delete(ctx, saved.ID))

	require.Len(t, f.reporter.warnings, 1)
	assert.Equal(t, errs.SyncOpDelete, f.reporter.warnings[0].Op)
}

func TestDelete_StoreFailureSkipsIndex(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.store.failAll = errors.New("connection reset")

	err := f.svc.Delete(context.Background(), 1)
	assert.EqualError(t, err, "connection reset")
	assert.Empty(t, f.index.calls)
}

func TestResync_ConvergesToStore(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	f.index.failWrites = true
	saved, err := f.svc.Save(ctx, magazine("AAA", 1))
	require.NoError(t, err)
	f.index.failWrites = false

	query := "id:" + search.FormatID(saved.ID)
	assert.Empty(t, f.searchIDs(t, query))

	require.NoError(t, f.svc.Resync(ctx, saved.ID))
	assert.Equal(t, []int64{saved.ID}, f.searchIDs(t, query))

	f.index.failWrites = true
	require.NoError(t, f.svc.Delete(ctx, saved.ID))
	f.index.failWrites = false
	assert.Equal(t, []int64{saved.ID}, f.searchIDs(t, query))

	require.NoError(t, f.svc.Resync(ctx, saved.ID))
	assert.Empty(t, f.searchIDs(t, query))
}

func TestResync_IndexFailureIsReturned(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Save(ctx, magazine("AAA", 1))
	require.NoError(t, err)

	f.index.failWrites = true
	assert.ErrorIs(t, f.svc.Resync(ctx, saved.ID), errIndexDown)
}

func TestReindex_RepairsDrift(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	kept, err := f.svc.Save(ctx, magazine("KEPT", 1))
	require.NoError(t, err)

	f.index.failWrites = true
	missing, err := f.svc.Save(ctx, magazine("MISSING", 1))
	require.NoError(t, err)
	f.index.failWrites = false

	dangling, err := f.svc.Save(ctx, magazine("DANGLING", 1))
	require.NoError(t, err)
	f.index.failWrites = true
	require.NoError(t, f.svc.Delete(ctx, dangling.ID))
	f.index.failWrites = false

	result, err := f.svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReindexResult{Kind: model.KindMagazine, Indexed: 2, Removed: 1}, result)

	assert.Equal(t, []int64{kept.ID}, f.searchIDs(t, "code:KEPT"))
	assert.Equal(t, []int64{missing.ID}, f.searchIDs(t, "code:MISSING"))
	assert.Empty(t, f.searchIDs(t, "code:DANGLING"))
}

func TestReindex_RecordDeletedElsewhereAfterSnapshot(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Save(ctx, magazine("GONE", 1))
	require.NoError(t, err)

	f.afterSnapshot(func() {
		_, err := f.store.DeleteByID(ctx, saved.ID)
		require.NoError(t, err)
		require.NoError(t, f.index.Index.Delete(ctx, search.FormatID(saved.ID)))
	})

	result, err := f.svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReindexResult{Kind: model.KindMagazine, Indexed: 0, Removed: 1}, result)

	_, err = f.svc.FindOne(ctx, saved.ID)
	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, f.searchIDs(t, "id:"+search.FormatID(saved.ID)))
}

func TestReindex_RecordCreatedElsewhereAfterSnapshot(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	var created *model.Magazine
	f.afterSnapshot(func() {
		created = f.writeElsewhere(t, magazine("LATE", 3))
	})

	result, err := f.svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReindexResult{Kind: model.KindMagazine, Indexed: 1, Removed: 0}, result)

	require.NotNil(t, created)
	assert.Equal(t, []int64{created.ID}, f.searchIDs(t, "id:"+search.FormatID(created.ID)))
}

func TestReindex_RecordUpdatedElsewhereAfterSnapshot(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Save(ctx, magazine("OLD", 1))
	require.NoError(t, err)

	f.afterSnapshot(func() {
		changed := *saved
		changed.Code = "NEW"
		f.writeElsewhere(t, &changed)
	})

	result, err := f.svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReindexResult{Kind: model.KindMagazine, Indexed: 1, Removed: 0}, result)

	assert.Equal(t, []int64{saved.ID}, f.searchIDs(t, "code:NEW"))
	assert.Empty(t, f.searchIDs(t, "code:OLD"))
}

func TestReindex_WritesDuringReindexStayConsistent(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	doomed, err := f.svc.Save(ctx, magazine("DOOMED", 1))
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		created *model.Magazine
		results = make(chan error, 2)
	)
	f.afterSnapshot(func() {
		wg.Add(2)
		go func() {
			defer wg.Done()
			results <- f.svc.Delete(ctx, doomed.ID)
		}()
		go func() {
			defer wg.Done()
			m, err := f.svc.Create(ctx, magazine("FRESH", 2))
			created = m
			results <- err
		}()
	})

	_, err = f.svc.Reindex(ctx)
	require.NoError(t, err)

	wg.Wait()
	close(results)
	for err := range results {
		require.NoError(t, err)
	}

	assert.Empty(t, f.searchIDs(t, "id:"+search.FormatID(doomed.ID)))
	require.NotNil(t, created)
	assert.Equal(t, []int64{created.ID}, f.searchIDs(t, "id:"+search.FormatID(created.ID)))
}

// Whatever the interleaving of index failures, once the index has been
// resynced search never returns an id the store does not know.
func TestOrderingInvariant(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	var ids []int64
	for i, fail := range []bool{false, true, false, true, false} {
		f.index.failWrites = fail
		saved, err := f.svc.Save(ctx, magazine("MAG", int64(i)))
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}
	for i, id := range ids {
		f.index.failWrites = i%2 == 0
		require.NoError(t, f.svc.Delete(ctx, id))
		if i == 2 {
			break
		}
	}
	f.index.failWrites = false

	for _, w := range f.reporter.warnings {
		require.NoError(t, f.svc.Resync(ctx, w.ID))
	}

	for _, id := range f.searchIDs(t, "code:MAG") {
		_, err := f.svc.FindOne(ctx, id)
		assert.NoError(t, err, "search returned id %d missing from the store", id)
	}
	assert.Len(t, f.searchIDs(t, "code:MAG"), 2)
}

func TestFindAllWhere_DelegatesToStore(t *testing.T) {
	f := newCoordinatorFixture(t)

	_, err := f.svc.FindAllWhere(context.Background(), "publisher-is-null")

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Status)
}
