package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/deppfellow/pixelmags/internal/config"
	"github.com/deppfellow/pixelmags/internal/database"
	"github.com/deppfellow/pixelmags/internal/errs"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/repository"
	"github.com/deppfellow/pixelmags/internal/search"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServices(t *testing.T) *Services {
	t.Helper()

	logger := zerolog.Nop()
	db, err := database.OpenSQLite(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	indexes, err := search.OpenIndexes(config.SearchConfig{}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = indexes.Close() })

	return NewEntityServices(repository.NewRepositoriesFor(db), indexes, NewLogReporter(&logger, nil), 100)
}

func TestServices_MagazineScenario(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	saved, err := s.Magazines.Create(ctx, &model.Magazine{Code: "AAAAAAAAAA", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	require.NotZero(t, saved.ID)

	found, err := s.Magazines.FindOne(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Code, found.Code)
	assert.True(t, saved.Price.Equal(found.Price))

	query := "id:" + search.FormatID(saved.ID)
	hits, err := s.Magazines.Search(ctx, query, search.Page{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, saved.ID, hits[0].ID)

	found.Price = decimal.NewFromInt(2)
	_, err = s.Magazines.Update(ctx, found)
	require.NoError(t, err)

	hits, err = s.Magazines.Search(ctx, "price:>=2", search.Page{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.True(t, decimal.NewFromInt(2).Equal(hits[0].Price))

	require.NoError(t, s.Magazines.Delete(ctx, saved.ID))
	require.NoError(t, s.Magazines.Delete(ctx, saved.ID))

	hits, err = s.Magazines.Search(ctx, query, search.Page{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestServices_InvalidQuery(t *testing.T) {
	s := newTestServices(t)

	_, err := s.Publishers.Search(context.Background(), "^", search.Page{})

	var queryErr *errs.SearchQueryError
	assert.ErrorAs(t, err, &queryErr)
}

func TestServices_IssueSearchOmitsCover(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	saved, err := s.Issues.Create(ctx, &model.Issue{
		Number:           1,
		Title:            "Launch Edition",
		PublishedAt:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Cover:            []byte{0xFF, 0xD8},
		CoverContentType: "image/jpeg",
	})
	require.NoError(t, err)

	hits, err := s.Issues.Search(ctx, "title:launch", search.Page{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Nil(t, hits[0].Cover)

	full, err := s.Issues.FindOne(ctx, hits[0].ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Cover, full.Cover)
}

func TestServices_Reindex(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.Customers.Create(ctx, &model.Customer{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	results, err := s.Reindex(ctx, model.KindCustomer)
	require.NoError(t, err)
	assert.Equal(t, []ReindexResult{{Kind: model.KindCustomer, Indexed: 1}}, results)

	results, err = s.Reindex(ctx)
	require.NoError(t, err)
	assert.Len(t, results, len(model.Kinds))

	_, err = s.Reindex(ctx, model.Kind("newspaper"))
	assert.ErrorContains(t, err, "unknown kind")
}

func TestServices_MaintainerForEveryKind(t *testing.T) {
	s := newTestServices(t)

	for _, kind := range model.Kinds {
		m, ok := s.Maintainer(kind)
		require.True(t, ok, kind)
		assert.Equal(t, kind, m.Kind())
	}
}

func TestServices_SearchByKind(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	saved, err := s.Publishers.Create(ctx, &model.Publisher{Name: "Pixel Press", RegisteredAt: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	for _, kind := range model.Kinds {
		_, err := s.Search(ctx, kind, "id:1", search.Page{})
		require.NoError(t, err, kind)
	}

	result, err := s.Search(ctx, model.KindPublisher, "id:"+search.FormatID(saved.ID), search.Page{})
	require.NoError(t, err)
	publishers, ok := result.([]*model.Publisher)
	require.True(t, ok)
	require.Len(t, publishers, 1)
	assert.Equal(t, "Pixel Press", publishers[0].Name)

	_, err = s.Search(ctx, model.Kind("newspaper"), "id:1", search.Page{})
	assert.ErrorContains(t, err, "unknown kind")
}

func TestLogReporter_Logs(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	NewLogReporter(&logger, nil).ReportSyncFailure(context.Background(), &errs.IndexSyncWarning{
		Kind: "magazine", ID: 3, Op: errs.SyncOpDelete, Err: errIndexDown,
	})

	assert.Contains(t, buf.String(), `"kind":"magazine"`)
	assert.Contains(t, buf.String(), `"op":"delete"`)
	assert.Contains(t, buf.String(), "index down")
}

func TestReporters_FanOut(t *testing.T) {
	a, b := &recordingReporter{}, &recordingReporter{}
	warning := &errs.IndexSyncWarning{Kind: "log", ID: 1, Op: errs.SyncOpUpsert, Err: errIndexDown}

	Reporters{a, b}.ReportSyncFailure(context.Background(), warning)

	assert.Equal(t, []*errs.IndexSyncWarning{warning}, a.warnings)
	assert.Equal(t, []*errs.IndexSyncWarning{warning}, b.warnings)
}
