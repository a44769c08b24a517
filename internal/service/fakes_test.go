package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/deppfellow/pixelmags/internal/errs"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/search"
)

// memStore is an in-memory EntityStore for magazines that records calls.
type memStore struct {
	mu      sync.Mutex
	rows    map[int64]model.Magazine
	nextID  int64
	calls   []string
	failAll error
}

func newMemStore() *memStore {
	return &memStore{rows: map[int64]model.Magazine{}}
}

func (s *memStore) record(call string) error {
	s.calls = append(s.calls, call)
	return s.failAll
}

func (s *memStore) Insert(_ context.Context, m *model.Magazine) (*model.Magazine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("insert"); err != nil {
		return nil, err
	}
	if m.ID != 0 {
		return nil, &errs.ConflictError{Kind: "magazine", ID: m.ID}
	}
	s.nextID++
	row := *m
	row.ID = s.nextID
	s.rows[row.ID] = row
	return &row, nil
}

func (s *memStore) Update(_ context.Context, m *model.Magazine) (*model.Magazine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("update"); err != nil {
		return nil, err
	}
	if _, ok := s.rows[m.ID]; !ok {
		return nil, &errs.NotFoundError{Kind: "magazine", ID: m.ID}
	}
	row := *m
	s.rows[row.ID] = row
	return &row, nil
}

func (s *memStore) FindByID(_ context.Context, id int64) (*model.Magazine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("find"); err != nil {
		return nil, err
	}
	row, ok := s.rows[id]
	if !ok {
		return nil, &errs.NotFoundError{Kind: "magazine", ID: id}
	}
	return &row, nil
}

func (s *memStore) FindAll(_ context.Context) ([]*model.Magazine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("findAll"); err != nil {
		return nil, err
	}
	out := make([]*model.Magazine, 0, len(s.rows))
	for _, row := range s.rows {
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) FindAllWhere(ctx context.Context, filter string) ([]*model.Magazine, error) {
	return nil, errs.NewBadRequestError("unknown filter "+filter, true, nil, nil, nil)
}

func (s *memStore) DeleteByID(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("delete"); err != nil {
		return false, err
	}
	_, ok := s.rows[id]
	delete(s.rows, id)
	return ok, nil
}

func (s *memStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.rows)), nil
}

// flakyIndex wraps a real index and fails writes on demand.
type flakyIndex struct {
	search.Index
	failWrites bool

	mu    sync.Mutex
	calls []string
}

func (f *flakyIndex) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

var errIndexDown = errors.New("index down")

func (f *flakyIndex) Upsert(ctx context.Context, doc search.Document) error {
	f.record("upsert:" + doc.ID)
	if f.failWrites {
		return errIndexDown
	}
	return f.Index.Upsert(ctx, doc)
}

func (f *flakyIndex) Delete(ctx context.Context, id string) error {
	f.record("delete:" + id)
	if f.failWrites {
		return errIndexDown
	}
	return f.Index.Delete(ctx, id)
}

func (f *flakyIndex) Query(ctx context.Context, q search.Query) ([]search.Document, error) {
	f.record("query")
	return f.Index.Query(ctx, q)
}

// recordingReporter keeps every reported warning.
type recordingReporter struct {
	mu       sync.Mutex
	warnings []*errs.IndexSyncWarning
}

func (r *recordingReporter) ReportSyncFailure(_ context.Context, w *errs.IndexSyncWarning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, w)
}

// hookStore runs afterFindAll once, right after the first FindAll returns
// its snapshot.
type hookStore struct {
	*memStore
	afterFindAll func()
}

func (s *hookStore) FindAll(ctx context.Context) ([]*model.Magazine, error) {
	out, err := s.memStore.FindAll(ctx)
	if hook := s.afterFindAll; hook != nil {
		s.afterFindAll = nil
		hook()
	}
	return out, err
}
