package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/deppfellow/pixelmags/internal/errs"
	"github.com/deppfellow/pixelmags/internal/model"
)

// Table describes how one entity kind maps onto its SQL table.
type Table[R model.Record] struct {
	Name string
	Kind model.Kind

	// Columns excludes the id column, which is always first when scanning.
	Columns []string

	// Defaults holds SQL expressions used when the bound value is NULL.
	Defaults map[string]string

	// Filters maps a filter name to a WHERE fragment for FindAllWhere.
	Filters map[string]string

	New func() R

	// Values returns the column values of a record, in Columns order.
	Values func(record R) []any

	// Targets returns scan destinations for Columns, in order.
	Targets func(record R) []any
}

// Store is the SQL EntityStore shared by every kind.
type Store[R model.Record] struct {
	table Table[R]
	db    executor

	selectSQL string
	insertSQL string
	updateSQL string
}

// NewStore prepares the statements for table.
func NewStore[R model.Record](db executor, table Table[R]) *Store[R] {
	columns := strings.Join(table.Columns, ", ")

	placeholders := make([]string, len(table.Columns))
	assignments := make([]string, len(table.Columns))
	for i, column := range table.Columns {
		placeholder := "?"
		if expr, ok := table.Defaults[column]; ok {
			placeholder = fmt.Sprintf("COALESCE(?, %s)", expr)
		}
		placeholders[i] = placeholder
		assignments[i] = column + " = " + placeholder
	}

	return &Store[R]{
		table:     table,
		db:        db,
		selectSQL: fmt.Sprintf("SELECT id, %s FROM %s", columns, table.Name),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
			table.Name, columns, strings.Join(placeholders, ", ")),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE id = ?",
			table.Name, strings.Join(assignments, ", ")),
	}
}

func (s *Store[R]) kind() string {
	return string(s.table.Kind)
}

func (s *Store[R]) scan(row rowScanner) (R, error) {
	record := s.table.New()
	var id int64
	targets := append([]any{&id}, s.table.Targets(record)...)
	if err := row.Scan(targets...); err != nil {
		return record, err
	}
	record.SetID(id)
	return record, nil
}

// Insert stores a new record and returns the persisted row.
func (s *Store[R]) Insert(ctx context.Context, record R) (R, error) {
	var zero R
	if id := record.GetID(); id != 0 {
		return zero, &errs.ConflictError{Kind: s.kind(), ID: id}
	}

	var id int64
	if err := s.db.queryRow(ctx, s.insertSQL, s.table.Values(record)...).Scan(&id); err != nil {
		return zero, fmt.Errorf("insert %s: %w", s.kind(), err)
	}

	return s.FindByID(ctx, id)
}

// Update overwrites an existing record and returns the persisted row.
func (s *Store[R]) Update(ctx context.Context, record R) (R, error) {
	var zero R
	id := record.GetID()

	args := append(s.table.Values(record), id)
	affected, err := s.db.exec(ctx, s.updateSQL, args...)
	if err != nil {
		return zero, fmt.Errorf("update %s %d: %w", s.kind(), id, err)
	}
	if affected == 0 {
		return zero, &errs.NotFoundError{Kind: s.kind(), ID: id}
	}

	return s.FindByID(ctx, id)
}

// FindByID returns the record with id or *errs.NotFoundError.
func (s *Store[R]) FindByID(ctx context.Context, id int64) (R, error) {
	record, err := s.scan(s.db.queryRow(ctx, s.selectSQL+" WHERE id = ?", id))
	if err != nil {
		var zero R
		if s.db.isNoRows(err) {
			return zero, &errs.NotFoundError{Kind: s.kind(), ID: id}
		}
		return zero, fmt.Errorf("find %s %d: %w", s.kind(), id, err)
	}
	return record, nil
}

// FindAll returns every record ordered by id.
func (s *Store[R]) FindAll(ctx context.Context) ([]R, error) {
	return s.list(ctx, s.selectSQL+" ORDER BY id")
}

// FindAllWhere returns the records matching a named filter, ordered by id.
func (s *Store[R]) FindAllWhere(ctx context.Context, filter string) ([]R, error) {
	where, ok := s.table.Filters[filter]
	if !ok {
		return nil, errs.NewBadRequestError(
			fmt.Sprintf("unknown %s filter %q", s.kind(), filter), true, nil,
			[]errs.FieldError{{Field: "filter", Error: "is not supported"}}, nil)
	}
	return s.list(ctx, s.selectSQL+" WHERE "+where+" ORDER BY id")
}

func (s *Store[R]) list(ctx context.Context, query string) ([]R, error) {
	records := []R{}
	err := s.db.query(ctx, query, nil, func(row rowScanner) error {
		record, err := s.scan(row)
		if err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind(), err)
	}
	return records, nil
}

// DeleteByID removes the record with id and reports whether it existed.
func (s *Store[R]) DeleteByID(ctx context.Context, id int64) (bool, error) {
	affected, err := s.db.exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.table.Name), id)
	if err != nil {
		return false, fmt.Errorf("delete %s %d: %w", s.kind(), id, err)
	}
	return affected > 0, nil
}

// Count returns the number of stored records.
func (s *Store[R]) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.queryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table.Name)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.kind(), err)
	}
	return count, nil
}

// Filters lists the filter names FindAllWhere accepts.
func (s *Store[R]) Filters() []string {
	names := make([]string, 0, len(s.table.Filters))
	for name := range s.table.Filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
