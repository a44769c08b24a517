package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/deppfellow/pixelmags/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// executor runs the store's SQL against one driver. Queries are written
// with "?" placeholders; executors rebind them when the driver needs to.
type executor interface {
	queryRow(ctx context.Context, query string, args ...any) rowScanner
	query(ctx context.Context, query string, args []any, each func(rowScanner) error) error
	exec(ctx context.Context, query string, args ...any) (int64, error)
	isNoRows(err error) bool
}

func newExecutor(db *database.Database) executor {
	if db.SQL != nil {
		return sqlExecutor{db: db.SQL}
	}
	return pgxExecutor{pool: db.Pool}
}

type pgxExecutor struct {
	pool *pgxpool.Pool
}

func (e pgxExecutor) queryRow(ctx context.Context, query string, args ...any) rowScanner {
	return e.pool.QueryRow(ctx, rebindDollar(query), args...)
}

func (e pgxExecutor) query(ctx context.Context, query string, args []any, each func(rowScanner) error) error {
	rows, err := e.pool.Query(ctx, rebindDollar(query), args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := each(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (e pgxExecutor) exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := e.pool.Exec(ctx, rebindDollar(query), args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (e pgxExecutor) isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

type sqlExecutor struct {
	db *sql.DB
}

func (e sqlExecutor) queryRow(ctx context.Context, query string, args ...any) rowScanner {
	return e.db.QueryRowContext(ctx, query, args...)
}

func (e sqlExecutor) query(ctx context.Context, query string, args []any, each func(rowScanner) error) error {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := each(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (e sqlExecutor) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (e sqlExecutor) isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// rebindDollar turns "?" placeholders into Postgres "$n" ones.
func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
