// Package sqlerr handles database driver errors.
//
// It parses error codes from the Postgres (pgx) and SQLite (go-sqlite3)
// drivers and converts them into user-friendly API errors, e.g. a
// foreign key violation becomes a "Bad Request" naming the missing entity.
package sqlerr
