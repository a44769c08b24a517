// Package search mirrors entity records into full-text indexes.
//
// Each entity kind has its own index holding one Document per record, keyed
// by the record id. A Mapper projects records into documents and back; the
// Index adapter stores them (bleve) and answers query-string searches.
package search

import (
	"context"
)

// Document is the index projection of a record. Field values are JSON-native
// (string, float64); absent optional values are omitted.
type Document struct {
	ID     string
	Fields map[string]any
}

// Page selects a window of ranked hits.
type Page struct {
	Offset int
	Limit  int
}

const (
	// MaxPage is the highest zero-based page number that can be requested.
	MaxPage = 10000
	// MaxPageSize bounds the hits requested per page.
	MaxPageSize = 1000
)

// PageAt returns the window of a zero-based page holding size hits. page is
// clamped to [0, MaxPage] and size to [1, MaxPageSize], which keeps the
// offset well inside int.
func PageAt(page, size int) Page {
	page = min(max(page, 0), MaxPage)
	size = min(max(size, 1), MaxPageSize)
	return Page{Offset: page * size, Limit: size}
}

// Query is a query-string search over one index.
type Query struct {
	Text string
	Page Page
}

// Index is the search backend for one entity kind.
//
// Upsert and Delete are idempotent. Query returns documents in relevance
// order and fails with *errs.SearchQueryError for malformed query text.
type Index interface {
	Upsert(ctx context.Context, doc Document) error
	UpsertAll(ctx context.Context, docs []Document) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, q Query) ([]Document, error)
	IDs(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (uint64, error)
}
