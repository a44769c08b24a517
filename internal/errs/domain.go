package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrIndexUnavailable is wrapped by search index adapters when the backend
// cannot serve a request at all (closed, unreachable).
var ErrIndexUnavailable = errors.New("search index unavailable")

// NotFoundError reports that no record of Kind exists with ID.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// ConflictError reports a create request that already carries an identifier.
type ConflictError struct {
	Kind string
	ID   int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a new %s cannot already have an id (got %d)", e.Kind, e.ID)
}

// SearchQueryError reports query text the search backend rejected as malformed.
type SearchQueryError struct {
	Kind  string
	Query string
	Err   error
}

func (e *SearchQueryError) Error() string {
	return fmt.Sprintf("invalid %s search query %q: %v", e.Kind, e.Query, e.Err)
}

func (e *SearchQueryError) Unwrap() error {
	return e.Err
}

// SyncOp is the index operation that was being mirrored.
type SyncOp string

const (
	SyncOpUpsert SyncOp = "upsert"
	SyncOpDelete SyncOp = "delete"
)

// IndexSyncWarning records an index write that failed after the store write
// committed. It is reported and logged, never returned to API callers.
type IndexSyncWarning struct {
	Kind string
	ID   int64
	Op   SyncOp
	Err  error
}

func (w *IndexSyncWarning) Error() string {
	return fmt.Sprintf("index %s of %s %d failed: %v", w.Op, w.Kind, w.ID, w.Err)
}

func (w *IndexSyncWarning) Unwrap() error {
	return w.Err
}

// ToHTTPError maps the domain errors of this package to their API response.
// The second result is false when err is not a domain error.
func ToHTTPError(err error) (*HTTPError, bool) {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		code := MakeUpperCaseWithUnderscores(notFound.Kind) + "_NOT_FOUND"
		return NewNotFoundError(notFound.Error(), true, &code), true
	}

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		code := "ID_EXISTS"
		return NewBadRequestError(conflict.Error(), true, &code, []FieldError{
			{Field: "id", Error: "must be empty"},
		}, nil), true
	}

	var queryErr *SearchQueryError
	if errors.As(err, &queryErr) {
		code := "INVALID_QUERY"
		return NewBadRequestError(queryErr.Error(), true, &code, []FieldError{
			{Field: "query", Error: queryErr.Err.Error()},
		}, nil), true
	}

	if errors.Is(err, ErrIndexUnavailable) {
		return NewServiceUnavailableError("Search is temporarily unavailable"), true
	}

	return nil, false
}

// StatusOf returns the HTTP status an error maps to, for logging and metrics.
func StatusOf(err error) int {
	if httpErr, ok := ToHTTPError(err); ok {
		return httpErr.Status
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}

	return http.StatusInternalServerError
}
