// Package errs defines the application's error types.
//
// It holds two families of errors:
//   - domain errors raised by the stores, the sync coordinator and the query
//     service (NotFoundError, ConflictError, SearchQueryError, IndexSyncWarning);
//   - HTTPError, the consistent JSON shape returned to API clients.
//
// ToHTTPError bridges the two so handlers never build responses by hand.
package errs
