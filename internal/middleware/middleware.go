// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns such as
// authentication (via Clerk), request ids and logging, tracing, CORS,
// rate limiting, panic recovery and the translation of errors into
// HTTP responses.
package middleware
