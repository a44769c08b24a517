// Package handler is the HTTP layer between the router and the services.
//
// Every endpoint goes through the same typed pipeline (Handle): a fresh
// request value is bound from path, query and body, validated, passed to
// the service and written back as JSON. Entity kinds share one generic
// EntityHandler; errors are left to the global error handler.
package handler
