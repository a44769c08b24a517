// Package lib holds supporting code that does not belong to a single layer:
// the asynq worker that retries failed search index writes, the Resend
// email client used for sync failure alerts, and small output helpers.
package lib
