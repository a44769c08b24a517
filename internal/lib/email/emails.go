package email

import (
	"fmt"
	"strconv"
)

// SyncFailureAlert describes a record whose index entry could not be repaired.
type SyncFailureAlert struct {
	Kind     string
	ID       string
	Op       string
	Attempts int
	Reason   string
}

func (a SyncFailureAlert) data() map[string]string {
	return map[string]string{
		"Kind":     a.Kind,
		"ID":       a.ID,
		"Op":       a.Op,
		"Attempts": strconv.Itoa(a.Attempts),
		"Reason":   a.Reason,
	}
}

// SendSyncFailureAlert tells an operator that the search index is out of
// sync for one record and needs a reindex.
func (c *Client) SendSyncFailureAlert(to string, alert SyncFailureAlert) error {
	return c.SendEmail(
		to,
		fmt.Sprintf("[pixelmags] search index out of sync: %s %s", alert.Kind, alert.ID),
		TemplateSyncFailure,
		alert.data(),
	)
}
