package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_SyncFailure(t *testing.T) {
	body, err := Render(TemplateSyncFailure, PreviewData[TemplateSyncFailure])
	require.NoError(t, err)

	assert.Contains(t, body, "magazine 42")
	assert.Contains(t, body, "after 6 attempts (upsert)")
	assert.Contains(t, body, "pixelmags reindex magazine")
}

func TestRender_EscapesHTML(t *testing.T) {
	alert := SyncFailureAlert{Kind: "log", ID: "1", Op: "delete", Attempts: 1, Reason: "<script>"}

	body, err := Render(TemplateSyncFailure, alert.data())
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render(Template("welcome"), nil)
	assert.ErrorContains(t, err, "failed to parse email template welcome")
}

func TestPreviewData_CoversTemplates(t *testing.T) {
	for name, data := range PreviewData {
		_, err := Render(name, data)
		assert.NoError(t, err, name)
	}
}
