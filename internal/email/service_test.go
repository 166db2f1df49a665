package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLinkEmail(t *testing.T) {
	body, err := renderLinkEmail("Reset your password",
		"To reset your password, click the following link:",
		"https://app.example.com/reset-password?token=abc123")
	require.NoError(t, err)

	assert.Contains(t, body, "<h2>Reset your password</h2>")
	assert.Contains(t, body, `href="https://app.example.com/reset-password?token=abc123"`)
	assert.Contains(t, body, "safely ignore")
}

func TestRenderLinkEmailEscapesContent(t *testing.T) {
	body, err := renderLinkEmail("<script>alert(1)</script>", "intro", "https://example.com")
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}
