package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRecoveryCode(t *testing.T) {
	subject, text, err := Render("recovery_code", map[string]any{
		"Name":      "Maria Souza",
		"Code":      "483920",
		"ExpiresIn": "2m0s",
	})
	require.NoError(t, err)
	assert.Equal(t, "Your password recovery code", subject)
	assert.Contains(t, text, "Maria Souza")
	assert.Contains(t, text, "483920")
	assert.Contains(t, text, "2m0s")
}

func TestRenderDecisionTemplates(t *testing.T) {
	for _, name := range []string{"account_approved", "account_rejected"} {
		t.Run(name, func(t *testing.T) {
			subject, text, err := Render(name, map[string]any{"Name": "Maria Souza"})
			require.NoError(t, err)
			assert.NotEmpty(t, subject)
			assert.Contains(t, text, "Maria Souza")
		})
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := Render("no_such_template", nil)
	assert.Error(t, err)
}
