package service

import (
	"bytes"
	"context"
	"testing"

	"flowlearn_backend/internal/config"
	"flowlearn_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailTemplates(t *testing.T) {
	templates := buildTemplates()

	t.Run("every template renders with its data", func(t *testing.T) {
		data := map[EmailType]map[string]interface{}{
			EmailWelcome:           {"name": "Ada"},
			EmailLogin:             {"device": "Firefox on Linux"},
			EmailMagicLink:         {"link": "https://flowlearn.dev/magic/abc"},
			EmailPasswordReset:     {"link": "https://flowlearn.dev/reset/abc"},
			EmailEmailConfirmation: {"link": "https://flowlearn.dev/confirm/abc"},
		}
		for emailType, tpl := range templates {
			var out bytes.Buffer
			require.NoError(t, tpl.body.Execute(&out, data[emailType]), "type=%s", emailType)
			assert.NotEmpty(t, tpl.subject, "type=%s", emailType)
			assert.Contains(t, out.String(), "FlowLearn", "type=%s", emailType)
		}
	})

	t.Run("welcome interpolates the name", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, templates[EmailWelcome].body.Execute(&out, map[string]interface{}{"name": "Ada"}))
		assert.Contains(t, out.String(), "Welcome aboard, Ada!")
	})

	t.Run("login without device still renders", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, templates[EmailLogin].body.Execute(&out, map[string]interface{}{}))
		assert.NotContains(t, out.String(), "from")
	})
}

func TestSendAuthEmail_UnknownType(t *testing.T) {
	svc := NewEmailService(config.ResendConfig{APIKey: "re_test", From: "FlowLearn <noreply@flowlearn.dev>"})
	_, err := svc.SendAuthEmail(context.Background(), "a@b.dev", "newsletter", nil)
	assert.ErrorIs(t, err, util.ErrUnknownEmailTemplate)
}
