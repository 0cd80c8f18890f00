package apperror

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeTables_AreTotal(t *testing.T) {
	for _, typ := range AllTypes() {
		t.Run(string(typ), func(t *testing.T) {
			msg := messageFor(typ)
			assert.NotEmpty(t, msg.en)
			assert.NotEmpty(t, msg.zhTW)

			if typ != TypeUnknown {
				assert.NotEqual(t, messageFor(TypeUnknown), msg, "type falls through to the unknown message")
				assert.NotEqual(t, CategoryUnknown, typ.Category())
			}

			actions := actionsFor(typ)
			require.NotEmpty(t, actions)
			for _, a := range actions {
				assert.NotEmpty(t, labelFor(a).zhTW, "missing zh-TW label for %s", a)
			}
		})
	}
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, SeverityCritical, TypeAuthInvalid.Severity())
	assert.Equal(t, SeverityCritical, TypeAPIKeyInvalid.Severity())
	assert.Equal(t, SeverityWarning, TypeAPIRateLimited.Severity())
	assert.Equal(t, SeverityError, TypeAPIQuotaExceeded.Severity())
	assert.Equal(t, SeverityError, TypeNetworkTimeout.Severity())
}

func TestRetryable(t *testing.T) {
	retryable := []Type{TypeAPIRateLimited, TypeAPIServiceDown, TypeNetworkTimeout, TypeNetworkConnection}
	terminal := []Type{TypeAuthExpired, TypeAPIKeyInvalid, TypeAPIQuotaExceeded, TypeJSONParse, TypeUnknown}

	for _, typ := range retryable {
		assert.True(t, typ.Retryable(), typ)
	}
	for _, typ := range terminal {
		assert.False(t, typ.Retryable(), typ)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(TypeAPIKeyInvalid, "bad key", nil)

	tests := []struct {
		lang string
		want string
	}{
		{"en", messageFor(TypeAPIKeyInvalid).en},
		{"en-US", messageFor(TypeAPIKeyInvalid).en},
		{"zh-TW", messageFor(TypeAPIKeyInvalid).zhTW},
		{"fr", messageFor(TypeAPIKeyInvalid).en},
		{"", messageFor(TypeAPIKeyInvalid).en},
		{"not a tag!!", messageFor(TypeAPIKeyInvalid).en},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(err, tt.lang))
		})
	}

	assert.Equal(t, messageFor(TypeUnknown).en, UserMessage(nil, "en"))
}

func TestRecoveryActions(t *testing.T) {
	t.Run("auth refreshes the page first", func(t *testing.T) {
		actions := RecoveryActions(New(TypeAuthExpired, "", nil), RecoveryContext{})
		require.NotEmpty(t, actions)
		assert.Equal(t, ActionRefreshPage, actions[0].Type)
		assert.Equal(t, "Refresh Page", actions[0].Label)
		assert.True(t, actions[0].Primary)
		for _, a := range actions[1:] {
			assert.False(t, a.Primary)
		}
	})

	t.Run("invalid key", func(t *testing.T) {
		actions := RecoveryActions(New(TypeAPIKeyInvalid, "", nil), RecoveryContext{})
		assert.Equal(t, "Check API Key", actions[0].Label)
	})

	t.Run("too large is processed in sections", func(t *testing.T) {
		actions := RecoveryActions(New(TypeTranscriptTooLarge, "", nil), RecoveryContext{Language: "zh-TW"})
		assert.Equal(t, ActionProcessInSections, actions[0].Type)
		assert.Equal(t, "分段處理", actions[0].Label)
	})

	t.Run("handlers are wired", func(t *testing.T) {
		called := false
		boom := errors.New("boom")
		rc := RecoveryContext{Handlers: map[ActionType]func(context.Context) error{
			ActionRetry: func(context.Context) error {
				called = true
				return boom
			},
		}}

		actions := RecoveryActions(New(TypeNetworkTimeout, "", nil), rc)
		require.Equal(t, ActionRetry, actions[0].Type)
		assert.ErrorIs(t, actions[0].Run(context.Background()), boom)
		assert.True(t, called)
		assert.NoError(t, actions[1].Run(context.Background()))
	})
}
