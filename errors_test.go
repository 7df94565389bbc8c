package supportdesk_test

import (
	"fmt"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"

	supportdesk "github.com/goliatone/go-supportdesk"
)

func TestAuthErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *errors.Error
		textCode string
		status   int
	}{
		{"missing secret", supportdesk.ErrMissingSecret, supportdesk.TextCodeMissingSecret, errors.CodeUnauthorized},
		{"token malformed", supportdesk.ErrTokenMalformed, supportdesk.TextCodeTokenMalformed, errors.CodeUnauthorized},
		{"missing email claim", supportdesk.ErrMissingEmailClaim, supportdesk.TextCodeMissingEmailClaim, errors.CodeUnauthorized},
		{"token expired", supportdesk.ErrTokenExpired, supportdesk.TextCodeTokenExpired, errors.CodeUnauthorized},
		{"missing auth header", supportdesk.ErrMissingAuthHeader, supportdesk.TextCodeMissingAuthHeader, errors.CodeUnauthorized},
		{"malformed header", supportdesk.ErrMalformedHeader, supportdesk.TextCodeMalformedHeader, errors.CodeUnauthorized},
		{"unsupported scheme", supportdesk.ErrUnsupportedScheme, supportdesk.TextCodeBadScheme, errors.CodeUnauthorized},
		{"user not found", supportdesk.ErrUserNotFound, supportdesk.TextCodeUserNotFound, errors.CodeNotFound},
		{"no active session", supportdesk.ErrNoActiveSession, supportdesk.TextCodeNoActiveSession, errors.CodeUnauthorized},
		{"session expired", supportdesk.ErrSessionExpired, supportdesk.TextCodeSessionExpired, errors.CodeUnauthorized},
		{"invalid token", supportdesk.ErrInvalidToken, supportdesk.TextCodeInvalidToken, errors.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.textCode, tt.err.TextCode)
			assert.Equal(t, tt.status, tt.err.Code)
		})
	}
}

func TestIsTokenExpiredError(t *testing.T) {
	assert.False(t, supportdesk.IsTokenExpiredError(nil))
	assert.True(t, supportdesk.IsTokenExpiredError(supportdesk.ErrTokenExpired))
	assert.True(t, supportdesk.IsTokenExpiredError(fmt.Errorf("token is expired by 1h")))
	assert.False(t, supportdesk.IsTokenExpiredError(supportdesk.ErrTokenMalformed))
}

func TestIsMalformedError(t *testing.T) {
	assert.False(t, supportdesk.IsMalformedError(nil))
	assert.True(t, supportdesk.IsMalformedError(supportdesk.ErrTokenMalformed))
	assert.True(t, supportdesk.IsMalformedError(fmt.Errorf("missing or malformed JWT")))
	assert.False(t, supportdesk.IsMalformedError(supportdesk.ErrTokenExpired))
}

func TestAsRichError(t *testing.T) {
	t.Run("passes rich errors through", func(t *testing.T) {
		richErr := supportdesk.AsRichError(supportdesk.ErrSessionExpired)
		assert.Equal(t, supportdesk.TextCodeSessionExpired, richErr.TextCode)
	})

	t.Run("wraps unknown errors as a generic auth failure", func(t *testing.T) {
		richErr := supportdesk.AsRichError(fmt.Errorf("something odd"))
		assert.Equal(t, supportdesk.TextCodeInvalidToken, richErr.TextCode)
		assert.Equal(t, errors.CodeUnauthorized, richErr.Code)
	})
}
