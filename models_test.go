package supportdesk_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	supportdesk "github.com/goliatone/go-supportdesk"
)

func TestSession_Active(t *testing.T) {
	now := time.Now()

	t.Run("future expiry is active", func(t *testing.T) {
		session := &supportdesk.Session{ExpiresAt: now.Add(time.Minute)}
		assert.True(t, session.Active(now))
	})

	t.Run("past expiry is inactive", func(t *testing.T) {
		session := &supportdesk.Session{ExpiresAt: now.Add(-time.Minute)}
		assert.False(t, session.Active(now))
	})

	t.Run("expiry equal to now is inactive", func(t *testing.T) {
		session := &supportdesk.Session{ExpiresAt: now}
		assert.False(t, session.Active(now))
	})

	t.Run("nil session is inactive", func(t *testing.T) {
		var session *supportdesk.Session
		assert.False(t, session.Active(now))
	})
}
