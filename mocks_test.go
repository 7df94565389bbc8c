package supportdesk_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	supportdesk "github.com/goliatone/go-supportdesk"
)

// MockUserSessionStore implements supportdesk.UserSessionStore
type MockUserSessionStore struct {
	mock.Mock
}

func (m *MockUserSessionStore) UserByEmail(ctx context.Context, email string) (*supportdesk.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*supportdesk.User)
	return user, args.Error(1)
}

func (m *MockUserSessionStore) UserByID(ctx context.Context, id string) (*supportdesk.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*supportdesk.User)
	return user, args.Error(1)
}

func (m *MockUserSessionStore) SessionByToken(ctx context.Context, token string) (*supportdesk.Session, error) {
	args := m.Called(ctx, token)
	session, _ := args.Get(0).(*supportdesk.Session)
	return session, args.Error(1)
}

func (m *MockUserSessionStore) ActiveSessionForUser(ctx context.Context, userID string, now time.Time) (*supportdesk.Session, error) {
	args := m.Called(ctx, userID, now)
	session, _ := args.Get(0).(*supportdesk.Session)
	return session, args.Error(1)
}

// MockTokenValidator implements supportdesk.TokenValidator
type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) Validate(tokenString string) (*supportdesk.JWTClaims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*supportdesk.JWTClaims)
	return claims, args.Error(1)
}

// testLogger swallows log output so failure paths stay quiet in test runs
type testLogger struct{}

func (testLogger) Debug(format string, args ...any) {}
func (testLogger) Info(format string, args ...any)  {}
func (testLogger) Warn(format string, args ...any)  {}
func (testLogger) Error(format string, args ...any) {}
