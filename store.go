package supportdesk

import (
	"context"
	"time"
)

// repoStore adapts the repository manager to the narrow read surface the
// resolver consumes.
type repoStore struct {
	repo RepositoryManager
}

var _ UserSessionStore = (*repoStore)(nil)

// NewUserSessionStore exposes the users and sessions repositories as a
// UserSessionStore.
func NewUserSessionStore(repo RepositoryManager) UserSessionStore {
	return &repoStore{repo: repo}
}

func (s *repoStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.Users().GetByEmail(ctx, email)
}

func (s *repoStore) UserByID(ctx context.Context, id string) (*User, error) {
	return s.repo.Users().GetByUserID(ctx, id)
}

func (s *repoStore) SessionByToken(ctx context.Context, token string) (*Session, error) {
	return s.repo.Sessions().GetByToken(ctx, token)
}

func (s *repoStore) ActiveSessionForUser(ctx context.Context, userID string, now time.Time) (*Session, error) {
	return s.repo.Sessions().GetActiveForUser(ctx, userID, now)
}
