package supportdesk

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Sessions interface {
	repository.Repository[*Session]

	GetByToken(ctx context.Context, token string) (*Session, error)
	GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*Session, error)
	GetActiveForUser(ctx context.Context, userID string, now time.Time) (*Session, error)
	GetActiveForUserTx(ctx context.Context, tx bun.IDB, userID string, now time.Time) (*Session, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessions struct {
	repository.Repository[*Session]
	db *bun.DB
}

var (
	_ Sessions                        = (*sessions)(nil)
	_ repository.Repository[*Session] = (*sessions)(nil)
)

func NewSessionsRepository(db *bun.DB) Sessions {
	repo := repository.NewRepository[*Session](db, repository.ModelHandlers[*Session]{
		NewRecord: func() *Session { return &Session{} },
		GetID: func(s *Session) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			if id, err := uuid.Parse(s.ID); err == nil {
				return id
			}
			return uuid.Nil
		},
		SetID: func(s *Session, id uuid.UUID) {
			if s != nil {
				s.ID = id.String()
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &sessions{
		Repository: repo,
		db:         db,
	}
}

func (a *sessions) GetByToken(ctx context.Context, token string) (*Session, error) {
	return a.GetByTokenTx(ctx, a.db, token)
}

func (a *sessions) GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*Session, error) {
	record := &Session{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

// GetActiveForUser returns a session for the user whose expiry is strictly
// after now. Multiple rows may qualify; business rules do not prefer one over
// another, so the first match wins.
func (a *sessions) GetActiveForUser(ctx context.Context, userID string, now time.Time) (*Session, error) {
	return a.GetActiveForUserTx(ctx, a.db, userID, now)
}

func (a *sessions) GetActiveForUserTx(ctx context.Context, tx bun.IDB, userID string, now time.Time) (*Session, error) {
	record := &Session{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.expires_at > ?", now).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id": userID,
				})
		}
		return nil, err
	}

	return record, nil
}

// DeleteExpired removes sessions whose expiry is at or before now. Run it
// from a maintenance job; resolution never mutates session state.
func (a *sessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := a.db.NewDelete().
		Model((*Session)(nil)).
		Where("?TableAlias.expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return affected, nil
}
