package supportdesk

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*User, error)
	GetByUserID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error)
	GetByUserIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		// ids come from the external identity provider and are not always
		// UUIDs; the generic handlers degrade to uuid.Nil for those rows and
		// the typed lookups below go through GetByUserID instead.
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			if id, err := uuid.Parse(u.ID); err == nil {
				return id
			}
			return uuid.Nil
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id.String()
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email, criteria...)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*User, error) {
	return a.getByColumn(ctx, tx, "email", strings.TrimSpace(email), criteria...)
}

func (a *users) GetByUserID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error) {
	return a.GetByUserIDTx(ctx, a.db, id, criteria...)
}

func (a *users) GetByUserIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (*User, error) {
	return a.getByColumn(ctx, tx, "id", strings.TrimSpace(id), criteria...)
}

func (a *users) getByColumn(ctx context.Context, tx bun.IDB, column, value string, criteria ...repository.SelectCriteria) (*User, error) {
	record := &User{}
	q := tx.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}
