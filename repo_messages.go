package supportdesk

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Messages interface {
	repository.Repository[*ChatMessage]

	Append(ctx context.Context, userID string, role MessageRole, content string) (*ChatMessage, error)
	AppendTx(ctx context.Context, tx bun.IDB, userID string, role MessageRole, content string) (*ChatMessage, error)
	HistoryForUser(ctx context.Context, userID string) ([]*ChatMessage, error)
}

type messages struct {
	repository.Repository[*ChatMessage]
	db *bun.DB
}

var (
	_ Messages                            = (*messages)(nil)
	_ repository.Repository[*ChatMessage] = (*messages)(nil)
)

func NewMessagesRepository(db *bun.DB) Messages {
	repo := repository.NewRepository[*ChatMessage](db, repository.ModelHandlers[*ChatMessage]{
		NewRecord: func() *ChatMessage { return &ChatMessage{} },
		GetID: func(m *ChatMessage) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			if id, err := uuid.Parse(m.ID); err == nil {
				return id
			}
			return uuid.Nil
		},
		SetID: func(m *ChatMessage, id uuid.UUID) {
			if m != nil {
				m.ID = id.String()
			}
		},
	})

	return &messages{
		Repository: repo,
		db:         db,
	}
}

func (a *messages) Append(ctx context.Context, userID string, role MessageRole, content string) (*ChatMessage, error) {
	return a.AppendTx(ctx, a.db, userID, role, content)
}

func (a *messages) AppendTx(ctx context.Context, tx bun.IDB, userID string, role MessageRole, content string) (*ChatMessage, error) {
	record := &ChatMessage{
		ID:      uuid.NewString(),
		UserID:  userID,
		Role:    role,
		Content: content,
	}

	return a.Repository.CreateTx(ctx, tx, record)
}

// HistoryForUser returns every turn the user exchanged with the agent, oldest
// first, ready to replay to the runtime.
func (a *messages) HistoryForUser(ctx context.Context, userID string) ([]*ChatMessage, error) {
	var records []*ChatMessage
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}
