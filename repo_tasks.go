package supportdesk

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// TaskFilter narrows task listings by completion state
type TaskFilter = string

const (
	// TaskFilterAll lists every task
	TaskFilterAll TaskFilter = "all"
	// TaskFilterPending lists tasks not yet completed
	TaskFilterPending TaskFilter = "pending"
	// TaskFilterCompleted lists completed tasks
	TaskFilterCompleted TaskFilter = "completed"
)

// Tasks is the todo store surfaced to the agent through the tool server.
// Every operation filters by the owning user id; tasks use integer keys
// issued by the database, so this repository talks to bun directly instead of
// embedding the generic uuid-keyed repository.
type Tasks interface {
	CreateTask(ctx context.Context, userID, title, description string) (*Task, error)
	GetForUser(ctx context.Context, userID string, taskID int64) (*Task, error)
	ListForUser(ctx context.Context, userID string, filter TaskFilter) ([]*Task, error)
	Complete(ctx context.Context, userID string, taskID int64) (*Task, error)
	UpdateTask(ctx context.Context, userID string, taskID int64, title, description *string) (*Task, error)
	DeleteTask(ctx context.Context, userID string, taskID int64) (*Task, error)
}

type tasks struct {
	db *bun.DB
}

var _ Tasks = (*tasks)(nil)

func NewTasksRepository(db *bun.DB) Tasks {
	return &tasks{db: db}
}

func (a *tasks) CreateTask(ctx context.Context, userID, title, description string) (*Task, error) {
	record := &Task{
		UserID:      userID,
		Title:       title,
		Description: description,
	}

	if _, err := a.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

func (a *tasks) GetForUser(ctx context.Context, userID string, taskID int64) (*Task, error) {
	record := &Task{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", taskID).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"task_id": taskID,
					"user_id": userID,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *tasks) ListForUser(ctx context.Context, userID string, filter TaskFilter) ([]*Task, error) {
	var records []*Task
	q := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at ASC")

	switch filter {
	case TaskFilterPending:
		q = q.Where("?TableAlias.completed = ?", false)
	case TaskFilterCompleted:
		q = q.Where("?TableAlias.completed = ?", true)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

func (a *tasks) Complete(ctx context.Context, userID string, taskID int64) (*Task, error) {
	record, err := a.GetForUser(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record.Completed = true
	record.UpdatedAt = &now

	if _, err := a.db.NewUpdate().
		Model(record).
		Column("completed", "updated_at").
		WherePK().
		Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

func (a *tasks) UpdateTask(ctx context.Context, userID string, taskID int64, title, description *string) (*Task, error) {
	record, err := a.GetForUser(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if title != nil && *title != "" {
		record.Title = *title
	}
	if description != nil {
		record.Description = *description
	}
	now := time.Now()
	record.UpdatedAt = &now

	if _, err := a.db.NewUpdate().
		Model(record).
		Column("title", "description", "updated_at").
		WherePK().
		Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

func (a *tasks) DeleteTask(ctx context.Context, userID string, taskID int64) (*Task, error) {
	record, err := a.GetForUser(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if _, err := a.db.NewDelete().
		Model(record).
		WherePK().
		Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}
