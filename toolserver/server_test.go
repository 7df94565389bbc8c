package toolserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	supportdesk "github.com/goliatone/go-supportdesk"
)

// MockTasks implements supportdesk.Tasks
type MockTasks struct {
	mock.Mock
}

func (m *MockTasks) CreateTask(ctx context.Context, userID, title, description string) (*supportdesk.Task, error) {
	args := m.Called(ctx, userID, title, description)
	task, _ := args.Get(0).(*supportdesk.Task)
	return task, args.Error(1)
}

func (m *MockTasks) GetForUser(ctx context.Context, userID string, taskID int64) (*supportdesk.Task, error) {
	args := m.Called(ctx, userID, taskID)
	task, _ := args.Get(0).(*supportdesk.Task)
	return task, args.Error(1)
}

func (m *MockTasks) ListForUser(ctx context.Context, userID string, filter supportdesk.TaskFilter) ([]*supportdesk.Task, error) {
	args := m.Called(ctx, userID, filter)
	tasks, _ := args.Get(0).([]*supportdesk.Task)
	return tasks, args.Error(1)
}

func (m *MockTasks) Complete(ctx context.Context, userID string, taskID int64) (*supportdesk.Task, error) {
	args := m.Called(ctx, userID, taskID)
	task, _ := args.Get(0).(*supportdesk.Task)
	return task, args.Error(1)
}

func (m *MockTasks) UpdateTask(ctx context.Context, userID string, taskID int64, title, description *string) (*supportdesk.Task, error) {
	args := m.Called(ctx, userID, taskID, title, description)
	task, _ := args.Get(0).(*supportdesk.Task)
	return task, args.Error(1)
}

func (m *MockTasks) DeleteTask(ctx context.Context, userID string, taskID int64) (*supportdesk.Task, error) {
	args := m.Called(ctx, userID, taskID)
	task, _ := args.Get(0).(*supportdesk.Task)
	return task, args.Error(1)
}

func callParamsFor(name string, arguments string) callParams {
	return callParams{
		Name:      name,
		Arguments: json.RawMessage(arguments),
	}
}

func TestServer_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("add_task creates and reports the task", func(t *testing.T) {
		tasks := &MockTasks{}
		tasks.On("CreateTask", ctx, "user-1", "Buy milk", "2%").
			Return(&supportdesk.Task{ID: 7, Title: "Buy milk"}, nil)

		srv := NewServer(tasks)
		result, err := srv.dispatch(ctx, callParamsFor("add_task",
			`{"user_id":"user-1","title":"Buy milk","description":"2%"}`))

		require.NoError(t, err)
		out, ok := result.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, int64(7), out["task_id"])
		assert.Equal(t, "created", out["status"])
		tasks.AssertExpectations(t)
	})

	t.Run("add_task requires a title", func(t *testing.T) {
		srv := NewServer(&MockTasks{})
		_, err := srv.dispatch(ctx, callParamsFor("add_task", `{"user_id":"user-1"}`))
		require.Error(t, err)
	})

	t.Run("list_tasks defaults to all", func(t *testing.T) {
		tasks := &MockTasks{}
		tasks.On("ListForUser", ctx, "user-1", supportdesk.TaskFilterAll).
			Return([]*supportdesk.Task{
				{ID: 1, Title: "one", Completed: false},
				{ID: 2, Title: "two", Completed: true},
			}, nil)

		srv := NewServer(tasks)
		result, err := srv.dispatch(ctx, callParamsFor("list_tasks", `{"user_id":"user-1"}`))

		require.NoError(t, err)
		out := result.(map[string]any)
		listed := out["tasks"].([]map[string]any)
		require.Len(t, listed, 2)
		assert.Equal(t, "one", listed[0]["title"])
	})

	t.Run("list_tasks rejects an unknown status", func(t *testing.T) {
		srv := NewServer(&MockTasks{})
		_, err := srv.dispatch(ctx, callParamsFor("list_tasks",
			`{"user_id":"user-1","status":"done"}`))
		require.Error(t, err)
	})

	t.Run("complete_task marks the task", func(t *testing.T) {
		tasks := &MockTasks{}
		tasks.On("Complete", ctx, "user-1", int64(3)).
			Return(&supportdesk.Task{ID: 3, Title: "Call bank", Completed: true}, nil)

		srv := NewServer(tasks)
		result, err := srv.dispatch(ctx, callParamsFor("complete_task",
			`{"user_id":"user-1","task_id":3}`))

		require.NoError(t, err)
		out := result.(map[string]any)
		assert.Equal(t, "completed", out["status"])
	})

	t.Run("update_task passes only provided fields", func(t *testing.T) {
		tasks := &MockTasks{}
		tasks.On("UpdateTask", ctx, "user-1", int64(3), mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				title := args.Get(3).(*string)
				description := args.Get(4).(*string)
				require.NotNil(t, title)
				assert.Equal(t, "New title", *title)
				assert.Nil(t, description)
			}).
			Return(&supportdesk.Task{ID: 3, Title: "New title"}, nil)

		srv := NewServer(tasks)
		_, err := srv.dispatch(ctx, callParamsFor("update_task",
			`{"user_id":"user-1","task_id":3,"title":"New title"}`))

		require.NoError(t, err)
		tasks.AssertExpectations(t)
	})

	t.Run("delete_task reports the removed task", func(t *testing.T) {
		tasks := &MockTasks{}
		tasks.On("DeleteTask", ctx, "user-1", int64(9)).
			Return(&supportdesk.Task{ID: 9, Title: "Old"}, nil)

		srv := NewServer(tasks)
		result, err := srv.dispatch(ctx, callParamsFor("delete_task",
			`{"user_id":"user-1","task_id":9}`))

		require.NoError(t, err)
		out := result.(map[string]any)
		assert.Equal(t, "deleted", out["status"])
	})

	t.Run("unknown tool is rejected", func(t *testing.T) {
		srv := NewServer(&MockTasks{})
		_, err := srv.dispatch(ctx, callParamsFor("drop_tables", `{}`))
		require.Error(t, err)
	})

	t.Run("missing arguments are rejected", func(t *testing.T) {
		srv := NewServer(&MockTasks{})
		_, err := srv.dispatch(ctx, callParams{Name: "add_task"})
		require.Error(t, err)
	})
}

func TestToolError(t *testing.T) {
	t.Run("not found maps to a safe message", func(t *testing.T) {
		rpcErr := toolError(repository.NewRecordNotFound())
		assert.Equal(t, codeToolFailure, rpcErr.Code)
		assert.Equal(t, "task not found", rpcErr.Message)
	})

	t.Run("storage detail does not leak", func(t *testing.T) {
		rpcErr := toolError(assert.AnError)
		assert.Equal(t, codeToolFailure, rpcErr.Code)
		assert.NotContains(t, rpcErr.Message, assert.AnError.Error())
	})
}

func TestDefinitions(t *testing.T) {
	defs := Definitions()
	require.Len(t, defs, 5)

	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
		assert.NotEmpty(t, def.Description)
		assert.NotNil(t, def.InputSchema)
	}

	assert.ElementsMatch(t, []string{
		"add_task", "list_tasks", "complete_task", "delete_task", "update_task",
	}, names)
}
