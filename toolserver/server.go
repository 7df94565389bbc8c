package toolserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	supportdesk "github.com/goliatone/go-supportdesk"
	"github.com/goliatone/go-supportdesk/agent"
)

// JSON-RPC error codes used by the tool surface.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailure    = -32000
)

// Server exposes task management as callable tools for the agent runtime.
// Tool calls arrive keyed by user_id because the runtime, not the end user,
// is the caller; every operation still filters by owner.
type Server struct {
	tasks  supportdesk.Tasks
	logger supportdesk.Logger
}

func NewServer(tasks supportdesk.Tasks) *Server {
	return &Server{
		tasks:  tasks,
		logger: nil,
	}
}

func (s *Server) WithLogger(logger supportdesk.Logger) *Server {
	s.logger = logger
	return s
}

// RegisterToolRoutes mounts the JSON-RPC endpoint plus a liveness probe.
func RegisterToolRoutes[T any](app router.Router[T], srv *Server) {
	app.Post("/tools/rpc", srv.Handle).SetName("tools.rpc")
	app.Get("/tools/health", func(ctx router.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	}).SetName("tools.health")
}

// Definitions lists the tools this server implements, in the shape the agent
// runtime expects when tools are declared on a request.
func Definitions() []agent.ToolDefinition {
	return []agent.ToolDefinition{
		{
			Name:        "add_task",
			Description: "Create a new task",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id":     map[string]any{"type": "string"},
					"title":       map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
				},
				"required": []string{"user_id", "title"},
			},
		},
		{
			Name:        "list_tasks",
			Description: "List user's tasks. Status: all, pending, or completed",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": map[string]any{"type": "string"},
					"status":  map[string]any{"type": "string", "enum": []string{"all", "pending", "completed"}},
				},
				"required": []string{"user_id"},
			},
		},
		{
			Name:        "complete_task",
			Description: "Mark task as completed",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": map[string]any{"type": "string"},
					"task_id": map[string]any{"type": "integer"},
				},
				"required": []string{"user_id", "task_id"},
			},
		},
		{
			Name:        "delete_task",
			Description: "Delete a task",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": map[string]any{"type": "string"},
					"task_id": map[string]any{"type": "integer"},
				},
				"required": []string{"user_id", "task_id"},
			},
		},
		{
			Name:        "update_task",
			Description: "Update task title or description",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id":     map[string]any{"type": "string"},
					"task_id":     map[string]any{"type": "integer"},
					"title":       map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
				},
				"required": []string{"user_id", "task_id"},
			},
		},
	}
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

// Handle dispatches a single JSON-RPC request. Tool failures travel inside
// the JSON-RPC envelope; the HTTP status stays 200 for anything that parsed.
func (s *Server) Handle(ctx router.Context) error {
	var req rpcRequest
	if err := json.Unmarshal(ctx.Body(), &req); err != nil {
		return ctx.JSON(http.StatusOK, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: codeParseError, Message: "parse error"},
		})
	}

	switch req.Method {
	case "tools/list":
		return ctx.JSON(http.StatusOK, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]any{"tools": Definitions()},
		})
	case "tools/call":
		return s.handleCall(ctx, req)
	default:
		return ctx.JSON(http.StatusOK, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeMethodNotFound, Message: "method not found: " + req.Method},
		})
	}
}

func (s *Server) handleCall(ctx router.Context, req rpcRequest) error {
	var params callParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return ctx.JSON(http.StatusOK, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeInvalidRequest, Message: "invalid call params"},
		})
	}

	result, err := s.dispatch(ctx.Context(), params)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("tool call failed", "tool", params.Name, "error", err)
		}
		return ctx.JSON(http.StatusOK, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   toolError(err),
		})
	}

	return ctx.JSON(http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	})
}

type addTaskArgs struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (a addTaskArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.UserID, validation.Required),
		validation.Field(&a.Title, validation.Required, validation.Length(1, 255)),
	)
}

type listTasksArgs struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

func (a listTasksArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.UserID, validation.Required),
		validation.Field(&a.Status, validation.In(
			"",
			supportdesk.TaskFilterAll,
			supportdesk.TaskFilterPending,
			supportdesk.TaskFilterCompleted,
		)),
	)
}

type taskRefArgs struct {
	UserID string `json:"user_id"`
	TaskID int64  `json:"task_id"`
}

func (a taskRefArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.UserID, validation.Required),
		validation.Field(&a.TaskID, validation.Required),
	)
}

type updateTaskArgs struct {
	UserID      string  `json:"user_id"`
	TaskID      int64   `json:"task_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (a updateTaskArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.UserID, validation.Required),
		validation.Field(&a.TaskID, validation.Required),
	)
}

func (s *Server) dispatch(ctx context.Context, params callParams) (any, error) {
	switch params.Name {
	case "add_task":
		var args addTaskArgs
		if err := decodeArgs(params.Arguments, &args); err != nil {
			return nil, err
		}
		task, err := s.tasks.CreateTask(ctx, args.UserID, args.Title, args.Description)
		if err != nil {
			return nil, err
		}
		return map[string]any{"task_id": task.ID, "status": "created", "title": task.Title}, nil

	case "list_tasks":
		var args listTasksArgs
		if err := decodeArgs(params.Arguments, &args); err != nil {
			return nil, err
		}
		filter := args.Status
		if filter == "" {
			filter = supportdesk.TaskFilterAll
		}
		records, err := s.tasks.ListForUser(ctx, args.UserID, filter)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(records))
		for _, t := range records {
			entry := map[string]any{
				"id":          t.ID,
				"title":       t.Title,
				"description": t.Description,
				"completed":   t.Completed,
			}
			if t.CreatedAt != nil {
				entry["created_at"] = t.CreatedAt
			}
			out = append(out, entry)
		}
		return map[string]any{"tasks": out}, nil

	case "complete_task":
		var args taskRefArgs
		if err := decodeArgs(params.Arguments, &args); err != nil {
			return nil, err
		}
		task, err := s.tasks.Complete(ctx, args.UserID, args.TaskID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"task_id": task.ID, "status": "completed", "title": task.Title}, nil

	case "delete_task":
		var args taskRefArgs
		if err := decodeArgs(params.Arguments, &args); err != nil {
			return nil, err
		}
		task, err := s.tasks.DeleteTask(ctx, args.UserID, args.TaskID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"task_id": task.ID, "status": "deleted", "title": task.Title}, nil

	case "update_task":
		var args updateTaskArgs
		if err := decodeArgs(params.Arguments, &args); err != nil {
			return nil, err
		}
		task, err := s.tasks.UpdateTask(ctx, args.UserID, args.TaskID, args.Title, args.Description)
		if err != nil {
			return nil, err
		}
		return map[string]any{"task_id": task.ID, "status": "updated", "title": task.Title}, nil

	default:
		return nil, errors.New("unknown tool: "+params.Name, errors.CategoryValidation)
	}
}

type validatable interface {
	Validate() error
}

func decodeArgs(raw json.RawMessage, out validatable) error {
	if len(raw) == 0 {
		return errors.New("missing tool arguments", errors.CategoryValidation)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "malformed tool arguments")
	}
	return out.Validate()
}

// toolError maps internal failures to JSON-RPC errors without leaking storage
// detail to the runtime.
func toolError(err error) *rpcError {
	if errors.IsNotFound(err) {
		return &rpcError{Code: codeToolFailure, Message: "task not found"}
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Category == errors.CategoryValidation {
		return &rpcError{Code: codeInvalidParams, Message: richErr.Message}
	}

	if _, ok := err.(validation.Errors); ok {
		return &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid arguments: %v", err)}
	}

	return &rpcError{Code: codeToolFailure, Message: "tool execution failed"}
}
