package supportdesk

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/goliatone/go-supportdesk/agent"
)

const defaultStreamTimeout = 5 * time.Minute

// ChatStreamHandler serves the streaming chat endpoint. It runs directly on
// fiber because the response is a long lived event stream written after the
// handler returns.
type ChatStreamHandler struct {
	resolver      *Resolver
	repo          RepositoryManager
	runtime       agent.Runtime
	streamTimeout time.Duration
	logger        Logger
}

func NewChatStreamHandler(resolver *Resolver, repo RepositoryManager, runtime agent.Runtime) *ChatStreamHandler {
	return &ChatStreamHandler{
		resolver:      resolver,
		repo:          repo,
		runtime:       runtime,
		streamTimeout: defaultStreamTimeout,
		logger:        defLogger{},
	}
}

func (h *ChatStreamHandler) WithLogger(logger Logger) *ChatStreamHandler {
	h.logger = logger
	return h
}

func (h *ChatStreamHandler) WithStreamTimeout(d time.Duration) *ChatStreamHandler {
	if d > 0 {
		h.streamTimeout = d
	}
	return h
}

// Handler authenticates the caller, persists the incoming turn, then streams
// the runtime's reply as server sent events. The assistant turn is persisted
// once the stream completes.
func (h *ChatStreamHandler) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := h.resolver.ResolveHeader(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			richErr := AsRichError(err)
			h.logger.Info("chat stream auth rejected", "error", richErr.Message, "text_code", richErr.TextCode)
			return c.Status(richErr.Code).JSON(fiber.Map{
				"error": fiber.Map{
					"message":   richErr.Message,
					"text_code": richErr.TextCode,
					"status":    richErr.Code,
				},
			})
		}

		input := ExtractUserInput(c.Body())
		if input != "" {
			if _, err := h.repo.Messages().Append(c.UserContext(), user.ID, RoleUser, input); err != nil {
				h.logger.Error("failed to persist user turn", "user_id", user.ID, "error", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": fiber.Map{
						"message": "failed to persist message",
						"status":  fiber.StatusInternalServerError,
					},
				})
			}
		}

		history, err := h.repo.Messages().HistoryForUser(c.UserContext(), user.ID)
		if err != nil {
			h.logger.Error("failed to load history", "user_id", user.ID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fiber.Map{
					"message": "failed to load conversation",
					"status":  fiber.StatusInternalServerError,
				},
			})
		}

		turns := make([]agent.Turn, 0, len(history))
		for _, msg := range history {
			turns = append(turns, agent.Turn{Role: msg.Role, Content: msg.Content})
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		// the writer runs after this handler returns, so it cannot touch the
		// fiber context; everything it needs is captured here
		userID := user.ID
		itemID := uuid.NewString()

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			ctx, cancel := context.WithTimeout(context.Background(), h.streamTimeout)
			defer cancel()

			h.streamReply(ctx, w, userID, itemID, turns)
		})

		return nil
	}
}

func (h *ChatStreamHandler) streamReply(ctx context.Context, w *bufio.Writer, userID, itemID string, turns []agent.Turn) {
	emit := func(event any) error {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return w.Flush()
	}

	final, err := h.runtime.Respond(ctx, turns, func(delta string) error {
		return emit(map[string]any{
			"type": "thread.item.updated",
			"update": map[string]any{
				"type":    "assistant_message.content_part.text_delta",
				"item_id": itemID,
				"delta":   delta,
			},
		})
	})
	if err != nil {
		h.logger.Error("runtime stream failed", "user_id", userID, "error", err)
		_ = emit(map[string]any{
			"type":    "error",
			"message": "agent response failed",
		})
		return
	}

	if final != "" {
		if _, err := h.repo.Messages().Append(ctx, userID, RoleAssistant, final); err != nil {
			h.logger.Error("failed to persist assistant turn", "user_id", userID, "error", err)
		}
	}

	_ = emit(map[string]any{
		"type": "thread.item.done",
		"item": map[string]any{
			"id":   itemID,
			"type": "assistant_message",
			"content": []map[string]any{
				{"type": "output_text", "text": final},
			},
		},
	})
}
