package supportdesk

import (
	"net/http"
	"time"

	"github.com/goliatone/go-router"
)

// RegisterSupportRoutes mounts the authenticated support API. The health probe
// stays outside the auth guard.
func RegisterSupportRoutes[T any](app router.Router[T], opts ...SupportControllerOption) {
	controller := NewSupportController(opts...)

	protected := controller.Guard.ProtectedRoute()

	app.
		Get(controller.Routes.History, protected(controller.HistoryShow)).
		SetName("support.history.get")

	app.
		Get(controller.Routes.Health, controller.HealthShow).
		SetName("support.health.get")
}

type SupportControllerRoutes struct {
	History string
	Health  string
}

type SupportController struct {
	Logger       Logger
	Repo         RepositoryManager
	Guard        *RouteResolver
	Routes       *SupportControllerRoutes
	ErrorHandler func(c router.Context, err error) error
}

type SupportControllerOption func(*SupportController) *SupportController

func WithControllerLogger(logger Logger) SupportControllerOption {
	return func(c *SupportController) *SupportController {
		c.Logger = logger
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) SupportControllerOption {
	return func(c *SupportController) *SupportController {
		c.Repo = repo
		return c
	}
}

func WithControllerGuard(guard *RouteResolver) SupportControllerOption {
	return func(c *SupportController) *SupportController {
		c.Guard = guard
		return c
	}
}

func WithControllerRoutes(routes *SupportControllerRoutes) SupportControllerOption {
	return func(c *SupportController) *SupportController {
		c.Routes = routes
		return c
	}
}

func NewSupportController(opts ...SupportControllerOption) *SupportController {
	c := &SupportController{
		Logger: defLogger{},
		Routes: &SupportControllerRoutes{
			History: "/support/history",
			Health:  "/support/health",
		},
	}

	c.ErrorHandler = func(ctx router.Context, err error) error {
		richErr := AsRichError(err)
		c.Logger.Error("support controller error", "error", richErr.Message, "text_code", richErr.TextCode)
		return WriteError(ctx, richErr)
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in support controller...")
	}

	if c.Guard == nil {
		panic("Missing RouteResolver in support controller...")
	}

	return c
}

// historyItem is one turn of the conversation as the API exposes it.
type historyItem struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at,omitempty"`
}

// HistoryShow returns the caller's conversation, oldest turn first.
func (a *SupportController) HistoryShow(ctx router.Context) error {
	user, err := GetRouterUser(ctx, a.Guard.contextKey)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	records, err := a.Repo.Messages().HistoryForUser(ctx.Context(), user.ID)
	if err != nil {
		a.Logger.Error("history lookup failed", "user_id", user.ID, "error", err)
		return a.ErrorHandler(ctx, newStoreError())
	}

	items := make([]historyItem, 0, len(records))
	for _, msg := range records {
		item := historyItem{
			ID:      msg.ID,
			Role:    msg.Role,
			Content: msg.Content,
		}
		if msg.CreatedAt != nil {
			item.CreatedAt = msg.CreatedAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"user_id":  user.ID,
		"messages": items,
	})
}

// HealthShow is the unauthenticated liveness probe.
func (a *SupportController) HealthShow(ctx router.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
