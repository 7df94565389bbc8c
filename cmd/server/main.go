package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-router"
	supportdesk "github.com/goliatone/go-supportdesk"
	"github.com/goliatone/go-supportdesk/agent"
	"github.com/goliatone/go-supportdesk/toolserver"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const systemPrompt = `You are a helpful customer support assistant. You can ` +
	`manage the user's tasks with the tools available to you. Keep answers ` +
	`short and concrete.`

func main() {
	ctx := context.Background()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := openDB(ctx, cfg.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	repo := supportdesk.NewRepositoryManager(db)

	tokens := supportdesk.NewTokenService([]byte(cfg.GetSigningKey()), nil)
	store := supportdesk.NewUserSessionStore(repo)

	resolver := supportdesk.NewResolver(store, tokens).
		WithScheme(cfg.GetAuthScheme()).
		WithUserIDFallback(cfg.GetUserIDFallback())

	guard := supportdesk.NewRouteResolver(resolver).
		WithContextKey(cfg.GetContextKey())

	runtime := agent.NewClient(cfg.RuntimeURL, cfg.RuntimeAPIKey, cfg.RuntimeModel).
		WithSystemPrompt(systemPrompt).
		WithTools(toolserver.Definitions()...)

	chat := supportdesk.NewChatStreamHandler(resolver, repo, runtime).
		WithStreamTimeout(cfg.StreamTimeout)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		app := fiber.New(fiber.Config{
			AppName: "supportdesk",
		})

		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSAllowedOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
			AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		}))

		// the chat stream writes its body after the handler returns, so it
		// mounts on fiber directly instead of going through the router facade
		app.Post("/support/chatkit", chat.Handler())

		return app
	})

	supportdesk.RegisterSupportRoutes(srv.Router(),
		supportdesk.WithControllerRepo(repo),
		supportdesk.WithControllerGuard(guard),
	)

	tools := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return fiber.New(fiber.Config{
			AppName: "supportdesk-tools",
		})
	})

	toolserver.RegisterToolRoutes(tools.Router(), toolserver.NewServer(repo.Tasks()))

	go func() {
		if err := srv.Serve(cfg.HTTPAddr); err != nil {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := tools.Serve(cfg.ToolsAddr); err != nil {
			log.Fatal(err)
		}
	}()

	WaitExitSignal()
}

func openDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	persistence.RegisterModel((*supportdesk.User)(nil))
	persistence.RegisterModel((*supportdesk.Session)(nil))
	persistence.RegisterModel((*supportdesk.ChatMessage)(nil))
	persistence.RegisterModel((*supportdesk.Task)(nil))

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		return nil, err
	}

	if err := createTables(ctx, db); err != nil {
		return nil, err
	}

	return db, nil
}

func createTables(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*supportdesk.User)(nil),
		(*supportdesk.Session)(nil),
		(*supportdesk.ChatMessage)(nil),
		(*supportdesk.Task)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
