package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	supportdesk "github.com/goliatone/go-supportdesk"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// seed provisions a demo user with an active session and prints every
// credential shape the resolver accepts, so a fresh database is immediately
// usable from a client.
func main() {
	dsn := flag.String("dsn", "file:supportdesk.db?cache=shared", "database DSN")
	signingKey := flag.String("signing-key", "", "HS256 signing secret used to mint the demo JWT")
	email := flag.String("email", "demo@example.com", "demo user email")
	name := flag.String("name", "Demo User", "demo user name")
	userID := flag.String("user-id", "user_42", "demo user id")
	sessionTTL := flag.Duration("session-ttl", 24*time.Hour, "demo session lifetime")
	flag.Parse()

	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, *dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, sqlitedialect.New())

	models := []any{
		(*supportdesk.User)(nil),
		(*supportdesk.Session)(nil),
		(*supportdesk.ChatMessage)(nil),
		(*supportdesk.Task)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			log.Fatal(err)
		}
	}

	repo := supportdesk.NewRepositoryManager(db)

	user, err := repo.Users().GetByEmail(ctx, *email)
	if err != nil {
		user, err = repo.Users().Create(ctx, &supportdesk.User{
			ID:            *userID,
			Name:          *name,
			Email:         *email,
			EmailVerified: true,
		})
		if err != nil {
			log.Fatal(err)
		}
	}

	token := uuid.NewString()
	session, err := repo.Sessions().Create(ctx, &supportdesk.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(*sessionTTL),
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("user id:        %s\n", user.ID)
	fmt.Printf("session id:     %s\n", session.ID)
	fmt.Printf("session token:  %s\n", token)

	if *signingKey != "" {
		tokens := supportdesk.NewTokenService([]byte(*signingKey), nil)
		jwtToken, err := tokens.Sign(user.Email, *sessionTTL)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("jwt:            %s\n", jwtToken)
	}
}
