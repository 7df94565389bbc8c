package supportdesk

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

// Resolver turns a raw Authorization value into a persisted, currently
// authenticated user. It accepts two credential forms: a compact HS256 token
// carrying an email claim, and an opaque session lookup token. Resolution is
// read only; every request re-verifies the signature and re-queries session
// state so concurrent revocation is honored.
type Resolver struct {
	store          UserSessionStore
	tokens         TokenValidator
	scheme         string
	userIDFallback bool
	logger         Logger
	now            func() time.Time
}

// NewResolver returns a new Resolver
func NewResolver(store UserSessionStore, tokens TokenValidator) *Resolver {
	return &Resolver{
		store:          store,
		tokens:         tokens,
		scheme:         "bearer",
		userIDFallback: true,
		logger:         defLogger{},
		now:            time.Now,
	}
}

func (r *Resolver) WithLogger(logger Logger) *Resolver {
	r.logger = logger
	return r
}

// WithScheme overrides the accepted Authorization scheme. Matching is case
// insensitive.
func (r *Resolver) WithScheme(scheme string) *Resolver {
	r.scheme = scheme
	return r
}

// WithUserIDFallback toggles the degraded flow in which an opaque token that
// matches no session is retried as a raw user id. The external identity
// provider hands demo callers bare user ids, so the default is on; any caller
// who learns a user id can authenticate as that user while a session for it is
// active, so production deployments should turn it off.
func (r *Resolver) WithUserIDFallback(enabled bool) *Resolver {
	r.userIDFallback = enabled
	return r
}

// WithClock overrides the time source used for expiry checks.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	if now != nil {
		r.now = now
	}
	return r
}

// ResolveHeader splits a full Authorization header value into scheme and
// token, enforces the configured scheme, and resolves the token.
func (r *Resolver) ResolveHeader(ctx context.Context, header string) (*User, error) {
	if header == "" {
		return nil, ErrMissingAuthHeader
	}

	parts := strings.Fields(header)
	if len(parts) != 2 {
		return nil, ErrMalformedHeader
	}

	if !strings.EqualFold(parts[0], r.scheme) {
		return nil, ErrUnsupportedScheme
	}

	return r.Resolve(ctx, parts[1])
}

// Resolve produces the authenticated user for a bare token. Compact tokens
// take the signed path; everything else takes the opaque path.
func (r *Resolver) Resolve(ctx context.Context, token string) (*User, error) {
	now := r.now()

	if IsCompactToken(token) {
		return r.resolveSigned(ctx, token, now)
	}

	return r.resolveOpaque(ctx, token, now)
}

// resolveSigned validates the compact token, then requires a persisted user
// for the claimed email plus an active session for that user.
func (r *Resolver) resolveSigned(ctx context.Context, token string, now time.Time) (*User, error) {
	claims, err := r.tokens.Validate(token)
	if err != nil {
		r.logger.Info("signed token rejected", "error", err)
		return nil, err
	}

	user, err := r.store.UserByEmail(ctx, claims.Email)
	if err != nil {
		if errors.IsNotFound(err) {
			r.logger.Info("no user for claimed email", "email", claims.Email)
			return nil, ErrUserNotFound
		}
		return nil, r.storeFailure("user lookup by email failed", err)
	}

	if _, err := r.store.ActiveSessionForUser(ctx, user.ID, now); err != nil {
		if errors.IsNotFound(err) {
			r.logger.Info("no active session for user", "user_id", user.ID)
			return nil, ErrNoActiveSession
		}
		return nil, r.storeFailure("active session lookup failed", err)
	}

	return user, nil
}

// resolveOpaque looks the token up as a session token first. When no session
// matches and the fallback is enabled, the raw value is retried as a user id,
// which still requires an active session for that user.
func (r *Resolver) resolveOpaque(ctx context.Context, token string, now time.Time) (*User, error) {
	session, err := r.store.SessionByToken(ctx, token)
	if err == nil {
		if !session.Active(now) {
			r.logger.Info("session expired", "session_id", session.ID)
			return nil, ErrSessionExpired
		}

		user, err := r.store.UserByID(ctx, session.UserID)
		if err != nil {
			if errors.IsNotFound(err) {
				// data integrity case: session row points at a missing user
				r.logger.Error("session owner missing", "session_id", session.ID, "user_id", session.UserID)
				return nil, ErrUserNotFound
			}
			return nil, r.storeFailure("session owner lookup failed", err)
		}

		return user, nil
	}

	if !errors.IsNotFound(err) {
		return nil, r.storeFailure("session lookup by token failed", err)
	}

	if !r.userIDFallback {
		return nil, ErrInvalidToken
	}

	user, err := r.store.UserByID(ctx, token)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, r.storeFailure("user lookup by id failed", err)
	}

	if _, err := r.store.ActiveSessionForUser(ctx, user.ID, now); err != nil {
		if errors.IsNotFound(err) {
			r.logger.Info("no active session for user", "user_id", user.ID)
			return nil, ErrNoActiveSession
		}
		return nil, r.storeFailure("active session lookup failed", err)
	}

	return user, nil
}

// storeFailure logs the raw storage error and returns the sanitized internal
// error that crosses the resolver boundary.
func (r *Resolver) storeFailure(msg string, err error) error {
	r.logger.Error(msg, "error", err)
	return newStoreError()
}
