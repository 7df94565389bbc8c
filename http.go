package supportdesk

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// DefaultContextKey is where the middleware stores the resolved user in the
// request locals.
const DefaultContextKey = "auth_user"

// RouteResolver guards routes with the session resolver. Every request
// re-resolves the Authorization header; nothing is cached between requests.
type RouteResolver struct {
	resolver     *Resolver
	contextKey   string
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewRouteResolver(resolver *Resolver) *RouteResolver {
	r := &RouteResolver{
		resolver:   resolver,
		contextKey: DefaultContextKey,
		Logger:     defLogger{},
	}
	r.ErrorHandler = r.defaultErrHandler
	return r
}

func (r *RouteResolver) WithContextKey(key string) *RouteResolver {
	if key != "" {
		r.contextKey = key
	}
	return r
}

func (r *RouteResolver) WithLogger(logger Logger) *RouteResolver {
	r.Logger = logger
	return r
}

// ProtectedRoute resolves the Authorization header and stores the user in
// both the request locals and the request context before the handler runs.
func (r *RouteResolver) ProtectedRoute() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			header := c.GetString(router.HeaderAuthorization, "")

			user, err := r.resolver.ResolveHeader(c.Context(), header)
			if err != nil {
				return r.ErrorHandler(c, err)
			}

			c.Locals(r.contextKey, user)
			c.SetContext(WithContext(c.Context(), user))

			return hf(c)
		}
	}
}

// GetRouterUser retrieves the user the middleware stored in the request
// locals.
func GetRouterUser(c router.Context, key string) (*User, error) {
	val := c.Locals(key)
	if val == nil {
		return nil, ErrMissingAuthHeader
	}

	user, ok := val.(*User)
	if user == nil || !ok {
		return nil, ErrInvalidToken
	}

	return user, nil
}

func (r *RouteResolver) defaultErrHandler(c router.Context, err error) error {
	richErr := AsRichError(err)

	r.Logger.Info(
		"Authentication rejected",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"details", print.MaybePrettyJSON(richErr.Metadata),
		"path", c.OriginalURL(),
	)

	return WriteError(c, richErr)
}

// AsRichError normalizes any error into a rich error. Unknown errors become a
// generic 401 so internals never leak through the auth surface.
func AsRichError(err error) *errors.Error {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr
	}

	return errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
		WithTextCode(TextCodeInvalidToken).
		WithCode(errors.CodeUnauthorized)
}

// WriteError renders a rich error as the API's JSON error envelope, using the
// error's code as the HTTP status.
func WriteError(c router.Context, richErr *errors.Error) error {
	status := richErr.Code
	if status == 0 {
		status = errors.CodeInternal
	}

	return c.JSON(status, map[string]any{
		"error": map[string]any{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
			"status":    status,
		},
	})
}
