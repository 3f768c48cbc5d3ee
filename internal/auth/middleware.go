package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/redmonkez12/todo-api/internal/httputil"
	"github.com/redmonkez12/todo-api/internal/user"
)

// AuthHeader is the fixed header carrying the bearer token on requests and
// returned on token issuance.
const AuthHeader = "x-auth"

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey  ContextKey = "user"
	TokenContextKey ContextKey = "token"
)

// Middleware handles authentication for protected routes
type Middleware struct {
	service *Service
}

func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireAuth resolves the x-auth token to a user and binds both the user
// and the presented token to the request context. Decode failures surface
// their own message; an unknown token gets the generic one. Either way the
// request is rejected with 401.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(AuthHeader)
		if token == "" {
			httputil.RespondError(w, ErrNotAuthenticated.Error(), http.StatusUnauthorized)
			return
		}

		resolvedUser, err := m.service.ResolveByToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenMalformed),
				errors.Is(err, ErrInvalidSignature),
				errors.Is(err, ErrInvalidToken):
				httputil.RespondError(w, err.Error(), http.StatusUnauthorized)
			case errors.Is(err, ErrNotAuthenticated):
				httputil.RespondError(w, ErrNotAuthenticated.Error(), http.StatusUnauthorized)
			default:
				httputil.RespondError(w, "failed to authenticate request", http.StatusInternalServerError)
			}
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, resolvedUser)
		ctx = context.WithValue(ctx, TokenContextKey, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext extracts the authenticated user from the request context
func GetUserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*user.User)
	return u, ok
}

// GetTokenFromContext extracts the presented token from the request context
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenContextKey).(string)
	return token, ok
}
