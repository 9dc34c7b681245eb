package middleware

import (
	"context"
	"net/http"

	"github.com/fluxynet/blog/internal/apperr"
	"github.com/fluxynet/blog/internal/auth"
	"github.com/fluxynet/blog/internal/logger"
	"github.com/fluxynet/blog/internal/session"
)

// unexported, collision-proof context key
type userContextKeyType struct{}

var userKey = userContextKeyType{}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (auth.User, bool) {
	u, ok := ctx.Value(userKey).(auth.User)
	return u, ok
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u auth.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

type AuthMiddleware struct {
	Sessions   session.Manager
	CookieName string
}

func NewAuthMiddleware(sessions session.Manager, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{Sessions: sessions, CookieName: cookieName}
}

// RequireAuth rejects requests without a live session with 401. Any session
// failure counts, including an unreachable store.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := session.TokenFromRequest(r, a.CookieName)
		if !ok {
			apperr.WriteProblem(w, r, http.StatusUnauthorized, apperr.PermissionDenied("no session"))
			return
		}

		user, err := a.Sessions.Session(r.Context(), token)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindConnection {
				logger.Error("session lookup failed", map[string]any{"error": err.Error()})
			}
			apperr.WriteProblem(w, r, http.StatusUnauthorized, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}
