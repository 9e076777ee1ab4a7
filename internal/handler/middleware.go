package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/jitterlabs/order-api/internal/domain/user"
)

// userKey is the context key for the authenticated user.
type userKey struct{}

// UserFromContext returns the authenticated user injected by requireAuth.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userKey{}).(*user.User)
	return u, ok
}

// requireAuth resolves the bearer token to a stored user and injects it into
// the request context. Missing or invalid credentials are a 401; the response
// does not say which.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		u, err := h.auth.UserFromToken(r.Context(), token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
