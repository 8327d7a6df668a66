// Package middleware holds the API-specific HTTP middleware: bearer session
// authentication and per-client rate limiting.
package middleware

import (
	"context"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/response"
)

type contextKey string

const principalKey contextKey = "principal"

// ErrNotAuthenticated is written when a request lacks a valid bearer token.
var ErrNotAuthenticated = apperrors.Unauthorized("Not authorized. Send the header Authorization: Bearer <token>")

// RequireSession resolves the Authorization header against st and rejects
// the request with 401 unless it names a live session.
func RequireSession(st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := st.ResolveBearer(r.Header.Get("Authorization"))
			if !ok {
				response.Error(w, ErrNotAuthenticated)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func WithPrincipal(ctx context.Context, p store.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal RequireSession stored in ctx.
func PrincipalFrom(ctx context.Context) (store.Principal, bool) {
	p, ok := ctx.Value(principalKey).(store.Principal)
	return p, ok
}
