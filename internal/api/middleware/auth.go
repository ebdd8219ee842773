package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ijo-project/ijo-backend/internal/api/apierr"
	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/services/auth"
)

type contextKey string

const accountContextKey contextKey = "account"

// Auth rejects requests without a valid bearer token for an active account
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			account, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
		})
	}
}

// OptionalAuth attaches the account when a valid token is present and otherwise lets the request through
func OptionalAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				if account, err := authService.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(WithAccount(r.Context(), account))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must run after Auth
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := GetAccount(r.Context())
		if account == nil {
			apierr.WriteError(w, apierr.NewUnauthorizedError())
			return
		}
		if !account.IsAdmin() {
			apierr.WriteError(w, model.ErrNotAdmin)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken reads the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithAccount stores the authenticated account in ctx
func WithAccount(ctx context.Context, account *model.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// GetAccount returns the authenticated account from the request context
func GetAccount(ctx context.Context) *model.Account {
	account, _ := ctx.Value(accountContextKey).(*model.Account)
	return account
}

// MustGetAccount returns the authenticated account or panics
func MustGetAccount(ctx context.Context) *model.Account {
	account := GetAccount(ctx)
	if account == nil {
		panic("no account in context - auth middleware not applied?")
	}
	return account
}
