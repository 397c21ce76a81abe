package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/3025972301/scratch-viwe/internal/httputil"
)

type contextKey string

// ClaimsKey is the context key for the decoded token claims
const ClaimsKey contextKey = "auth_claims"

const bearerPrefix = "Bearer "

// Middleware requires a valid "Authorization: Bearer <token>" header on every
// request it wraps. A missing or malformed header and an invalid token get
// distinct 401 messages. Decoded claims are attached to the request context.
func Middleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				logger.Warn("missing or malformed authorization header", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, "authorization required")
				return
			}

			claims, err := service.VerifyToken(strings.TrimPrefix(authHeader, bearerPrefix))
			if err != nil {
				logger.Warn("invalid token", "path", r.URL.Path, "error", err)
				httputil.RespondWithError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts the decoded claims set by Middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}
