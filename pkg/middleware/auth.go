package middleware

import (
	"net/http"
	"strings"

	"mediateka/internal/data/repository"
	"mediateka/pkg/auth"
	"mediateka/pkg/permission"
	"mediateka/pkg/utils"

	"go.uber.org/zap"
)

// Identify resolves the Authorization header into an identity for the rest
// of the chain. A missing header is fine and yields the anonymous identity;
// a present but broken or stale token is rejected outright. The user is
// loaded fresh from the store on every request so role changes and deletes
// take effect immediately.
func Identify(tokens auth.TokenManager, users repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				ctx := utils.SetIdentityContext(r.Context(), permission.Anonymous())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.ResponseUnauthorized(w, "Invalid authorization header. Use: Bearer <token>")
				return
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				logger.Warn("Token rejected", zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				logger.Warn("Token subject is not a user id", zap.String("subject", claims.Subject))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("Failed to load token user",
					zap.Error(err),
					zap.String("user_id", userID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if user == nil {
				logger.Warn("Token for a missing user", zap.String("user_id", userID.String()))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := utils.SetIdentityContext(r.Context(), permission.FromUser(user))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authenticate rejects anonymous requests. It expects Identify to have run
// earlier in the chain.
func Authenticate(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, _ := utils.GetIdentityFromContext(r.Context())
			if !ident.Authenticated {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
