package middleware

import (
	"net/http"

	"mediateka/pkg/permission"
	"mediateka/pkg/utils"

	"go.uber.org/zap"
)

// Permission runs the policy's collection-level check against the identity
// Identify stored. Anonymous denials read as 401, authenticated ones as 403.
// Record-level checks happen later, in the services, once the record is
// loaded.
func Permission(policy permission.Policy, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, _ := utils.GetIdentityFromContext(r.Context())

			req := permission.Request{
				Method:   r.Method,
				Identity: ident,
			}

			if !policy.Authorize(req) {
				if !ident.Authenticated {
					utils.ResponseUnauthorized(w, "Authentication required")
					return
				}

				logger.Warn("Request denied by policy",
					zap.String("username", ident.Username),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				utils.ResponseForbidden(w, "You do not have permission to perform this action")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
