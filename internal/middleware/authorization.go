package middleware

import (
	"net/http"

	"electra/internal/domain"

	"go.uber.org/zap"
)

// RequireAdmin ensures the caller holds the admin role. Rejections are a
// distinct access-denied response, never silently downgraded.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]domain.Role{domain.RoleAdmin}, logger)
}

// RequireRole ensures the caller holds one of the allowed roles
func RequireRole(allowedRoles []domain.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				respondWithError(w, http.StatusForbidden, "access denied")
				return
			}

			allowed := false
			for _, allowedRole := range allowedRoles {
				if domain.Role(role) == allowedRole {
					allowed = true
					break
				}
			}

			if !allowed {
				logger.Warn("Role not authorized for this endpoint",
					zap.String("role", role),
					zap.String("path", r.URL.Path),
				)
				respondWithError(w, http.StatusForbidden, "access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
