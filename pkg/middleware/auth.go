package middleware

import (
	"net/http"
	"strings"

	"sportify-backoffice/internal/data/repository"
	"sportify-backoffice/pkg/auth"
	"sportify-backoffice/pkg/utils"

	"go.uber.org/zap"
)

// DenyFunc writes the rejection for an unauthenticated request.
type DenyFunc func(w http.ResponseWriter, message string)

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	// EventSource cannot set headers, so streams pass the token in the query.
	if header == "" && r.Method == http.MethodGet {
		return r.URL.Query().Get("token")
	}
	return ""
}

// Authenticate verifies the bearer token and stores the caller uid in the request context.
// A nil deny writes the standard envelope.
func Authenticate(verifier auth.TokenVerifier, logger *zap.Logger, deny DenyFunc) func(http.Handler) http.Handler {
	if deny == nil {
		deny = utils.ResponseUnauthorized
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				deny(w, "Missing authorization token")
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Warn("Rejected bearer token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				deny(w, "Invalid or expired token")
				return
			}

			ctx := utils.SetUserContext(r.Context(), identity.UID, "")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin re-reads the admin record on every request; only active admins pass.
func Admin(adminRepo repository.AdminRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			admin, err := adminRepo.FindByUID(r.Context(), userID)
			if err != nil {
				logger.Error("Admin check: failed to get admin record",
					zap.Error(err), zap.String("user_id", userID))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if !admin.IsActiveAdmin() {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("user_id", userID),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID, admin.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
