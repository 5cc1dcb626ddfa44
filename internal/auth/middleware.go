package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/atlas-hrm/atlas-hrm/internal/shared"
)

// Middleware applies the gate's Authorize call at HTTP entry points, so every
// route invoking a capability goes through the same check the services rely on.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireCapability resolves the bearer token, authorizes the capability, and
// stores the session in the request context for downstream handlers.
func (m Middleware) RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := m.Service.Authorize(r.Context(), BearerToken(r), capability)
			if err != nil {
				shared.WriteDomainError(m.Logger, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithSession(r.Context(), sess)))
		})
	}
}

// BearerToken extracts the opaque session token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
