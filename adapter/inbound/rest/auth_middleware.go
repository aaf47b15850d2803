package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/bantuankita/bantuankita/config"
	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/inbound"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type contextKey string

const UserContextKey contextKey = "user"

type AuthMiddleware struct {
	authService inbound.AuthService
	logger      outbound.Logger
	enabled     bool
}

func NewAuthMiddleware(authService inbound.AuthService, logger outbound.Logger, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		logger:      logger,
		enabled:     cfg.Security.EnableAuthentication,
	}
}

func (m *AuthMiddleware) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// Middleware resolves the bearer token into a user on the request context
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		token := m.extractToken(r)
		if token == "" {
			m.unauthorized(w, "missing token")
			return
		}

		user, err := m.authService.ValidateToken(token)
		if err != nil {
			m.unauthorized(w, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole lets role and admins through
func (m *AuthMiddleware) RequireRole(role model.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.enabled {
				next.ServeHTTP(w, r)
				return
			}

			user := GetUserFromContext(r.Context())
			if user == nil {
				m.forbidden(w, "user not found in context")
				return
			}

			if user.Role != role && user.Role != model.RoleAdmin {
				m.forbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireModerator lets through enabled users allowed to review offers
func (m *AuthMiddleware) RequireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		user := GetUserFromContext(r.Context())
		if user == nil {
			m.forbidden(w, "user not found in context")
			return
		}
		if !user.CanModerate() {
			m.forbidden(w, "insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func GetUserFromContext(ctx context.Context) *model.User {
	if user, ok := ctx.Value(UserContextKey).(*model.User); ok {
		return user
	}
	return nil
}

// extractToken reads the Authorization header. Browsers cannot set headers on
// websocket upgrades, so the token query parameter is accepted there.
func (m *AuthMiddleware) extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			return r.URL.Query().Get("token")
		}
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

func (m *AuthMiddleware) unauthorized(w http.ResponseWriter, message string) {
	m.logger.Warn("Unauthorized access", "message", message)
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized", "message": message})
}

func (m *AuthMiddleware) forbidden(w http.ResponseWriter, message string) {
	m.logger.Warn("Forbidden access", "message", message)
	writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden", "message": message})
}
