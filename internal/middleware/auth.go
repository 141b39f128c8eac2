package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dentadmin/internal/config"
	"dentadmin/internal/models"
	"dentadmin/internal/repository"
	"dentadmin/internal/security"
	"dentadmin/internal/wire"
)

const (
	CtxClaims = "access_claims"
	CtxAdmin  = "current_admin"
	CtxUser   = "current_user"
)

// Auth validates the bearer token, checks the backing session row still
// exists, and loads the authenticated principal into the request context.
func Auth(cfg *config.AppConfig, admins *repository.AdminRepository, users *repository.UserRepository, sessions *repository.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			wire.AbortError(c, http.StatusUnauthorized, "missing token")
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTAccessSecret)
		if err != nil {
			wire.AbortError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		session, err := sessions.GetByID(c.Request.Context(), claims.SessionID)
		if err != nil {
			wire.AbortError(c, http.StatusUnauthorized, "session not found")
			return
		}
		if session.PrincipalID != claims.PrincipalID || string(session.PrincipalType) != claims.PrincipalType {
			wire.AbortError(c, http.StatusUnauthorized, "session mismatch")
			return
		}

		switch models.PrincipalType(claims.PrincipalType) {
		case models.PrincipalAdmin:
			admin, err := admins.GetByID(c.Request.Context(), claims.PrincipalID)
			if err != nil {
				wire.AbortError(c, http.StatusUnauthorized, "admin not found")
				return
			}
			c.Set(CtxAdmin, admin)
		case models.PrincipalUser:
			user, err := users.GetByID(c.Request.Context(), claims.PrincipalID)
			if err != nil {
				wire.AbortError(c, http.StatusUnauthorized, "user not found")
				return
			}
			c.Set(CtxUser, user)
		default:
			wire.AbortError(c, http.StatusUnauthorized, "unknown principal")
			return
		}

		_ = sessions.Touch(c.Request.Context(), session.ID, c.ClientIP(), c.GetHeader("User-Agent"))

		c.Set(CtxClaims, *claims)

		c.Next()
	}
}

// RequireAdmin gates admin-only routes.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentAdmin(c); !ok {
			wire.AbortError(c, http.StatusForbidden, "admin only")
			return
		}
		c.Next()
	}
}

// RequireSuper gates super-admin routes.
func RequireSuper() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := CurrentAdmin(c)
		if !ok || !admin.IsSuper {
			wire.AbortError(c, http.StatusForbidden, "super admin only")
			return
		}
		c.Next()
	}
}

func CurrentAdmin(c *gin.Context) (models.Admin, bool) {
	val, exists := c.Get(CtxAdmin)
	if !exists {
		return models.Admin{}, false
	}
	admin, ok := val.(models.Admin)
	return admin, ok
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(CtxUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}
