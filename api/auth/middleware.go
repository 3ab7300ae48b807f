package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/auth"
)

// Context keys set by the middleware
const (
	claimsKey = "claims"
	userIDKey = "user_id"
	roleKey   = "role"
)

// CurrentUserID returns the authenticated user's ID from the request context.
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// CurrentRole returns the authenticated user's role from the request context.
func CurrentRole(c *gin.Context) (models.UserRole, bool) {
	value, exists := c.Get(roleKey)
	if !exists {
		return "", false
	}
	role, ok := value.(models.UserRole)
	return role, ok
}

// IsAuthenticated reports whether the optional middleware established a user.
func IsAuthenticated(c *gin.Context) bool {
	_, ok := CurrentUserID(c)
	return ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func setIdentity(c *gin.Context, claims *auth.Claims) error {
	userID, err := claims.UserID()
	if err != nil {
		return err
	}
	c.Set(claimsKey, claims)
	c.Set(userIDKey, userID)
	c.Set(roleKey, models.UserRole(claims.Role))
	return nil
}

// Middleware validates the bearer token and rejects unauthenticated requests.
func Middleware(service *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			types.SendUnauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		claims, err := service.ValidateToken(token)
		if err != nil {
			types.SendUnauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}
		if err := setIdentity(c, claims); err != nil {
			types.SendUnauthorized(c, "Invalid token subject")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalMiddleware attaches identity when a valid token is present but
// never rejects the request. Handlers can vary behavior via IsAuthenticated.
func OptionalMiddleware(service *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := service.ValidateToken(token); err == nil {
				_ = setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRole rejects authenticated requests whose role is not in the allow
// list. It must run after Middleware.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			types.SendUnauthorized(c, "Unauthorized")
			c.Abort()
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		types.SendForbidden(c, "Insufficient permissions")
		c.Abort()
	}
}
