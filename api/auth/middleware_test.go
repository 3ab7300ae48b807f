package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/auth"
)

func newTestRouter(service *auth.Service, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := []gin.HandlerFunc{Middleware(service)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		userID, _ := CurrentUserID(c)
		role, _ := CurrentRole(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	})

	router.GET("/protected", handlers...)
	return router
}

func issueTestToken(t *testing.T, service *auth.Service, id uint, role models.UserRole) string {
	token, err := service.IssueToken(&models.User{
		Model: gorm.Model{ID: id},
		Email: "user@example.com",
		Role:  role,
	})
	require.NoError(t, err)
	return token
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware(t *testing.T) {
	service := auth.NewService("test-secret", "readylab", time.Hour)

	t.Run("rejects missing token", func(t *testing.T) {
		router := newTestRouter(service)
		w := doRequest(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		router := newTestRouter(service)
		w := doRequest(router, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := auth.NewService("other-secret", "readylab", time.Hour)
		router := newTestRouter(service)
		w := doRequest(router, issueTestToken(t, other, 1, models.RoleStudent))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("passes identity to the handler", func(t *testing.T) {
		router := newTestRouter(service)
		w := doRequest(router, issueTestToken(t, service, 7, models.RoleStudent))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
		assert.Contains(t, w.Body.String(), `"role":"student"`)
	})
}

func TestRequireRole(t *testing.T) {
	service := auth.NewService("test-secret", "readylab", time.Hour)

	t.Run("instructor token reaches instructor routes", func(t *testing.T) {
		router := newTestRouter(service, models.RoleInstructor, models.RoleAdmin)
		w := doRequest(router, issueTestToken(t, service, 7, models.RoleInstructor))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("admin token reaches instructor routes", func(t *testing.T) {
		router := newTestRouter(service, models.RoleInstructor, models.RoleAdmin)
		w := doRequest(router, issueTestToken(t, service, 7, models.RoleAdmin))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("student token is forbidden", func(t *testing.T) {
		router := newTestRouter(service, models.RoleInstructor, models.RoleAdmin)
		w := doRequest(router, issueTestToken(t, service, 7, models.RoleStudent))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unauthenticated request is rejected before the role check", func(t *testing.T) {
		router := newTestRouter(service, models.RoleAdmin)
		w := doRequest(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOptionalMiddleware(t *testing.T) {
	service := auth.NewService("test-secret", "readylab", time.Hour)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/public", OptionalMiddleware(service), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authenticated": IsAuthenticated(c)})
	})

	t.Run("no token still passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.Header.Set("Authorization", "Bearer "+issueTestToken(t, service, 7, models.RoleStudent))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":true`)
	})

	t.Run("invalid token does not reject", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})
}
