package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
)

// RegisterRoutes sets up the admin endpoints; every route requires admin
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.Use(auth.Middleware(deps.AuthService), auth.RequireRole(models.RoleAdmin))

	router.GET("/stats", Stats(deps))
	router.GET("/users", ListUsers(deps))
	router.POST("/users/:id/activate", SetUserActive(deps, true))
	router.POST("/users/:id/deactivate", SetUserActive(deps, false))

	router.GET("/jobs/:id", GetJob(deps))
	router.POST("/jobs/:id/retry", RetryJob(deps))
	router.DELETE("/jobs/:id", DeleteJob(deps))
}
