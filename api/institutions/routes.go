package institutions

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
)

// RegisterRoutes sets up the institution endpoints
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	authed := auth.Middleware(deps.AuthService)
	admin := auth.RequireRole(models.RoleAdmin)

	router.GET("", List(deps))
	router.GET("/:id", Get(deps))
	router.GET("/:id/courses", ListCourses(deps))

	router.POST("", authed, admin, Create(deps))
	router.PATCH("/:id", authed, admin, Update(deps))
	router.DELETE("/:id", authed, admin, Delete(deps))
	router.POST("/:id/members", authed, admin, InviteMember(deps))
	router.DELETE("/:id/members", authed, admin, RemoveMember(deps))
	router.GET("/:id/members", authed, admin, ListMembers(deps))
}
