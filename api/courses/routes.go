package courses

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
)

// RegisterRoutes sets up the course endpoints
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	authed := auth.Middleware(deps.AuthService)
	instructor := auth.RequireRole(models.RoleInstructor, models.RoleAdmin)

	router.GET("", auth.OptionalMiddleware(deps.AuthService), List(deps))
	router.GET("/:id", auth.OptionalMiddleware(deps.AuthService), Get(deps))
	router.GET("/slug/:slug", auth.OptionalMiddleware(deps.AuthService), GetBySlug(deps))
	router.GET("/:id/lessons", auth.OptionalMiddleware(deps.AuthService), ListLessons(deps))

	router.POST("", authed, instructor, Create(deps))
	router.PATCH("/:id", authed, instructor, Update(deps))
	router.DELETE("/:id", authed, instructor, Delete(deps))
	router.POST("/:id/publish", authed, instructor, SetPublished(deps, true))
	router.POST("/:id/unpublish", authed, instructor, SetPublished(deps, false))
	router.POST("/:id/lessons", authed, instructor, CreateLesson(deps))
	router.PUT("/:id/lessons/reorder", authed, instructor, ReorderLessons(deps))

	router.POST("/:id/enroll", authed, Enroll(deps))
	router.DELETE("/:id/enroll", authed, Unenroll(deps))
}
