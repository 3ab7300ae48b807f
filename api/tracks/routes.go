package tracks

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
)

// RegisterRoutes sets up the learning track endpoints
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	authed := auth.Middleware(deps.AuthService)
	admin := auth.RequireRole(models.RoleAdmin)

	router.GET("", auth.OptionalMiddleware(deps.AuthService), List(deps))
	router.GET("/:id", auth.OptionalMiddleware(deps.AuthService), Get(deps))

	router.POST("", authed, admin, Create(deps))
	router.PATCH("/:id", authed, admin, Update(deps))
	router.DELETE("/:id", authed, admin, Delete(deps))
	router.POST("/:id/courses", authed, admin, AddCourse(deps))
	router.DELETE("/:id/courses/:courseId", authed, admin, RemoveCourse(deps))
	router.PUT("/:id/courses/reorder", authed, admin, ReorderCourses(deps))
}
