package enrollments

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
)

// RegisterRoutes sets up the enrollment endpoints
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	authed := auth.Middleware(deps.AuthService)

	router.GET("", authed, ListMine(deps))
	router.GET("/:courseId", authed, GetForCourse(deps))
}
