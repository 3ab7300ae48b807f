package lessons

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
)

// RegisterRoutes sets up the lesson endpoints
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	authed := auth.Middleware(deps.AuthService)
	instructor := auth.RequireRole(models.RoleInstructor, models.RoleAdmin)

	router.GET("/:id", auth.OptionalMiddleware(deps.AuthService), Get(deps))
	router.GET("/:id/captions", auth.OptionalMiddleware(deps.AuthService), ListCaptions(deps))

	router.PATCH("/:id", authed, instructor, Update(deps))
	router.DELETE("/:id", authed, instructor, Delete(deps))
	router.POST("/:id/captions", authed, instructor, RequestCaption(deps))

	router.GET("/:id/playback", auth.OptionalMiddleware(deps.AuthService), Playback(deps))
	router.POST("/:id/complete", authed, Complete(deps))
}
