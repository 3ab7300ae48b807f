package events

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
)

// RegisterRoutes sets up the live event endpoints
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	authed := auth.Middleware(deps.AuthService)
	host := auth.RequireRole(models.RoleInstructor, models.RoleAdmin)

	router.GET("", List(deps))
	router.GET("/:id", auth.OptionalMiddleware(deps.AuthService), Get(deps))

	router.POST("", authed, host, Create(deps))
	router.PATCH("/:id", authed, Update(deps))
	router.DELETE("/:id", authed, Cancel(deps))

	router.POST("/:id/register", authed, Register(deps))
	router.DELETE("/:id/register", authed, Unregister(deps))
	router.GET("/:id/attendees", authed, ListAttendees(deps))
}
