package communities

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
)

// RegisterRoutes sets up the community endpoints
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	authed := auth.Middleware(deps.AuthService)

	router.GET("", List(deps))
	router.GET("/:id", Get(deps))
	router.GET("/:id/members", ListMembers(deps))

	router.POST("", authed, Create(deps))
	router.PATCH("/:id", authed, Update(deps))
	router.DELETE("/:id", authed, Delete(deps))
	router.POST("/:id/join", authed, Join(deps))
	router.DELETE("/:id/join", authed, Leave(deps))
	router.PUT("/:id/members/:userId/role", authed, SetMemberRole(deps))
}
