package posts

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
)

// RegisterCommunityRoutes attaches the per-community post endpoints
func RegisterCommunityRoutes(communityGroup *gin.RouterGroup, deps *types.Dependencies) {
	authed := auth.Middleware(deps.AuthService)

	communityGroup.GET("/:id/posts", ListByCommunity(deps))
	communityGroup.POST("/:id/posts", authed, Create(deps))
}

// RegisterRoutes sets up the post endpoints
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	authed := auth.Middleware(deps.AuthService)

	router.GET("/:id", Get(deps))
	router.GET("/:id/comments", ListComments(deps))

	router.PATCH("/:id", authed, Update(deps))
	router.DELETE("/:id", authed, Delete(deps))
	router.POST("/:id/pin", authed, SetPinned(deps, true))
	router.DELETE("/:id/pin", authed, SetPinned(deps, false))
	router.POST("/:id/comments", authed, AddComment(deps))
	router.DELETE("/:id/comments/:commentId", authed, DeleteComment(deps))
	router.POST("/:id/like", authed, Like(deps))
	router.DELETE("/:id/like", authed, Unlike(deps))
}
