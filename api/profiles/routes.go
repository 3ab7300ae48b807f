package profiles

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
)

// RegisterRoutes registers profile routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("/:id", Get(deps))
	router.PATCH("/:id", auth.Middleware(deps.AuthService), Update(deps))
}
