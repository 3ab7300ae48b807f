package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/types"
)

// RegisterRoutes registers auth endpoints
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.POST("/register", Register(deps))
	router.POST("/login", Login(deps))
	router.GET("/me", Middleware(deps.AuthService), Me(deps))
}
