package webhooks

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/types"
)

// RegisterRoutes sets up the provider webhook endpoints. These are not under
// /api/v1 and carry their own HMAC authentication instead of bearer tokens.
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.POST("/video", Video(deps))
	router.POST("/payments", Payments(deps))
}
