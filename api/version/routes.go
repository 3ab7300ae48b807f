package version

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/types"
)

// RegisterRoutes registers version routes. The root path answers with the
// same payload so a bare GET on the host shows what is running.
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies) {
	engine.GET("/version", Get())
	engine.GET("/", Get())
}
