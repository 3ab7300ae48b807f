package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Get handles version requests
func Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "The Ready Lab API",
			"version":     "1.0.0",
			"description": "Backend for The Ready Lab online education platform",
			"status":      "running",
		})
	}
}
