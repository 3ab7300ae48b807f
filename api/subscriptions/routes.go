package subscriptions

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
)

// RegisterRoutes sets up the plan and subscription endpoints
func RegisterRoutes(planGroup, subscriptionGroup *gin.RouterGroup, deps *types.Dependencies) {
	authed := auth.Middleware(deps.AuthService)
	admin := auth.RequireRole(models.RoleAdmin)

	planGroup.GET("", auth.OptionalMiddleware(deps.AuthService), ListPlans(deps))
	planGroup.POST("", authed, admin, CreatePlan(deps))
	planGroup.DELETE("/:id", authed, admin, DeactivatePlan(deps))

	subscriptionGroup.GET("", authed, ListMine(deps))
	subscriptionGroup.POST("", authed, Subscribe(deps))
	subscriptionGroup.DELETE("/:id", authed, Cancel(deps))
}
