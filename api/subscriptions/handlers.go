package subscriptions

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/subscriptions"
)

// CreatePlanRequest is the payload for plan creation
type CreatePlanRequest struct {
	Code       string `json:"code" binding:"required,min=1"`
	Name       string `json:"name" binding:"required,min=1"`
	PriceCents int    `json:"price_cents" binding:"min=0"`
	Interval   string `json:"interval" binding:"required,oneof=month year"`
}

// SubscribeRequest names the plan to subscribe to
type SubscribeRequest struct {
	PlanID uint `json:"plan_id" binding:"required"`
}

// ListPlans handles plan listing; inactive plans require admin
// @Summary List subscription plans
// @Tags subscriptions
// @Produce json
// @Success 200 {object} types.ListResponse
// @Router /api/v1/plans [get]
func ListPlans(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		activeOnly := true
		if role, ok := auth.CurrentRole(c); ok && role == models.RoleAdmin {
			activeOnly = c.Query("all") != "true"
		}

		plans, err := deps.SubscriptionService.ListPlans(c.Request.Context(), activeOnly)
		if err != nil {
			types.SendInternalError(c, "Failed to list plans")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: plans, Count: len(plans), Total: int64(len(plans))})
	}
}

// CreatePlan handles plan creation by admins
func CreatePlan(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreatePlanRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}
		plan, err := deps.SubscriptionService.CreatePlan(c.Request.Context(), req.Code, req.Name, req.PriceCents, req.Interval)
		if err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendCreated(c, plan)
	}
}

// DeactivatePlan handles retiring a plan
func DeactivatePlan(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		plan, err := deps.SubscriptionService.DeactivatePlan(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, subscriptions.ErrPlanNotFound) {
				types.SendNotFound(c, "Plan not found")
				return
			}
			types.SendInternalError(c, "Failed to deactivate plan")
			return
		}
		types.SendSuccess(c, plan)
	}
}

// Subscribe handles creating a pending subscription for the caller
// @Summary Subscribe to a plan
// @Tags subscriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body SubscribeRequest true "Plan to subscribe to"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} types.ErrorResponse "Already subscribed"
// @Router /api/v1/subscriptions [post]
func Subscribe(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubscribeRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		subscription, err := deps.SubscriptionService.Subscribe(c.Request.Context(), userID, req.PlanID)
		if err != nil {
			switch {
			case errors.Is(err, subscriptions.ErrPlanNotFound):
				types.SendNotFound(c, "Plan not found")
			case errors.Is(err, subscriptions.ErrPlanInactive):
				types.SendBadRequest(c, "Plan is no longer available")
			case errors.Is(err, subscriptions.ErrAlreadySubscribed):
				types.SendConflict(c, "An active subscription already exists")
			default:
				types.SendInternalError(c, "Failed to subscribe")
			}
			return
		}
		types.SendCreated(c, subscription)
	}
}

// ListMine handles listing the caller's subscriptions
func ListMine(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.CurrentUserID(c)
		items, err := deps.SubscriptionService.ListMySubscriptions(c.Request.Context(), userID)
		if err != nil {
			types.SendInternalError(c, "Failed to list subscriptions")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: items, Count: len(items), Total: int64(len(items))})
	}
}

// Cancel handles scheduling a cancellation at period end
// @Summary Cancel a subscription at period end
// @Tags subscriptions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Subscription ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/subscriptions/{id} [delete]
func Cancel(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		subscription, err := deps.SubscriptionService.CancelAtPeriodEnd(c.Request.Context(), id, userID)
		if err != nil {
			switch {
			case errors.Is(err, subscriptions.ErrSubscriptionNotFound):
				types.SendNotFound(c, "Subscription not found")
			case errors.Is(err, subscriptions.ErrNotSubscriber):
				types.SendForbidden(c, "Subscription belongs to another user")
			default:
				types.SendInternalError(c, "Failed to cancel subscription")
			}
			return
		}
		types.SendSuccess(c, subscription)
	}
}
