package admin

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/jobs"
	"github.com/thereadylab/readylab-api/internal/services/users"
)

// Stats handles the platform overview counts
// @Summary Platform statistics
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/stats [get]
func Stats(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := deps.DB.WithContext(c.Request.Context())

		counts := gin.H{}
		for name, model := range map[string]interface{}{
			"users":       &models.User{},
			"courses":     &models.Course{},
			"lessons":     &models.Lesson{},
			"enrollments": &models.Enrollment{},
			"communities": &models.Community{},
			"events":      &models.LiveEvent{},
		} {
			var n int64
			if err := db.Model(model).Count(&n).Error; err != nil {
				log.Printf("[WARN] Failed to count %s: %v", name, err)
				continue
			}
			counts[name] = n
		}

		jobCounts, err := deps.JobService.CountByStatus(c.Request.Context())
		if err != nil {
			log.Printf("[WARN] Failed to count jobs: %v", err)
		} else {
			counts["jobs"] = jobCounts
		}

		types.SendSuccess(c, counts)
	}
}

// ListUsers handles paginated user listing
func ListUsers(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := types.ParsePagination(c)
		items, total, err := deps.UserService.ListUsers(c.Request.Context(), page, limit)
		if err != nil {
			types.SendInternalError(c, "Failed to list users")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: items, Count: len(items), Total: total, Page: page, Limit: limit})
	}
}

// SetUserActive handles activating or deactivating an account
// @Summary Activate or deactivate a user
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/users/{id}/activate [post]
func SetUserActive(deps *types.Dependencies, active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		if err := deps.UserService.SetActive(c.Request.Context(), id, active); err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				types.SendNotFound(c, "User not found")
				return
			}
			types.SendInternalError(c, "Failed to update user")
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK, "active": active})
	}
}

// GetJob handles background job inspection
// @Summary Get a background job
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} types.JobStatusResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/admin/jobs/{id} [get]
func GetJob(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		job, err := deps.JobService.GetJob(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Job not found")
			return
		}
		types.SendSuccess(c, job)
	}
}

// RetryJob handles re-queuing a failed job
func RetryJob(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		job, err := deps.JobService.RetryFailedJob(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				types.SendNotFound(c, "Job not found")
				return
			}
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendSuccess(c, job)
	}
}

// DeleteJob handles removing a permanently failed job
func DeleteJob(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		if err := deps.JobService.DeletePermanentlyFailedJob(c.Request.Context(), id); err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				types.SendNotFound(c, "Job not found")
				return
			}
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}
