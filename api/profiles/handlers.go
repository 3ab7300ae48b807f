package profiles

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/users"
)

// UpdateProfileRequest is the payload for profile updates
type UpdateProfileRequest struct {
	FullName  string `json:"full_name" binding:"required,min=1"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// Get returns a user's public profile
// @Summary Get a profile
// @Tags profiles
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/profiles/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		user, err := deps.UserService.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				types.SendNotFound(c, "User not found")
				return
			}
			types.SendInternalError(c, "Failed to load profile")
			return
		}
		types.SendSuccess(c, user)
	}
}

// Update updates a profile. Users may edit their own; admins may edit anyone.
// @Summary Update a profile
// @Tags profiles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} types.ErrorResponse
// @Router /api/v1/profiles/{id} [patch]
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		userID, _ := auth.CurrentUserID(c)
		role, _ := auth.CurrentRole(c)
		if userID != id && role != models.RoleAdmin {
			types.SendForbidden(c, "Cannot edit another user's profile")
			return
		}

		var req UpdateProfileRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		user, err := deps.UserService.UpdateProfile(c.Request.Context(), id, req.FullName, req.Bio, req.AvatarURL)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				types.SendNotFound(c, "User not found")
				return
			}
			types.SendInternalError(c, "Failed to update profile")
			return
		}
		types.SendSuccess(c, user)
	}
}
