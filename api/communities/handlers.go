package communities

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/communities"
)

// CreateCommunityRequest is the payload for community creation
type CreateCommunityRequest struct {
	Name        string `json:"name" binding:"required,min=1"`
	Description string `json:"description"`
	CourseID    *uint  `json:"course_id"`
}

// UpdateCommunityRequest carries optional community field changes
type UpdateCommunityRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// SetRoleRequest names the role to assign to a member
type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// isModerator reports whether the caller moderates the community
func isModerator(c *gin.Context, deps *types.Dependencies, communityID uint) bool {
	if role, ok := auth.CurrentRole(c); ok && role == models.RoleAdmin {
		return true
	}
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		return false
	}
	member, err := deps.CommunityService.GetMembership(c.Request.Context(), communityID, userID)
	return err == nil && member.Role == models.MemberRoleModerator
}

// List handles community listing
// @Summary List communities
// @Tags communities
// @Produce json
// @Success 200 {object} types.ListResponse
// @Router /api/v1/communities [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := types.ParsePagination(c)
		items, total, err := deps.CommunityService.ListCommunities(c.Request.Context(), page, limit)
		if err != nil {
			types.SendInternalError(c, "Failed to list communities")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: items, Count: len(items), Total: total, Page: page, Limit: limit})
	}
}

// Get handles single-community retrieval
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		community, err := deps.CommunityService.GetCommunity(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Community not found")
			return
		}
		types.SendSuccess(c, community)
	}
}

// Create handles community creation
// @Summary Create a community
// @Tags communities
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateCommunityRequest true "Community details"
// @Success 201 {object} map[string]interface{}
// @Router /api/v1/communities [post]
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCommunityRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		community, err := deps.CommunityService.CreateCommunity(c.Request.Context(), req.Name, req.Description, req.CourseID, userID)
		if err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendCreated(c, community)
	}
}

// Update handles community updates by moderators
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		if !isModerator(c, deps, id) {
			types.SendForbidden(c, "Only a moderator may edit the community")
			return
		}

		var req UpdateCommunityRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		community, err := deps.CommunityService.UpdateCommunity(c.Request.Context(), id, communities.CommunityUpdate{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			if errors.Is(err, communities.ErrCommunityNotFound) {
				types.SendNotFound(c, "Community not found")
				return
			}
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendSuccess(c, community)
	}
}

// Delete handles community deletion by moderators
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		if !isModerator(c, deps, id) {
			types.SendForbidden(c, "Only a moderator may delete the community")
			return
		}
		if err := deps.CommunityService.DeleteCommunity(c.Request.Context(), id); err != nil {
			if errors.Is(err, communities.ErrCommunityNotFound) {
				types.SendNotFound(c, "Community not found")
				return
			}
			types.SendInternalError(c, "Failed to delete community")
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}

// Join handles joining a community; joining twice is a no-op
// @Summary Join a community
// @Tags communities
// @Security BearerAuth
// @Produce json
// @Param id path int true "Community ID"
// @Success 201 {object} map[string]interface{}
// @Router /api/v1/communities/{id}/join [post]
func Join(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		member, err := deps.CommunityService.Join(c.Request.Context(), id, userID)
		if err != nil {
			if errors.Is(err, communities.ErrCommunityNotFound) {
				types.SendNotFound(c, "Community not found")
				return
			}
			types.SendInternalError(c, "Failed to join community")
			return
		}
		types.SendCreated(c, member)
	}
}

// Leave handles leaving a community
func Leave(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		if err := deps.CommunityService.Leave(c.Request.Context(), id, userID); err != nil {
			if errors.Is(err, communities.ErrNotMember) {
				types.SendNotFound(c, "Not a member of this community")
				return
			}
			types.SendInternalError(c, "Failed to leave community")
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}

// ListMembers handles member listing
func ListMembers(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		page, limit := types.ParsePagination(c)

		members, total, err := deps.CommunityService.ListMembers(c.Request.Context(), id, page, limit)
		if err != nil {
			if errors.Is(err, communities.ErrCommunityNotFound) {
				types.SendNotFound(c, "Community not found")
				return
			}
			types.SendInternalError(c, "Failed to list members")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: members, Count: len(members), Total: total, Page: page, Limit: limit})
	}
}

// SetMemberRole handles promoting or demoting a member
func SetMemberRole(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		targetID, ok := types.ParseUintParam(c, "userId")
		if !ok {
			return
		}
		if !isModerator(c, deps, id) {
			types.SendForbidden(c, "Only a moderator may change member roles")
			return
		}

		var req SetRoleRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		member, err := deps.CommunityService.SetMemberRole(c.Request.Context(), id, targetID, models.MemberRole(req.Role))
		if err != nil {
			if errors.Is(err, communities.ErrMemberNotFound) {
				types.SendNotFound(c, "Member not found")
				return
			}
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendSuccess(c, member)
	}
}
