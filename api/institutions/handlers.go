package institutions

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/services/courses"
	"github.com/thereadylab/readylab-api/internal/services/institutions"
)

// CreateInstitutionRequest is the payload for institution creation
type CreateInstitutionRequest struct {
	Name        string `json:"name" binding:"required,min=1"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
	Website     string `json:"website"`
}

// UpdateInstitutionRequest carries optional institution field changes
type UpdateInstitutionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logo_url"`
	Website     *string `json:"website"`
}

// MemberEmailRequest names a member by email
type MemberEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// List handles institution listing
// @Summary List institutions
// @Tags institutions
// @Produce json
// @Success 200 {object} types.ListResponse
// @Router /api/v1/institutions [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := types.ParsePagination(c)
		items, total, err := deps.InstitutionService.ListInstitutions(c.Request.Context(), page, limit)
		if err != nil {
			types.SendInternalError(c, "Failed to list institutions")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: items, Count: len(items), Total: total, Page: page, Limit: limit})
	}
}

// Get handles single-institution retrieval
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		institution, err := deps.InstitutionService.GetInstitution(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Institution not found")
			return
		}
		types.SendSuccess(c, institution)
	}
}

// Create handles institution creation
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateInstitutionRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}
		institution, err := deps.InstitutionService.CreateInstitution(c.Request.Context(), req.Name, req.Description, req.LogoURL, req.Website)
		if err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendCreated(c, institution)
	}
}

// Update handles institution updates
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		var req UpdateInstitutionRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		institution, err := deps.InstitutionService.UpdateInstitution(c.Request.Context(), id, institutions.InstitutionUpdate{
			Name:        req.Name,
			Description: req.Description,
			LogoURL:     req.LogoURL,
			Website:     req.Website,
		})
		if err != nil {
			if errors.Is(err, institutions.ErrInstitutionNotFound) {
				types.SendNotFound(c, "Institution not found")
				return
			}
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendSuccess(c, institution)
	}
}

// Delete handles institution deletion
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		if err := deps.InstitutionService.DeleteInstitution(c.Request.Context(), id); err != nil {
			if errors.Is(err, institutions.ErrInstitutionNotFound) {
				types.SendNotFound(c, "Institution not found")
				return
			}
			types.SendInternalError(c, "Failed to delete institution")
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}

// InviteMember handles inviting a member by email
// @Summary Invite a member to an institution
// @Tags institutions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Institution ID"
// @Param request body MemberEmailRequest true "Member email"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} types.ErrorResponse "Already invited"
// @Router /api/v1/institutions/{id}/members [post]
func InviteMember(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		var req MemberEmailRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		member, err := deps.InstitutionService.InviteMember(c.Request.Context(), id, req.Email)
		if err != nil {
			switch {
			case errors.Is(err, institutions.ErrInstitutionNotFound):
				types.SendNotFound(c, "Institution not found")
			case errors.Is(err, institutions.ErrAlreadyInvited):
				types.SendConflict(c, "Email already invited")
			default:
				types.SendBadRequest(c, err.Error())
			}
			return
		}
		types.SendCreated(c, member)
	}
}

// RemoveMember handles removing a member by email
func RemoveMember(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		var req MemberEmailRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		if err := deps.InstitutionService.RemoveMember(c.Request.Context(), id, req.Email); err != nil {
			if errors.Is(err, institutions.ErrMemberNotFound) {
				types.SendNotFound(c, "Member not found")
				return
			}
			types.SendInternalError(c, "Failed to remove member")
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

		members, total, err := deps.InstitutionService.ListMembers(c.Request.Context(), id, page, limit)
		if err != nil {
			if errors.Is(err, institutions.ErrInstitutionNotFound) {
				types.SendNotFound(c, "Institution not found")
				return
			}
			types.SendInternalError(c, "Failed to list members")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: members, Count: len(members), Total: total, Page: page, Limit: limit})
	}
}

// ListCourses handles listing the published courses of an institution
func ListCourses(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		page, limit := types.ParsePagination(c)

		items, total, err := deps.CourseService.ListCourses(c.Request.Context(), courses.ListOptions{
			Page:          page,
			Limit:         limit,
			InstitutionID: id,
			PublishedOnly: true,
		})
		if err != nil {
			types.SendInternalError(c, "Failed to list courses")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: items, Count: len(items), Total: total, Page: page, Limit: limit})
	}
}
