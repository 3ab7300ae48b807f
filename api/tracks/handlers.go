package tracks

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/tracks"
)

// CreateTrackRequest is the payload for track creation
type CreateTrackRequest struct {
	Title       string `json:"title" binding:"required,min=1"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
}

// UpdateTrackRequest carries optional track field changes
type UpdateTrackRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CoverURL    *string `json:"cover_url"`
	Published   *bool   `json:"published"`
}

// TrackCourseRequest names a course to add to a track
type TrackCourseRequest struct {
	CourseID uint `json:"course_id" binding:"required"`
}

// ReorderCoursesRequest carries the full ordered list of course IDs
type ReorderCoursesRequest struct {
	CourseIDs []uint `json:"course_ids" binding:"required,min=1"`
}

// List handles track listing
// @Summary List learning tracks
// @Tags tracks
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} types.ListResponse
// @Router /api/v1/tracks [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := types.ParsePagination(c)

		publishedOnly := true
		if role, ok := auth.CurrentRole(c); ok && role == models.RoleAdmin {
			publishedOnly = false
		}

		items, total, err := deps.TrackService.ListTracks(c.Request.Context(), page, limit, publishedOnly)
		if err != nil {
			types.SendInternalError(c, "Failed to list tracks")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: items, Count: len(items), Total: total, Page: page, Limit: limit})
	}
}

// Get handles single-track retrieval
// @Summary Get a track
// @Tags tracks
// @Produce json
// @Param id path int true "Track ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/tracks/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		track, err := deps.TrackService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Track not found")
			return
		}
		if !track.Published {
			if role, ok := auth.CurrentRole(c); !ok || role != models.RoleAdmin {
				types.SendNotFound(c, "Track not found")
				return
			}
		}
		types.SendSuccess(c, track)
	}
}

// Create handles track creation
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTrackRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		userID, _ := auth.CurrentUserID(c)
		track, err := deps.TrackService.CreateTrack(c.Request.Context(), &models.Track{
			Title:       req.Title,
			Description: req.Description,
			CoverURL:    req.CoverURL,
			CreatedBy:   userID,
		})
		if err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendCreated(c, track)
	}
}

// Update handles track updates
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		var req UpdateTrackRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		track, err := deps.TrackService.UpdateTrack(c.Request.Context(), id, req.Title, req.Description, req.CoverURL, req.Published)
		if err != nil {
			if errors.Is(err, tracks.ErrTrackNotFound) {
				types.SendNotFound(c, "Track not found")
				return
			}
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendSuccess(c, track)
	}
}

// Delete handles track deletion
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		if err := deps.TrackService.DeleteTrack(c.Request.Context(), id); err != nil {
			if errors.Is(err, tracks.ErrTrackNotFound) {
				types.SendNotFound(c, "Track not found")
				return
			}
			types.SendInternalError(c, "Failed to delete track")
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}

// AddCourse handles adding a course to a track
func AddCourse(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		var req TrackCourseRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		if err := deps.TrackService.AddCourse(c.Request.Context(), id, req.CourseID); err != nil {
			switch {
			case errors.Is(err, tracks.ErrTrackNotFound):
				types.SendNotFound(c, "Track not found")
			case errors.Is(err, tracks.ErrCourseInTrack):
				types.SendConflict(c, "Course is already in this track")
			default:
				types.SendBadRequest(c, err.Error())
			}
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}

// RemoveCourse handles removing a course from a track
func RemoveCourse(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		courseID, ok := types.ParseUintParam(c, "courseId")
		if !ok {
			return
		}

		if err := deps.TrackService.RemoveCourse(c.Request.Context(), id, courseID); err != nil {
			if errors.Is(err, tracks.ErrCourseNotInTrack) || errors.Is(err, tracks.ErrTrackNotFound) {
				types.SendNotFound(c, "Course not in track")
				return
			}
			types.SendInternalError(c, "Failed to remove course")
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}

// ReorderCourses handles reordering the courses of a track
func ReorderCourses(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		var req ReorderCoursesRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		if err := deps.TrackService.ReorderCourses(c.Request.Context(), id, req.CourseIDs); err != nil {
			if errors.Is(err, tracks.ErrTrackNotFound) {
				types.SendNotFound(c, "Track not found")
				return
			}
			types.SendBadRequest(c, err.Error())
			return
		}

		track, err := deps.TrackService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendInternalError(c, "Failed to load track")
			return
		}
		types.SendSuccess(c, track)
	}
}
