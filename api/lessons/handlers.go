package lessons

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/captions"
	"github.com/thereadylab/readylab-api/internal/services/enrollments"
	"github.com/thereadylab/readylab-api/internal/services/lessons"
)

// UpdateLessonRequest carries optional lesson field changes
type UpdateLessonRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	FreePreview *bool   `json:"free_preview"`
	AssetID     *string `json:"asset_id"`
}

// RequestCaptionRequest asks for a caption track in one language
type RequestCaptionRequest struct {
	Language string `json:"language" binding:"required,min=2,max=8"`
}

// loadLesson fetches the lesson and its owning course, sending the 404 itself
// when either is missing.
func loadLesson(c *gin.Context, deps *types.Dependencies) (*models.Lesson, *models.Course, bool) {
	id, ok := types.ParseUintParam(c, "id")
	if !ok {
		return nil, nil, false
	}

	lesson, err := deps.LessonService.GetByID(c.Request.Context(), id)
	if err != nil {
		types.SendNotFound(c, "Lesson not found")
		return nil, nil, false
	}
	course, err := deps.CourseService.GetByID(c.Request.Context(), lesson.CourseID)
	if err != nil {
		types.SendNotFound(c, "Lesson not found")
		return nil, nil, false
	}
	return lesson, course, true
}

func canManage(c *gin.Context, course *models.Course) bool {
	userID, _ := auth.CurrentUserID(c)
	role, _ := auth.CurrentRole(c)
	return role == models.RoleAdmin || course.InstructorID == userID
}

// canWatch reports whether the caller may access lesson content: free
// previews are open, otherwise enrollment (or ownership) is required.
func canWatch(c *gin.Context, deps *types.Dependencies, lesson *models.Lesson, course *models.Course) bool {
	if lesson.FreePreview {
		return true
	}
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		return false
	}
	if canManage(c, course) {
		return true
	}
	enrolled, err := deps.EnrollmentService.IsEnrolled(c.Request.Context(), userID, course.ID)
	return err == nil && enrolled
}

// Get handles single-lesson retrieval
// @Summary Get a lesson
// @Tags lessons
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/lessons/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, course, ok := loadLesson(c, deps)
		if !ok {
			return
		}
		if !course.Published && !canManage(c, course) {
			types.SendNotFound(c, "Lesson not found")
			return
		}
		types.SendSuccess(c, lesson)
	}
}

// Update handles lesson updates
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, course, ok := loadLesson(c, deps)
		if !ok {
			return
		}
		if !canManage(c, course) {
			types.SendForbidden(c, "Only the course instructor may edit lessons")
			return
		}

		var req UpdateLessonRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		updated, err := deps.LessonService.UpdateLesson(c.Request.Context(), lesson.ID, lessons.LessonUpdate{
			Title:       req.Title,
			Description: req.Description,
			FreePreview: req.FreePreview,
			AssetID:     req.AssetID,
		})
		if err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendSuccess(c, updated)
	}
}

// Delete handles lesson deletion
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, course, ok := loadLesson(c, deps)
		if !ok {
			return
		}
		if !canManage(c, course) {
			types.SendForbidden(c, "Only the course instructor may delete lessons")
			return
		}
		if err := deps.LessonService.DeleteLesson(c.Request.Context(), lesson.ID); err != nil {
			types.SendInternalError(c, "Failed to delete lesson")
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}

// Playback returns the streaming URL once the lesson's asset is ready
// @Summary Get lesson playback URL
// @Tags lessons
// @Security BearerAuth
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} types.ErrorResponse "Video not ready or lesson missing"
// @Router /api/v1/lessons/{id}/playback [get]
func Playback(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, course, ok := loadLesson(c, deps)
		if !ok {
			return
		}
		if !canWatch(c, deps, lesson, course) {
			types.SendForbidden(c, "Enroll in the course to watch this lesson")
			return
		}

		url, err := deps.LessonService.PlaybackURL(lesson)
		if err != nil {
			types.SendNotFound(c, "Video is not ready yet")
			return
		}
		types.SendSuccess(c, gin.H{
			"playback_url":     url,
			"duration_seconds": lesson.DurationSeconds,
		})
	}
}

// Complete records the caller's completion of the lesson
// @Summary Mark a lesson complete
// @Tags enrollments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/lessons/{id}/complete [post]
func Complete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		withProgress, err := deps.EnrollmentService.CompleteLesson(c.Request.Context(), userID, id)
		if err != nil {
			if errors.Is(err, lessons.ErrLessonNotFound) || errors.Is(err, enrollments.ErrEnrollmentNotFound) {
				types.SendNotFound(c, "Lesson or enrollment not found")
				return
			}
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendSuccess(c, withProgress)
	}
}

// ListCaptions lists caption tracks for a lesson
// @Summary List lesson captions
// @Tags captions
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} types.ListResponse
// @Router /api/v1/lessons/{id}/captions [get]
func ListCaptions(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, course, ok := loadLesson(c, deps)
		if !ok {
			return
		}
		if !course.Published && !canManage(c, course) {
			types.SendNotFound(c, "Lesson not found")
			return
		}

		captions, err := deps.CaptionService.ListByLesson(c.Request.Context(), lesson.ID)
		if err != nil {
			types.SendInternalError(c, "Failed to list captions")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: captions, Count: len(captions), Total: int64(len(captions))})
	}
}

// RequestCaption asks for a caption track in the given language
// @Summary Request a caption track
// @Tags captions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param request body RequestCaptionRequest true "Target language"
// @Success 202 {object} map[string]interface{}
// @Failure 409 {object} types.ErrorResponse "Caption already ready"
// @Router /api/v1/lessons/{id}/captions [post]
func RequestCaption(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, course, ok := loadLesson(c, deps)
		if !ok {
			return
		}
		if !canManage(c, course) {
			types.SendForbidden(c, "Only the course instructor may request captions")
			return
		}
		if lesson.AssetID == "" || lesson.AssetStatus != models.AssetStatusReady {
			types.SendBadRequest(c, "Lesson video is not ready for captioning")
			return
		}

		var req RequestCaptionRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		caption, err := deps.CaptionService.RequestCaption(c.Request.Context(), lesson.ID, lesson.AssetID, req.Language)
		if err != nil {
			if errors.Is(err, captions.ErrCaptionFinished) {
				types.SendConflict(c, "Caption for this language is already ready")
				return
			}
			types.SendInternalError(c, "Failed to request caption")
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": types.StatusOK, "data": caption})
	}
}
