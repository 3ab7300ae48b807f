package courses

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
)

// CreateLessonRequest is the payload for adding a lesson to a course
type CreateLessonRequest struct {
	Title       string `json:"title" binding:"required,min=1"`
	Description string `json:"description"`
	FreePreview bool   `json:"free_preview"`
	AssetID     string `json:"asset_id"`
}

// ReorderLessonsRequest carries the full ordered list of lesson IDs
type ReorderLessonsRequest struct {
	LessonIDs []uint `json:"lesson_ids" binding:"required,min=1"`
}

// ListLessons handles lesson listing for a course
// @Summary List lessons in a course
// @Tags lessons
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} types.ListResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/courses/{id}/lessons [get]
func ListLessons(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		course, err := deps.CourseService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Course not found")
			return
		}
		if !course.Published && !canManage(c, course) {
			types.SendNotFound(c, "Course not found")
			return
		}

		lessons, err := deps.LessonService.ListByCourse(c.Request.Context(), id)
		if err != nil {
			types.SendInternalError(c, "Failed to list lessons")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: lessons, Count: len(lessons), Total: int64(len(lessons))})
	}
}

// CreateLesson handles adding a lesson to a course
func CreateLesson(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		course, err := deps.CourseService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Course not found")
			return
		}
		if !canManage(c, course) {
			types.SendForbidden(c, "Only the course instructor may add lessons")
			return
		}

		var req CreateLessonRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		lesson, err := deps.LessonService.CreateLesson(c.Request.Context(), &models.Lesson{
			CourseID:    id,
			Title:       req.Title,
			Description: req.Description,
			FreePreview: req.FreePreview,
			AssetID:     req.AssetID,
		})
		if err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendCreated(c, lesson)
	}
}

// ReorderLessons handles lesson reordering within a course
func ReorderLessons(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		course, err := deps.CourseService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Course not found")
			return
		}
		if !canManage(c, course) {
			types.SendForbidden(c, "Only the course instructor may reorder lessons")
			return
		}

		var req ReorderLessonsRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		if err := deps.LessonService.Reorder(c.Request.Context(), id, req.LessonIDs); err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}

		lessons, err := deps.LessonService.ListByCourse(c.Request.Context(), id)
		if err != nil {
			types.SendInternalError(c, "Failed to list lessons")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: lessons, Count: len(lessons), Total: int64(len(lessons))})
	}
}
