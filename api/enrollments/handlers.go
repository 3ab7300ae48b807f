package enrollments

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/services/enrollments"
)

// EnrollmentView decorates an enrollment with progress and the caller's best
// quiz score in the course.
type EnrollmentView struct {
	enrollments.EnrollmentWithProgress
	BestQuizScore *float64 `json:"best_quiz_score,omitempty"`
}

// ListMine handles listing the caller's enrollments with progress
// @Summary List my enrollments
// @Tags enrollments
// @Security BearerAuth
// @Produce json
// @Success 200 {object} types.ListResponse
// @Router /api/v1/enrollments [get]
func ListMine(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.CurrentUserID(c)

		items, err := deps.EnrollmentService.ListMine(c.Request.Context(), userID)
		if err != nil {
			types.SendInternalError(c, "Failed to list enrollments")
			return
		}

		views := make([]EnrollmentView, 0, len(items))
		for _, item := range items {
			view := EnrollmentView{EnrollmentWithProgress: item}
			score, found, err := deps.QuizService.BestScoreByCourse(c.Request.Context(), userID, item.Enrollment.CourseID)
			if err != nil {
				log.Printf("[WARN] Failed to load best quiz score for course %d: %v", item.Enrollment.CourseID, err)
			} else if found {
				view.BestQuizScore = &score
			}
			views = append(views, view)
		}
		types.SendSuccess(c, types.ListResponse{Items: views, Count: len(views), Total: int64(len(views))})
	}
}

// GetForCourse handles fetching the caller's enrollment in one course
// @Summary Get my enrollment in a course
// @Tags enrollments
// @Security BearerAuth
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/enrollments/{courseId} [get]
func GetForCourse(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		courseID, ok := types.ParseUintParam(c, "courseId")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		enrollment, err := deps.EnrollmentService.GetEnrollment(c.Request.Context(), userID, courseID)
		if err != nil {
			if errors.Is(err, enrollments.ErrEnrollmentNotFound) {
				types.SendNotFound(c, "Enrollment not found")
				return
			}
			types.SendInternalError(c, "Failed to load enrollment")
			return
		}
		types.SendSuccess(c, enrollment)
	}
}
