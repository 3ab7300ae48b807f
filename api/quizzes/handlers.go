package quizzes

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/quizzes"
)

// CreateQuizRequest is the payload for attaching a quiz to a lesson
type CreateQuizRequest struct {
	Title            string                  `json:"title" binding:"required,min=1"`
	PassThreshold    float64                 `json:"pass_threshold" binding:"min=0,max=1"`
	MaxAttempts      int                     `json:"max_attempts" binding:"min=0"`
	TimeLimitSeconds int                     `json:"time_limit_seconds" binding:"min=0"`
	Questions        []CreateQuestionRequest `json:"questions"`
}

// CreateQuestionRequest describes one question
type CreateQuestionRequest struct {
	Type           string   `json:"type" binding:"required"`
	Prompt         string   `json:"prompt" binding:"required,min=1"`
	Options        []string `json:"options"`
	CorrectOptions []string `json:"correct_options" binding:"required,min=1"`
	Points         int      `json:"points"`
}

// UpdateQuizRequest carries optional quiz setting changes
type UpdateQuizRequest struct {
	Title            *string  `json:"title"`
	PassThreshold    *float64 `json:"pass_threshold"`
	MaxAttempts      *int     `json:"max_attempts"`
	TimeLimitSeconds *int     `json:"time_limit_seconds"`
}

// SubmitAttemptRequest carries the answers for a submission
type SubmitAttemptRequest struct {
	Answers models.AnswerSet `json:"answers" binding:"required"`
}

func (r CreateQuestionRequest) toModel(position int) models.QuizQuestion {
	points := r.Points
	if points <= 0 {
		points = 1
	}
	return models.QuizQuestion{
		Position:       position,
		Type:           models.QuestionType(r.Type),
		Prompt:         r.Prompt,
		Options:        r.Options,
		CorrectOptions: r.CorrectOptions,
		Points:         points,
	}
}

// instructorOwnsQuiz checks that the caller may manage the quiz's course
func instructorOwnsQuiz(c *gin.Context, deps *types.Dependencies, lessonID uint) bool {
	role, _ := auth.CurrentRole(c)
	if role == models.RoleAdmin {
		return true
	}
	lesson, err := deps.LessonService.GetByID(c.Request.Context(), lessonID)
	if err != nil {
		return false
	}
	course, err := deps.CourseService.GetByID(c.Request.Context(), lesson.CourseID)
	if err != nil {
		return false
	}
	userID, _ := auth.CurrentUserID(c)
	return course.InstructorID == userID
}

// CreateForLesson handles quiz creation on a lesson
// @Summary Create a quiz for a lesson
// @Tags quizzes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param request body CreateQuizRequest true "Quiz definition"
// @Success 201 {object} map[string]interface{}
// @Router /api/v1/lessons/{id}/quiz [post]
func CreateForLesson(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		lessonID, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		if !instructorOwnsQuiz(c, deps, lessonID) {
			types.SendForbidden(c, "Only the course instructor may create a quiz")
			return
		}

		var req CreateQuizRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		quiz := &models.Quiz{
			LessonID:         lessonID,
			Title:            req.Title,
			PassThreshold:    req.PassThreshold,
			MaxAttempts:      req.MaxAttempts,
			TimeLimitSeconds: req.TimeLimitSeconds,
		}
		for i, q := range req.Questions {
			quiz.Questions = append(quiz.Questions, q.toModel(i+1))
		}

		created, err := deps.QuizService.CreateQuiz(c.Request.Context(), quiz)
		if err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendCreated(c, created)
	}
}

// GetForLesson handles quiz retrieval by lesson
// @Summary Get the quiz of a lesson
// @Tags quizzes
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/lessons/{id}/quiz [get]
func GetForLesson(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		lessonID, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		quiz, err := deps.QuizService.GetByLessonID(c.Request.Context(), lessonID)
		if err != nil {
			types.SendNotFound(c, "Quiz not found")
			return
		}
		types.SendSuccess(c, quiz)
	}
}

// Get handles single-quiz retrieval
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		quiz, err := deps.QuizService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Quiz not found")
			return
		}
		types.SendSuccess(c, quiz)
	}
}

// Update handles quiz setting changes
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		quiz, err := deps.QuizService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Quiz not found")
			return
		}
		if !instructorOwnsQuiz(c, deps, quiz.LessonID) {
			types.SendForbidden(c, "Only the course instructor may edit the quiz")
			return
		}

		var req UpdateQuizRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		updated, err := deps.QuizService.UpdateQuiz(c.Request.Context(), id, req.Title, req.PassThreshold, req.MaxAttempts, req.TimeLimitSeconds)
		if err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendSuccess(c, updated)
	}
}

// Delete handles quiz deletion
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		quiz, err := deps.QuizService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Quiz not found")
			return
		}
		if !instructorOwnsQuiz(c, deps, quiz.LessonID) {
			types.SendForbidden(c, "Only the course instructor may delete the quiz")
			return
		}
		if err := deps.QuizService.DeleteQuiz(c.Request.Context(), id); err != nil {
			types.SendInternalError(c, "Failed to delete quiz")
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}

// AddQuestion handles adding a question to a quiz
func AddQuestion(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		quiz, err := deps.QuizService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Quiz not found")
			return
		}
		if !instructorOwnsQuiz(c, deps, quiz.LessonID) {
			types.SendForbidden(c, "Only the course instructor may edit the quiz")
			return
		}

		var req CreateQuestionRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		question := req.toModel(len(quiz.Questions) + 1)
		question.QuizID = id
		created, err := deps.QuizService.AddQuestion(c.Request.Context(), &question)
		if err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendCreated(c, created)
	}
}

// RemoveQuestion handles removing a question from a quiz
func RemoveQuestion(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		questionID, ok := types.ParseUintParam(c, "questionId")
		if !ok {
			return
		}
		quiz, err := deps.QuizService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Quiz not found")
			return
		}
		if !instructorOwnsQuiz(c, deps, quiz.LessonID) {
			types.SendForbidden(c, "Only the course instructor may edit the quiz")
			return
		}
		if err := deps.QuizService.RemoveQuestion(c.Request.Context(), id, questionID); err != nil {
			if errors.Is(err, quizzes.ErrQuestionNotFound) {
				types.SendNotFound(c, "Question not found")
				return
			}
			types.SendInternalError(c, "Failed to remove question")
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}

// StartAttempt handles opening a new attempt for the caller
// @Summary Start a quiz attempt
// @Tags quizzes
// @Security BearerAuth
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} types.ErrorResponse "Not enrolled"
// @Failure 409 {object} types.ErrorResponse "Attempt limit reached or attempt open"
// @Router /api/v1/quizzes/{id}/attempts [post]
func StartAttempt(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		attempt, err := deps.QuizService.StartAttempt(c.Request.Context(), id, userID)
		if err != nil {
			switch {
			case errors.Is(err, quizzes.ErrQuizNotFound):
				types.SendNotFound(c, "Quiz not found")
			case errors.Is(err, quizzes.ErrNotEnrolled):
				types.SendForbidden(c, "Enroll in the course to take this quiz")
			case errors.Is(err, quizzes.ErrAttemptLimit):
				types.SendConflict(c, "Attempt limit reached")
			case errors.Is(err, quizzes.ErrAttemptOpen):
				types.SendConflict(c, "An attempt is already in progress")
			default:
				types.SendInternalError(c, "Failed to start attempt")
			}
			return
		}
		types.SendCreated(c, attempt)
	}
}

// ListAttempts handles listing the caller's attempts at a quiz
// @Summary List my attempts at a quiz
// @Tags quizzes
// @Security BearerAuth
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} types.ListResponse
// @Router /api/v1/quizzes/{id}/attempts [get]
func ListAttempts(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		attempts, err := deps.QuizService.ListAttempts(c.Request.Context(), id, userID)
		if err != nil {
			types.SendInternalError(c, "Failed to list attempts")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: attempts, Count: len(attempts), Total: int64(len(attempts))})
	}
}

// SubmitAttempt handles grading a submission
// @Summary Submit a quiz attempt
// @Tags quizzes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Attempt ID"
// @Param request body SubmitAttemptRequest true "Answers"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} types.ErrorResponse "Attempt already submitted"
// @Router /api/v1/attempts/{id}/submit [post]
func SubmitAttempt(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		var req SubmitAttemptRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		attempt, err := deps.QuizService.SubmitAttempt(c.Request.Context(), id, userID, req.Answers)
		if err != nil {
			switch {
			case errors.Is(err, quizzes.ErrAttemptNotFound):
				types.SendNotFound(c, "Attempt not found")
			case errors.Is(err, quizzes.ErrNotAttemptOwner):
				types.SendForbidden(c, "Attempt belongs to another user")
			case errors.Is(err, quizzes.ErrAttemptClosed):
				types.SendConflict(c, "Attempt already submitted")
			default:
				types.SendInternalError(c, "Failed to submit attempt")
			}
			return
		}
		types.SendSuccess(c, attempt)
	}
}
