package quizzes

import (
	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
)

// RegisterLessonRoutes attaches the per-lesson quiz endpoints
func RegisterLessonRoutes(lessonGroup *gin.RouterGroup, deps *types.Dependencies) {
	authed := auth.Middleware(deps.AuthService)
	instructor := auth.RequireRole(models.RoleInstructor, models.RoleAdmin)

	lessonGroup.GET("/:id/quiz", auth.OptionalMiddleware(deps.AuthService), GetForLesson(deps))
	lessonGroup.POST("/:id/quiz", authed, instructor, CreateForLesson(deps))
}

// RegisterRoutes sets up the quiz and attempt endpoints
func RegisterRoutes(quizGroup, attemptGroup *gin.RouterGroup, deps *types.Dependencies) {
	authed := auth.Middleware(deps.AuthService)
	instructor := auth.RequireRole(models.RoleInstructor, models.RoleAdmin)

	quizGroup.GET("/:id", auth.OptionalMiddleware(deps.AuthService), Get(deps))
	quizGroup.PATCH("/:id", authed, instructor, Update(deps))
	quizGroup.DELETE("/:id", authed, instructor, Delete(deps))
	quizGroup.POST("/:id/questions", authed, instructor, AddQuestion(deps))
	quizGroup.DELETE("/:id/questions/:questionId", authed, instructor, RemoveQuestion(deps))

	quizGroup.POST("/:id/attempts", authed, StartAttempt(deps))
	quizGroup.GET("/:id/attempts", authed, ListAttempts(deps))

	attemptGroup.POST("/:id/submit", authed, SubmitAttempt(deps))
}
