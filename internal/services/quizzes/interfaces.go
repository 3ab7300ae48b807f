package quizzes

import (
	"context"

	"github.com/thereadylab/readylab-api/internal/models"
)

// QuizRepository defines the data access interface for quizzes and attempts
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	UpdateQuiz(ctx context.Context, quiz *models.Quiz) error
	DeleteQuiz(ctx context.Context, id uint) error

	GetQuizByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetQuizByLessonID(ctx context.Context, lessonID uint) (*models.Quiz, error)

	CreateQuestion(ctx context.Context, question *models.QuizQuestion) error
	DeleteQuestion(ctx context.Context, id uint) error

	CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error
	UpdateAttempt(ctx context.Context, attempt *models.QuizAttempt) error
	GetAttemptByID(ctx context.Context, id uint) (*models.QuizAttempt, error)
	ListAttempts(ctx context.Context, quizID, userID uint) ([]models.QuizAttempt, error)
	CountAttempts(ctx context.Context, quizID, userID uint) (int64, error)
	GetOpenAttempt(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error)
	BestScoreByCourse(ctx context.Context, userID, courseID uint) (float64, bool, error)
}

// EnrollmentChecker verifies that a user is enrolled in the course owning the quiz
type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error)
}

// QuizService defines the business logic interface for quiz operations
type QuizService interface {
	CreateQuiz(ctx context.Context, quiz *models.Quiz) (*models.Quiz, error)
	UpdateQuiz(ctx context.Context, id uint, title *string, passThreshold *float64, maxAttempts, timeLimitSeconds *int) (*models.Quiz, error)
	DeleteQuiz(ctx context.Context, id uint) error

	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByLessonID(ctx context.Context, lessonID uint) (*models.Quiz, error)

	AddQuestion(ctx context.Context, question *models.QuizQuestion) (*models.QuizQuestion, error)
	RemoveQuestion(ctx context.Context, quizID, questionID uint) error

	// StartAttempt enforces enrollment, the attempt limit, and at most one
	// open attempt per user and quiz.
	StartAttempt(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error)

	// SubmitAttempt grades the attempt. Submitting a closed attempt fails
	// with ErrAttemptClosed; submitting past the deadline grades the given
	// answers but marks the attempt expired.
	SubmitAttempt(ctx context.Context, attemptID, userID uint, answers models.AnswerSet) (*models.QuizAttempt, error)

	ListAttempts(ctx context.Context, quizID, userID uint) ([]models.QuizAttempt, error)

	// BestScoreByCourse returns the user's highest graded score across all
	// quizzes of the course; found is false when no attempt was graded.
	BestScoreByCourse(ctx context.Context, userID, courseID uint) (score float64, found bool, err error)
}
