package quizzes

import (
	"context"
	"errors"
	"fmt"

	"github.com/thereadylab/readylab-api/internal/models"
	"gorm.io/gorm"
)

// Repository errors
var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrNoOpenAttempt    = errors.New("no open attempt")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) QuizRepository {
	return &Repository{db: db}
}

// CreateQuiz creates a quiz with its questions
func (r *Repository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	if err := r.db.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("creating quiz: %w", err)
	}
	return nil
}

// UpdateQuiz updates quiz settings
func (r *Repository) UpdateQuiz(ctx context.Context, quiz *models.Quiz) error {
	result := r.db.WithContext(ctx).Omit("Questions").Save(quiz)
	if result.Error != nil {
		return fmt.Errorf("updating quiz: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrQuizNotFound
	}
	return nil
}

// DeleteQuiz soft-deletes a quiz and its questions
func (r *Repository) DeleteQuiz(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&models.QuizQuestion{}).Error; err != nil {
			return fmt.Errorf("deleting quiz questions: %w", err)
		}
		result := tx.Delete(&models.Quiz{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting quiz: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrQuizNotFound
		}
		return nil
	})
}

// GetQuizByID retrieves a quiz with its ordered questions
func (r *Repository) GetQuizByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("getting quiz: %w", err)
	}
	return &quiz, nil
}

// GetQuizByLessonID retrieves the quiz attached to a lesson
func (r *Repository) GetQuizByLessonID(ctx context.Context, lessonID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("lesson_id = ?", lessonID).
		First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("getting quiz by lesson: %w", err)
	}
	return &quiz, nil
}

// CreateQuestion adds a question to a quiz
func (r *Repository) CreateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	if err := r.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("creating question: %w", err)
	}
	return nil
}

// DeleteQuestion removes a question
func (r *Repository) DeleteQuestion(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.QuizQuestion{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

// CreateAttempt creates a new quiz attempt
func (r *Repository) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("creating attempt: %w", err)
	}
	return nil
}

// UpdateAttempt updates an attempt
func (r *Repository) UpdateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	result := r.db.WithContext(ctx).Save(attempt)
	if result.Error != nil {
		return fmt.Errorf("updating attempt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

// GetAttemptByID retrieves an attempt by ID
func (r *Repository) GetAttemptByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := r.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("getting attempt: %w", err)
	}
	return &attempt, nil
}

// ListAttempts returns a user's attempts at a quiz, newest first
func (r *Repository) ListAttempts(ctx context.Context, quizID, userID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	if err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("started_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}
	return attempts, nil
}

// CountAttempts returns the number of attempts a user made on a quiz
func (r *Repository) CountAttempts(ctx context.Context, quizID, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting attempts: %w", err)
	}
	return count, nil
}

// GetOpenAttempt returns the user's in-progress attempt on a quiz, if any
func (r *Repository) GetOpenAttempt(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ? AND status = ?", quizID, userID, models.AttemptInProgress).
		First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenAttempt
		}
		return nil, fmt.Errorf("getting open attempt: %w", err)
	}
	return &attempt, nil
}

// BestScoreByCourse finds the highest graded attempt score across every quiz
// belonging to the course's lessons. found is false when the user has no
// graded attempt in the course.
func (r *Repository) BestScoreByCourse(ctx context.Context, userID, courseID uint) (float64, bool, error) {
	var best *float64
	err := r.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select("MAX(quiz_attempts.score)").
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id AND quizzes.deleted_at IS NULL").
		Joins("JOIN lessons ON lessons.id = quizzes.lesson_id AND lessons.deleted_at IS NULL").
		Where("quiz_attempts.user_id = ? AND lessons.course_id = ? AND quiz_attempts.status != ?",
			userID, courseID, models.AttemptInProgress).
		Scan(&best).Error
	if err != nil {
		return 0, false, fmt.Errorf("getting best score: %w", err)
	}
	if best == nil {
		return 0, false, nil
	}
	return *best, true, nil
}
