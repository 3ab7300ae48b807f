package quizzes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/lessons"
)

// Service errors surfaced to handlers
var (
	ErrNotEnrolled       = errors.New("user is not enrolled in the course")
	ErrAttemptLimit      = errors.New("attempt limit reached")
	ErrAttemptOpen       = errors.New("an attempt is already in progress")
	ErrAttemptClosed     = errors.New("attempt already submitted")
	ErrNotAttemptOwner   = errors.New("attempt belongs to another user")
	ErrQuizWithoutPoints = errors.New("quiz has no gradable questions")
)

type Service struct {
	repository        QuizRepository
	lessonService     lessons.LessonService
	enrollmentChecker EnrollmentChecker
}

func NewService(repository QuizRepository, lessonService lessons.LessonService, enrollmentChecker EnrollmentChecker) QuizService {
	return &Service{
		repository:        repository,
		lessonService:     lessonService,
		enrollmentChecker: enrollmentChecker,
	}
}

// CreateQuiz creates a quiz for a lesson
func (s *Service) CreateQuiz(ctx context.Context, quiz *models.Quiz) (*models.Quiz, error) {
	if quiz.LessonID == 0 {
		return nil, fmt.Errorf("quiz lesson is required")
	}
	if quiz.PassThreshold <= 0 || quiz.PassThreshold > 1 {
		quiz.PassThreshold = 0.7
	}
	if quiz.MaxAttempts <= 0 {
		quiz.MaxAttempts = 3
	}

	if err := s.repository.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Created quiz %d for lesson %d", quiz.ID, quiz.LessonID)

	return quiz, nil
}

// UpdateQuiz applies a partial update to quiz settings
func (s *Service) UpdateQuiz(ctx context.Context, id uint, title *string, passThreshold *float64, maxAttempts, timeLimitSeconds *int) (*models.Quiz, error) {
	quiz, err := s.repository.GetQuizByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if title != nil {
		quiz.Title = *title
	}
	if passThreshold != nil {
		if *passThreshold <= 0 || *passThreshold > 1 {
			return nil, fmt.Errorf("pass threshold must be in (0, 1]")
		}
		quiz.PassThreshold = *passThreshold
	}
	if maxAttempts != nil {
		quiz.MaxAttempts = *maxAttempts
	}
	if timeLimitSeconds != nil {
		quiz.TimeLimitSeconds = *timeLimitSeconds
	}

	if err := s.repository.UpdateQuiz(ctx, quiz); err != nil {
		return nil, err
	}

	return quiz, nil
}

// DeleteQuiz deletes a quiz and its questions
func (s *Service) DeleteQuiz(ctx context.Context, id uint) error {
	return s.repository.DeleteQuiz(ctx, id)
}

// GetByID retrieves a quiz
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	return s.repository.GetQuizByID(ctx, id)
}

// GetByLessonID retrieves the quiz attached to a lesson
func (s *Service) GetByLessonID(ctx context.Context, lessonID uint) (*models.Quiz, error) {
	return s.repository.GetQuizByLessonID(ctx, lessonID)
}

// AddQuestion validates and appends a question to a quiz
func (s *Service) AddQuestion(ctx context.Context, question *models.QuizQuestion) (*models.QuizQuestion, error) {
	quiz, err := s.repository.GetQuizByID(ctx, question.QuizID)
	if err != nil {
		return nil, err
	}

	if err := validateQuestion(question); err != nil {
		return nil, err
	}

	question.Position = len(quiz.Questions) + 1
	if question.Points <= 0 {
		question.Points = 1
	}

	if err := s.repository.CreateQuestion(ctx, question); err != nil {
		return nil, err
	}

	return question, nil
}

// RemoveQuestion removes a question from a quiz
func (s *Service) RemoveQuestion(ctx context.Context, quizID, questionID uint) error {
	quiz, err := s.repository.GetQuizByID(ctx, quizID)
	if err != nil {
		return err
	}

	for _, q := range quiz.Questions {
		if q.ID == questionID {
			return s.repository.DeleteQuestion(ctx, questionID)
		}
	}
	return ErrQuestionNotFound
}

// StartAttempt starts a new attempt, enforcing enrollment and attempt limits
func (s *Service) StartAttempt(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error) {
	quiz, err := s.repository.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if len(quiz.Questions) == 0 {
		return nil, ErrQuizWithoutPoints
	}

	lesson, err := s.lessonService.GetByID(ctx, quiz.LessonID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.enrollmentChecker.IsEnrolled(ctx, userID, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	// One open attempt per user and quiz
	if _, err := s.repository.GetOpenAttempt(ctx, quizID, userID); err == nil {
		return nil, ErrAttemptOpen
	} else if !errors.Is(err, ErrNoOpenAttempt) {
		return nil, err
	}

	count, err := s.repository.CountAttempts(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}
	if quiz.MaxAttempts > 0 && count >= int64(quiz.MaxAttempts) {
		return nil, ErrAttemptLimit
	}

	attempt := &models.QuizAttempt{
		QuizID:    quizID,
		UserID:    userID,
		Status:    models.AttemptInProgress,
		StartedAt: time.Now(),
	}

	if err := s.repository.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	log.Printf("[INFO] User %d started attempt %d on quiz %d (%d/%d)", userID, attempt.ID, quizID, count+1, quiz.MaxAttempts)

	return attempt, nil
}

// SubmitAttempt grades the attempt and closes it
func (s *Service) SubmitAttempt(ctx context.Context, attemptID, userID uint, answers models.AnswerSet) (*models.QuizAttempt, error) {
	attempt, err := s.repository.GetAttemptByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	if attempt.UserID != userID {
		return nil, ErrNotAttemptOwner
	}
	if !attempt.IsOpen() {
		return nil, ErrAttemptClosed
	}

	quiz, err := s.repository.GetQuizByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expired := false
	if deadline := attempt.Deadline(quiz.TimeLimitSeconds); !deadline.IsZero() && now.After(deadline) {
		expired = true
	}

	earned, total := Grade(quiz.Questions, answers)
	if total == 0 {
		return nil, ErrQuizWithoutPoints
	}

	score := float64(earned) / float64(total)

	attempt.Answers = answers
	attempt.EarnedPoints = earned
	attempt.TotalPoints = total
	attempt.Score = score
	attempt.Passed = score >= quiz.PassThreshold && !expired
	attempt.SubmittedAt = &now
	if expired {
		attempt.Status = models.AttemptExpired
	} else {
		attempt.Status = models.AttemptSubmitted
	}

	if err := s.repository.UpdateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Attempt %d submitted: %d/%d points (%.0f%%), passed=%t, expired=%t",
		attempt.ID, earned, total, score*100, attempt.Passed, expired)

	return attempt, nil
}

// ListAttempts returns a user's attempts at a quiz
func (s *Service) ListAttempts(ctx context.Context, quizID, userID uint) ([]models.QuizAttempt, error) {
	return s.repository.ListAttempts(ctx, quizID, userID)
}

// BestScoreByCourse returns the user's highest graded score in the course
func (s *Service) BestScoreByCourse(ctx context.Context, userID, courseID uint) (float64, bool, error) {
	return s.repository.BestScoreByCourse(ctx, userID, courseID)
}

// Grade scores an answer set against the quiz questions. Multiple-choice
// questions earn full points only when the selected set exactly matches the
// correct set; there is no partial credit.
func Grade(questions []models.QuizQuestion, answers models.AnswerSet) (earned, total int) {
	for _, q := range questions {
		total += q.Points

		selected, ok := answers[strconv.FormatUint(uint64(q.ID), 10)]
		if !ok || len(selected) == 0 {
			continue
		}

		switch q.Type {
		case models.QuestionSingleChoice, models.QuestionTrueFalse:
			if len(selected) == 1 && len(q.CorrectOptions) == 1 && selected[0] == q.CorrectOptions[0] {
				earned += q.Points
			}
		case models.QuestionMultipleChoice:
			if sameSet(selected, q.CorrectOptions) {
				earned += q.Points
			}
		}
	}
	return earned, total
}

// sameSet compares two option lists ignoring order and duplicates
func sameSet(a, b []string) bool {
	as := dedupeSorted(a)
	bs := dedupeSorted(b)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func dedupeSorted(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// validateQuestion checks option and answer consistency for a question
func validateQuestion(q *models.QuizQuestion) error {
	switch q.Type {
	case models.QuestionTrueFalse:
		q.Options = models.StringList{"true", "false"}
		if len(q.CorrectOptions) != 1 || (q.CorrectOptions[0] != "true" && q.CorrectOptions[0] != "false") {
			return fmt.Errorf("true/false question requires exactly one correct option of true or false")
		}
	case models.QuestionSingleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("single choice question requires at least two options")
		}
		if len(q.CorrectOptions) != 1 {
			return fmt.Errorf("single choice question requires exactly one correct option")
		}
		if !contains(q.Options, q.CorrectOptions[0]) {
			return fmt.Errorf("correct option %q is not among the options", q.CorrectOptions[0])
		}
	case models.QuestionMultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("multiple choice question requires at least two options")
		}
		if len(q.CorrectOptions) == 0 {
			return fmt.Errorf("multiple choice question requires at least one correct option")
		}
		for _, c := range q.CorrectOptions {
			if !contains(q.Options, c) {
				return fmt.Errorf("correct option %q is not among the options", c)
			}
		}
	default:
		return fmt.Errorf("unsupported question type %q", q.Type)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
