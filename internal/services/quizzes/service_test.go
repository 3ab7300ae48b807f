package quizzes

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/lessons"
)

// fakeChecker reports a fixed enrollment answer for every user and course
type fakeChecker bool

func (f fakeChecker) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	return bool(f), nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(&models.Course{}, &models.Lesson{}, &models.Quiz{}, &models.QuizQuestion{}, &models.QuizAttempt{})
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func newTestService(t *testing.T, db *gorm.DB, enrolled bool) QuizService {
	lessonService := lessons.NewService(lessons.NewRepository(db))
	return NewService(NewRepository(db), lessonService, fakeChecker(enrolled))
}

func createTestLesson(t *testing.T, db *gorm.DB) *models.Lesson {
	course := &models.Course{
		Title:        "Intro to Chemistry",
		Slug:         "intro-to-chemistry",
		InstructorID: 1,
		Published:    true,
	}
	require.NoError(t, db.Create(course).Error)

	lesson := &models.Lesson{
		CourseID: course.ID,
		Title:    "Atoms and Molecules",
		Position: 1,
	}
	require.NoError(t, db.Create(lesson).Error)

	return lesson
}

func createTestQuiz(t *testing.T, db *gorm.DB, service QuizService, lessonID uint, maxAttempts, timeLimitSeconds int) *models.Quiz {
	ctx := context.Background()

	quiz, err := service.CreateQuiz(ctx, &models.Quiz{
		LessonID:         lessonID,
		Title:            "Checkpoint",
		PassThreshold:    0.5,
		MaxAttempts:      maxAttempts,
		TimeLimitSeconds: timeLimitSeconds,
	})
	require.NoError(t, err)

	_, err = service.AddQuestion(ctx, &models.QuizQuestion{
		QuizID:         quiz.ID,
		Type:           models.QuestionSingleChoice,
		Prompt:         "What is H2O?",
		Options:        models.StringList{"water", "salt", "helium"},
		CorrectOptions: models.StringList{"water"},
		Points:         2,
	})
	require.NoError(t, err)

	_, err = service.AddQuestion(ctx, &models.QuizQuestion{
		QuizID:         quiz.ID,
		Type:           models.QuestionMultipleChoice,
		Prompt:         "Which are noble gases?",
		Options:        models.StringList{"helium", "neon", "oxygen"},
		CorrectOptions: models.StringList{"helium", "neon"},
		Points:         2,
	})
	require.NoError(t, err)

	reloaded, err := service.GetByID(ctx, quiz.ID)
	require.NoError(t, err)
	return reloaded
}

func answerKey(q models.QuizQuestion) string {
	return strconv.FormatUint(uint64(q.ID), 10)
}

func TestCreateQuizDefaults(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db, true)
	lesson := createTestLesson(t, db)

	quiz, err := service.CreateQuiz(context.Background(), &models.Quiz{
		LessonID: lesson.ID,
		Title:    "Checkpoint",
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.7, quiz.PassThreshold, 0.001)
	assert.Equal(t, 3, quiz.MaxAttempts)
}

func TestAddQuestionValidation(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db, true)
	lesson := createTestLesson(t, db)
	ctx := context.Background()

	quiz, err := service.CreateQuiz(ctx, &models.Quiz{LessonID: lesson.ID, Title: "Checkpoint"})
	require.NoError(t, err)

	t.Run("single choice needs one correct option", func(t *testing.T) {
		_, err := service.AddQuestion(ctx, &models.QuizQuestion{
			QuizID:         quiz.ID,
			Type:           models.QuestionSingleChoice,
			Prompt:         "Pick one",
			Options:        models.StringList{"a", "b"},
			CorrectOptions: models.StringList{"a", "b"},
		})
		assert.Error(t, err)
	})

	t.Run("correct option must be among options", func(t *testing.T) {
		_, err := service.AddQuestion(ctx, &models.QuizQuestion{
			QuizID:         quiz.ID,
			Type:           models.QuestionSingleChoice,
			Prompt:         "Pick one",
			Options:        models.StringList{"a", "b"},
			CorrectOptions: models.StringList{"c"},
		})
		assert.Error(t, err)
	})

	t.Run("true/false normalizes options", func(t *testing.T) {
		q, err := service.AddQuestion(ctx, &models.QuizQuestion{
			QuizID:         quiz.ID,
			Type:           models.QuestionTrueFalse,
			Prompt:         "Water boils at 100C at sea level",
			CorrectOptions: models.StringList{"true"},
		})
		require.NoError(t, err)
		assert.Equal(t, models.StringList{"true", "false"}, q.Options)
		assert.Equal(t, 1, q.Points)
	})
}

func TestStartAttempt(t *testing.T) {
	ctx := context.Background()

	t.Run("requires enrollment", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, false)
		lesson := createTestLesson(t, db)
		quiz := createTestQuiz(t, db, service, lesson.ID, 3, 0)

		_, err := service.StartAttempt(ctx, quiz.ID, 42)
		assert.ErrorIs(t, err, ErrNotEnrolled)
	})

	t.Run("rejects quiz without questions", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, true)
		lesson := createTestLesson(t, db)

		quiz, err := service.CreateQuiz(ctx, &models.Quiz{LessonID: lesson.ID, Title: "Empty"})
		require.NoError(t, err)

		_, err = service.StartAttempt(ctx, quiz.ID, 42)
		assert.ErrorIs(t, err, ErrQuizWithoutPoints)
	})

	t.Run("only one open attempt at a time", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, true)
		lesson := createTestLesson(t, db)
		quiz := createTestQuiz(t, db, service, lesson.ID, 3, 0)

		attempt, err := service.StartAttempt(ctx, quiz.ID, 42)
		require.NoError(t, err)
		assert.Equal(t, models.AttemptInProgress, attempt.Status)

		_, err = service.StartAttempt(ctx, quiz.ID, 42)
		assert.ErrorIs(t, err, ErrAttemptOpen)
	})

	t.Run("enforces attempt limit", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, true)
		lesson := createTestLesson(t, db)
		quiz := createTestQuiz(t, db, service, lesson.ID, 1, 0)

		attempt, err := service.StartAttempt(ctx, quiz.ID, 42)
		require.NoError(t, err)

		_, err = service.SubmitAttempt(ctx, attempt.ID, 42, models.AnswerSet{})
		require.NoError(t, err)

		_, err = service.StartAttempt(ctx, quiz.ID, 42)
		assert.ErrorIs(t, err, ErrAttemptLimit)
	})

	t.Run("unknown quiz", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, true)

		_, err := service.StartAttempt(ctx, 999, 42)
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})
}

func TestSubmitAttempt(t *testing.T) {
	ctx := context.Background()

	t.Run("grades and passes with all answers correct", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, true)
		lesson := createTestLesson(t, db)
		quiz := createTestQuiz(t, db, service, lesson.ID, 3, 0)

		attempt, err := service.StartAttempt(ctx, quiz.ID, 42)
		require.NoError(t, err)

		answers := models.AnswerSet{
			answerKey(quiz.Questions[0]): {"water"},
			answerKey(quiz.Questions[1]): {"neon", "helium"}, // order must not matter
		}

		graded, err := service.SubmitAttempt(ctx, attempt.ID, 42, answers)
		require.NoError(t, err)

		assert.Equal(t, models.AttemptSubmitted, graded.Status)
		assert.Equal(t, 4, graded.EarnedPoints)
		assert.Equal(t, 4, graded.TotalPoints)
		assert.InDelta(t, 1.0, graded.Score, 0.001)
		assert.True(t, graded.Passed)
		assert.NotNil(t, graded.SubmittedAt)
	})

	t.Run("no partial credit on multiple choice", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, true)
		lesson := createTestLesson(t, db)
		quiz := createTestQuiz(t, db, service, lesson.ID, 3, 0)

		attempt, err := service.StartAttempt(ctx, quiz.ID, 42)
		require.NoError(t, err)

		answers := models.AnswerSet{
			answerKey(quiz.Questions[0]): {"water"},
			answerKey(quiz.Questions[1]): {"helium"}, // missing neon
		}

		graded, err := service.SubmitAttempt(ctx, attempt.ID, 42, answers)
		require.NoError(t, err)

		assert.Equal(t, 2, graded.EarnedPoints)
		assert.InDelta(t, 0.5, graded.Score, 0.001)
		assert.True(t, graded.Passed) // threshold is 0.5
	})

	t.Run("resubmission is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, true)
		lesson := createTestLesson(t, db)
		quiz := createTestQuiz(t, db, service, lesson.ID, 3, 0)

		attempt, err := service.StartAttempt(ctx, quiz.ID, 42)
		require.NoError(t, err)

		_, err = service.SubmitAttempt(ctx, attempt.ID, 42, models.AnswerSet{})
		require.NoError(t, err)

		_, err = service.SubmitAttempt(ctx, attempt.ID, 42, models.AnswerSet{})
		assert.ErrorIs(t, err, ErrAttemptClosed)
	})

	t.Run("other users cannot submit the attempt", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, true)
		lesson := createTestLesson(t, db)
		quiz := createTestQuiz(t, db, service, lesson.ID, 3, 0)

		attempt, err := service.StartAttempt(ctx, quiz.ID, 42)
		require.NoError(t, err)

		_, err = service.SubmitAttempt(ctx, attempt.ID, 43, models.AnswerSet{})
		assert.ErrorIs(t, err, ErrNotAttemptOwner)
	})

	t.Run("late submission is graded but cannot pass", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, true)
		lesson := createTestLesson(t, db)
		quiz := createTestQuiz(t, db, service, lesson.ID, 3, 60)

		attempt, err := service.StartAttempt(ctx, quiz.ID, 42)
		require.NoError(t, err)

		// Backdate the attempt past the time limit
		started := time.Now().Add(-2 * time.Minute)
		require.NoError(t, db.Model(&models.QuizAttempt{}).
			Where("id = ?", attempt.ID).
			Update("started_at", started).Error)

		answers := models.AnswerSet{
			answerKey(quiz.Questions[0]): {"water"},
			answerKey(quiz.Questions[1]): {"helium", "neon"},
		}

		graded, err := service.SubmitAttempt(ctx, attempt.ID, 42, answers)
		require.NoError(t, err)

		assert.Equal(t, models.AttemptExpired, graded.Status)
		assert.InDelta(t, 1.0, graded.Score, 0.001)
		assert.False(t, graded.Passed)
	})
}

func TestBestScoreByCourse(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := newTestService(t, db, true)
	lesson := createTestLesson(t, db)
	quiz := createTestQuiz(t, db, service, lesson.ID, 3, 0)

	_, found, err := service.BestScoreByCourse(ctx, 42, lesson.CourseID)
	require.NoError(t, err)
	assert.False(t, found, "no graded attempts yet")

	// First attempt scores 0.5, second scores 1.0
	attempt, err := service.StartAttempt(ctx, quiz.ID, 42)
	require.NoError(t, err)
	_, err = service.SubmitAttempt(ctx, attempt.ID, 42, models.AnswerSet{
		answerKey(quiz.Questions[0]): {"water"},
	})
	require.NoError(t, err)

	attempt, err = service.StartAttempt(ctx, quiz.ID, 42)
	require.NoError(t, err)
	_, err = service.SubmitAttempt(ctx, attempt.ID, 42, models.AnswerSet{
		answerKey(quiz.Questions[0]): {"water"},
		answerKey(quiz.Questions[1]): {"helium", "neon"},
	})
	require.NoError(t, err)

	best, found, err := service.BestScoreByCourse(ctx, 42, lesson.CourseID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.InDelta(t, 1.0, best, 0.001)

	// In-progress attempts are excluded
	_, found, err = service.BestScoreByCourse(ctx, 43, lesson.CourseID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGrade(t *testing.T) {
	questions := []models.QuizQuestion{
		{Model: gorm.Model{ID: 1}, Type: models.QuestionSingleChoice, CorrectOptions: models.StringList{"a"}, Points: 1},
		{Model: gorm.Model{ID: 2}, Type: models.QuestionMultipleChoice, CorrectOptions: models.StringList{"x", "y"}, Points: 3},
		{Model: gorm.Model{ID: 3}, Type: models.QuestionTrueFalse, CorrectOptions: models.StringList{"false"}, Points: 1},
	}

	tests := []struct {
		name       string
		answers    models.AnswerSet
		wantEarned int
	}{
		{"all correct", models.AnswerSet{"1": {"a"}, "2": {"y", "x"}, "3": {"false"}}, 5},
		{"empty answers", models.AnswerSet{}, 0},
		{"extra selection loses multiple choice", models.AnswerSet{"1": {"a"}, "2": {"x", "y", "z"}}, 1},
		{"duplicate selections are deduped", models.AnswerSet{"2": {"x", "x", "y"}}, 3},
		{"unknown question ids ignored", models.AnswerSet{"99": {"a"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			earned, total := Grade(questions, tt.answers)
			assert.Equal(t, 5, total)
			assert.Equal(t, tt.wantEarned, earned)
		})
	}
}
