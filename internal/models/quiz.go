package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// QuestionType represents the kind of quiz question
type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
)

// AttemptStatus represents the lifecycle of a quiz attempt
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptExpired    AttemptStatus = "expired"
)

// Quiz represents a graded quiz attached to a lesson
type Quiz struct {
	gorm.Model
	LessonID         uint    `json:"lesson_id" gorm:"uniqueIndex;not null"`
	Title            string  `json:"title" gorm:"not null"`
	PassThreshold    float64 `json:"pass_threshold" gorm:"default:0.7"` // 0-1 fraction of points
	MaxAttempts      int     `json:"max_attempts" gorm:"default:3"`
	TimeLimitSeconds int     `json:"time_limit_seconds" gorm:"default:0"` // 0 = unlimited

	Questions []QuizQuestion `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

// QuizQuestion represents a single question with its options
type QuizQuestion struct {
	gorm.Model
	QuizID         uint         `json:"quiz_id" gorm:"not null;index"`
	Position       int          `json:"position" gorm:"not null"`
	Type           QuestionType `json:"type" gorm:"not null"`
	Prompt         string       `json:"prompt" gorm:"type:text;not null"`
	Options        StringList   `json:"options" gorm:"type:json"`
	CorrectOptions StringList   `json:"-" gorm:"type:json"` // never serialized to students
	Points         int          `json:"points" gorm:"default:1"`
}

// QuizAttempt represents one user's attempt at a quiz
type QuizAttempt struct {
	gorm.Model
	QuizID       uint          `json:"quiz_id" gorm:"not null;index:idx_attempt_quiz_user"`
	UserID       uint          `json:"user_id" gorm:"not null;index:idx_attempt_quiz_user"`
	Status       AttemptStatus `json:"status" gorm:"default:'in_progress';index"`
	Answers      AnswerSet     `json:"answers" gorm:"type:json"`
	Score        float64       `json:"score"` // 0-1 fraction of points earned
	EarnedPoints int           `json:"earned_points"`
	TotalPoints  int           `json:"total_points"`
	Passed       bool          `json:"passed"`
	StartedAt    time.Time     `json:"started_at"`
	SubmittedAt  *time.Time    `json:"submitted_at"`
}

// IsOpen reports whether the attempt can still be submitted
func (a *QuizAttempt) IsOpen() bool {
	return a.Status == AttemptInProgress
}

// Deadline returns the submission deadline, or the zero time if unlimited
func (a *QuizAttempt) Deadline(timeLimitSeconds int) time.Time {
	if timeLimitSeconds <= 0 {
		return time.Time{}
	}
	return a.StartedAt.Add(time.Duration(timeLimitSeconds) * time.Second)
}

// TableName specifies the table name for QuizAttempt
func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// StringList is a JSON-encoded list of strings stored in a single column
type StringList []string

// Value implements driver.Valuer interface for StringList
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface for StringList
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, l)
}

// AnswerSet maps question IDs (as decimal strings) to the selected options
type AnswerSet map[string][]string

// Value implements driver.Valuer interface for AnswerSet
func (s AnswerSet) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner interface for AnswerSet
func (s *AnswerSet) Scan(value interface{}) error {
	if value == nil {
		*s = make(AnswerSet)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, s)
}
