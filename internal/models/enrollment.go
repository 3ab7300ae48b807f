package models

import (
	"time"

	"gorm.io/gorm"
)

// EnrollmentStatus represents the lifecycle of an enrollment
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

// Enrollment links a user to a course they are taking
type Enrollment struct {
	gorm.Model
	UserID      uint             `json:"user_id" gorm:"not null;index:idx_enrollment_user_course,unique"`
	CourseID    uint             `json:"course_id" gorm:"not null;index:idx_enrollment_user_course,unique"`
	Status      EnrollmentStatus `json:"status" gorm:"default:'active';index"`
	CompletedAt *time.Time       `json:"completed_at"`

	Course Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// LessonProgress records a completed lesson for an enrollment
type LessonProgress struct {
	gorm.Model
	EnrollmentID uint      `json:"enrollment_id" gorm:"not null;index:idx_progress_enrollment_lesson,unique"`
	LessonID     uint      `json:"lesson_id" gorm:"not null;index:idx_progress_enrollment_lesson,unique"`
	CompletedAt  time.Time `json:"completed_at"`
}

// TableName specifies the table name for LessonProgress
func (LessonProgress) TableName() string {
	return "lesson_progress"
}
