package models

import (
	"time"

	"gorm.io/gorm"
)

// CourseLevel represents the intended audience of a course
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

// Course represents a published or draft course
type Course struct {
	gorm.Model
	Title        string      `json:"title" gorm:"not null;index"`
	Slug         string      `json:"slug" gorm:"uniqueIndex;not null"`
	Description  string      `json:"description" gorm:"type:text"`
	CoverURL     string      `json:"cover_url"`
	Level        CourseLevel `json:"level" gorm:"default:'beginner'"`
	Category     string      `json:"category" gorm:"index"`
	PriceCents   int         `json:"price_cents" gorm:"default:0"`
	Published    bool        `json:"published" gorm:"default:false;index"`
	PublishedAt  *time.Time  `json:"published_at"`
	InstructorID uint        `json:"instructor_id" gorm:"not null;index"`

	InstitutionID *uint `json:"institution_id" gorm:"index"`

	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:CourseID"`
}

// AssetStatus represents the lifecycle of a video asset at the provider
type AssetStatus string

const (
	AssetStatusNone      AssetStatus = ""
	AssetStatusPreparing AssetStatus = "preparing"
	AssetStatusReady     AssetStatus = "ready"
	AssetStatusErrored   AssetStatus = "errored"
)

// Lesson represents an ordered unit of course content backed by a video asset
type Lesson struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"not null;index:idx_lessons_course_position"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Position    int    `json:"position" gorm:"not null;index:idx_lessons_course_position"`
	FreePreview bool   `json:"free_preview" gorm:"default:false"`

	// Video provider fields
	AssetID         string      `json:"asset_id" gorm:"index"`
	PlaybackID      string      `json:"playback_id"`
	AssetStatus     AssetStatus `json:"asset_status" gorm:"default:''"`
	DurationSeconds float64     `json:"duration_seconds"`

	Quiz     *Quiz     `json:"quiz,omitempty" gorm:"foreignKey:LessonID"`
	Captions []Caption `json:"captions,omitempty" gorm:"foreignKey:LessonID"`
}
