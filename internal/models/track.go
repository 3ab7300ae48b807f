package models

import "gorm.io/gorm"

// Track represents a learning path: an ordered sequence of courses
type Track struct {
	gorm.Model
	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	CoverURL    string `json:"cover_url"`
	Published   bool   `json:"published" gorm:"default:false"`
	CreatedBy   uint   `json:"created_by" gorm:"not null"`

	Courses []TrackCourse `json:"courses,omitempty" gorm:"foreignKey:TrackID"`
}

// TrackCourse is an ordered membership of a course in a track
type TrackCourse struct {
	gorm.Model
	TrackID  uint `json:"track_id" gorm:"not null;index:idx_track_course,unique"`
	CourseID uint `json:"course_id" gorm:"not null;index:idx_track_course,unique"`
	Position int  `json:"position" gorm:"not null"`

	Course Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// TableName specifies the table name for TrackCourse
func (TrackCourse) TableName() string {
	return "track_courses"
}
