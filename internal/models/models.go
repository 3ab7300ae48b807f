package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents the role of a platform user
type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// User represents a platform account
type User struct {
	gorm.Model
	Email        string   `json:"email" gorm:"uniqueIndex;not null"`
	FullName     string   `json:"full_name" gorm:"not null"`
	PasswordHash string   `json:"-" gorm:"not null"`
	Role         UserRole `json:"role" gorm:"default:'student';index"`
	Bio          string   `json:"bio" gorm:"type:text"`
	AvatarURL    string   `json:"avatar_url"`
	IsActive     bool     `json:"is_active" gorm:"default:true"`

	InstitutionID *uint `json:"institution_id" gorm:"index"`

	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"foreignKey:UserID"`
}

// IsInstructor reports whether the user may manage course content
func (u *User) IsInstructor() bool {
	return u.Role == RoleInstructor || u.Role == RoleAdmin
}

// Institution represents a school or company account grouping users
type Institution struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
	LogoURL     string `json:"logo_url"`
	Website     string `json:"website"`

	Members []InstitutionMember `json:"members,omitempty" gorm:"foreignKey:InstitutionID"`
}

// InstitutionMember links a user (or a pending email invite) to an institution
type InstitutionMember struct {
	gorm.Model
	InstitutionID uint       `json:"institution_id" gorm:"not null;index:idx_institution_member,unique"`
	UserID        *uint      `json:"user_id" gorm:"index:idx_institution_member,unique"`
	Email         string     `json:"email" gorm:"not null"`
	InvitedAt     time.Time  `json:"invited_at"`
	JoinedAt      *time.Time `json:"joined_at"`
}

// TableName specifies the table name for InstitutionMember
func (InstitutionMember) TableName() string {
	return "institution_members"
}

// AllModels returns every model for schema migration, ordered so that
// referenced tables are created before their dependents.
func AllModels() []any {
	return []any{
		&User{},
		&Institution{},
		&InstitutionMember{},
		&Course{},
		&Lesson{},
		&Track{},
		&TrackCourse{},
		&Enrollment{},
		&LessonProgress{},
		&Quiz{},
		&QuizQuestion{},
		&QuizAttempt{},
		&Community{},
		&CommunityMember{},
		&Post{},
		&Comment{},
		&PostLike{},
		&LiveEvent{},
		&EventRegistration{},
		&Plan{},
		&Subscription{},
		&PaymentEvent{},
		&Caption{},
		&WebhookEvent{},
		&Job{},
	}
}
