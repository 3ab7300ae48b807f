package models

import (
	"time"

	"gorm.io/gorm"
)

// MemberRole represents a user's role within a community
type MemberRole string

const (
	MemberRoleMember    MemberRole = "member"
	MemberRoleModerator MemberRole = "moderator"
)

// Community represents a discussion space, optionally tied to a course
type Community struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
	CoverURL    string `json:"cover_url"`
	CourseID    *uint  `json:"course_id" gorm:"index"`
	CreatedBy   uint   `json:"created_by" gorm:"not null"`

	Members []CommunityMember `json:"members,omitempty" gorm:"foreignKey:CommunityID"`
}

// CommunityMember links a user to a community
type CommunityMember struct {
	gorm.Model
	CommunityID uint       `json:"community_id" gorm:"not null;index:idx_community_member,unique"`
	UserID      uint       `json:"user_id" gorm:"not null;index:idx_community_member,unique"`
	Role        MemberRole `json:"role" gorm:"default:'member'"`
	JoinedAt    time.Time  `json:"joined_at"`
}

// TableName specifies the table name for CommunityMember
func (CommunityMember) TableName() string {
	return "community_members"
}

// Post represents a post within a community
type Post struct {
	gorm.Model
	CommunityID uint   `json:"community_id" gorm:"not null;index"`
	AuthorID    uint   `json:"author_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null"`
	Body        string `json:"body" gorm:"type:text"`
	Pinned      bool   `json:"pinned" gorm:"default:false;index"`
	LikeCount   int    `json:"like_count" gorm:"default:0"`

	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID"`
}

// Comment represents a comment on a post
type Comment struct {
	gorm.Model
	PostID   uint   `json:"post_id" gorm:"not null;index"`
	AuthorID uint   `json:"author_id" gorm:"not null"`
	Body     string `json:"body" gorm:"type:text;not null"`
}

// PostLike records that a user liked a post, once
type PostLike struct {
	gorm.Model
	PostID uint `json:"post_id" gorm:"not null;index:idx_post_like,unique"`
	UserID uint `json:"user_id" gorm:"not null;index:idx_post_like,unique"`
}

// TableName specifies the table name for PostLike
func (PostLike) TableName() string {
	return "post_likes"
}
