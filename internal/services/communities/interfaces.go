package communities

import (
	"context"

	"github.com/thereadylab/readylab-api/internal/models"
)

// CommunityUpdate carries optional field changes for a community.
type CommunityUpdate struct {
	Name        *string
	Description *string
}

// MemberWithUser pairs a membership row with the user behind it.
type MemberWithUser struct {
	models.CommunityMember
	User models.User `json:"user"`
}

// CommunityRepository defines data access for communities and memberships.
type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id uint) (*models.Community, error)
	Update(ctx context.Context, community *models.Community) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page, limit int) ([]models.Community, int64, error)

	GetMember(ctx context.Context, communityID, userID uint) (*models.CommunityMember, error)
	CreateMember(ctx context.Context, member *models.CommunityMember) error
	UpdateMember(ctx context.Context, member *models.CommunityMember) error
	DeleteMember(ctx context.Context, communityID, userID uint) error
	ListMembers(ctx context.Context, communityID uint, page, limit int) ([]MemberWithUser, int64, error)
	CountMembers(ctx context.Context, communityID uint) (int64, error)
}

// CommunityService defines business logic for communities.
type CommunityService interface {
	CreateCommunity(ctx context.Context, name, description string, courseID *uint, creatorID uint) (*models.Community, error)
	GetCommunity(ctx context.Context, id uint) (*models.Community, error)
	UpdateCommunity(ctx context.Context, id uint, update CommunityUpdate) (*models.Community, error)
	DeleteCommunity(ctx context.Context, id uint) error
	ListCommunities(ctx context.Context, page, limit int) ([]models.Community, int64, error)

	Join(ctx context.Context, communityID, userID uint) (*models.CommunityMember, error)
	Leave(ctx context.Context, communityID, userID uint) error
	SetMemberRole(ctx context.Context, communityID, userID uint, role models.MemberRole) (*models.CommunityMember, error)
	ListMembers(ctx context.Context, communityID uint, page, limit int) ([]MemberWithUser, int64, error)
	GetMembership(ctx context.Context, communityID, userID uint) (*models.CommunityMember, error)
}
