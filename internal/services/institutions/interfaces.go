package institutions

import (
	"context"

	"github.com/thereadylab/readylab-api/internal/models"
)

// InstitutionUpdate carries optional field changes for an institution.
type InstitutionUpdate struct {
	Name        *string
	Description *string
	LogoURL     *string
	Website     *string
}

// InstitutionRepository defines data access for institutions and memberships.
type InstitutionRepository interface {
	Create(ctx context.Context, institution *models.Institution) error
	GetByID(ctx context.Context, id uint) (*models.Institution, error)
	Update(ctx context.Context, institution *models.Institution) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page, limit int) ([]models.Institution, int64, error)

	CreateMember(ctx context.Context, member *models.InstitutionMember) error
	GetMemberByEmail(ctx context.Context, institutionID uint, email string) (*models.InstitutionMember, error)
	UpdateMember(ctx context.Context, member *models.InstitutionMember) error
	DeleteMember(ctx context.Context, id uint) error
	ListMembers(ctx context.Context, institutionID uint, page, limit int) ([]models.InstitutionMember, int64, error)
	FindPendingInvites(ctx context.Context, email string) ([]models.InstitutionMember, error)
}

// UserFinder looks up users when resolving invites.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// InstitutionService defines business logic for institutions.
type InstitutionService interface {
	CreateInstitution(ctx context.Context, name, description, logoURL, website string) (*models.Institution, error)
	GetInstitution(ctx context.Context, id uint) (*models.Institution, error)
	UpdateInstitution(ctx context.Context, id uint, update InstitutionUpdate) (*models.Institution, error)
	DeleteInstitution(ctx context.Context, id uint) error
	ListInstitutions(ctx context.Context, page, limit int) ([]models.Institution, int64, error)

	InviteMember(ctx context.Context, institutionID uint, email string) (*models.InstitutionMember, error)
	RemoveMember(ctx context.Context, institutionID uint, email string) error
	ListMembers(ctx context.Context, institutionID uint, page, limit int) ([]models.InstitutionMember, int64, error)

	// AcceptPendingInvites binds any outstanding email invites to a user,
	// typically right after registration.
	AcceptPendingInvites(ctx context.Context, user *models.User) error
}
