package users

import (
	"context"

	"github.com/thereadylab/readylab-api/internal/models"
)

// UserRepository defines the data access interface for users
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error

	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error)
	CountUsers(ctx context.Context) (int64, error)

	SetActive(ctx context.Context, id uint, active bool) error
}

// UserService defines the business logic interface for user operations
type UserService interface {
	Register(ctx context.Context, email, fullName, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)

	GetByID(ctx context.Context, id uint) (*models.User, error)
	UpdateProfile(ctx context.Context, id uint, fullName, bio, avatarURL string) (*models.User, error)

	ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error)
	SetActive(ctx context.Context, id uint, active bool) error
}
