package users

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/auth"
)

type Service struct {
	repository UserRepository
}

func NewService(repository UserRepository) UserService {
	return &Service{repository: repository}
}

// Register creates a new student account with a hashed password
func (s *Service) Register(ctx context.Context, email, fullName, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         models.RoleStudent,
		IsActive:     true,
	}

	if err := s.repository.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Registered user %d (%s)", user.ID, user.Email)

	return user, nil
}

// Authenticate verifies credentials and returns the user on success
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repository.GetUserByEmail(ctx, email)
	if err != nil {
		// Same error for unknown email and wrong password
		return nil, auth.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, auth.ErrInvalidCredentials
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (s *Service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.repository.GetUserByID(ctx, id)
}

// UpdateProfile updates the mutable profile fields of a user
func (s *Service) UpdateProfile(ctx context.Context, id uint, fullName, bio, avatarURL string) (*models.User, error) {
	user, err := s.repository.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if fullName != "" {
		user.FullName = fullName
	}
	user.Bio = bio
	if avatarURL != "" {
		user.AvatarURL = avatarURL
	}

	if err := s.repository.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ListUsers returns a paginated list of users
func (s *Service) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	return s.repository.ListUsers(ctx, page, limit)
}

// SetActive toggles an account's active flag
func (s *Service) SetActive(ctx context.Context, id uint, active bool) error {
	if err := s.repository.SetActive(ctx, id, active); err != nil {
		return err
	}
	log.Printf("[INFO] User %d active=%t", id, active)
	return nil
}
