package communities

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/thereadylab/readylab-api/internal/models"
)

// Service errors
var (
	ErrAlreadyMember = errors.New("user is already a member")
	ErrNotMember     = errors.New("user is not a member")
)

type Service struct {
	repository CommunityRepository
}

func NewService(repository CommunityRepository) CommunityService {
	return &Service{repository: repository}
}

// CreateCommunity creates a community and enrolls the creator as a moderator.
func (s *Service) CreateCommunity(ctx context.Context, name, description string, courseID *uint, creatorID uint) (*models.Community, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("community name is required")
	}

	community := &models.Community{
		Name:        name,
		Description: description,
		CourseID:    courseID,
		CreatedBy:   creatorID,
	}
	if err := s.repository.Create(ctx, community); err != nil {
		return nil, err
	}

	member := &models.CommunityMember{
		CommunityID: community.ID,
		UserID:      creatorID,
		Role:        models.MemberRoleModerator,
		JoinedAt:    time.Now().UTC(),
	}
	if err := s.repository.CreateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("adding creator as moderator: %w", err)
	}

	log.Printf("[INFO] Community created: id=%d name=%q creator=%d", community.ID, community.Name, creatorID)
	return community, nil
}

func (s *Service) GetCommunity(ctx context.Context, id uint) (*models.Community, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *Service) UpdateCommunity(ctx context.Context, id uint, update CommunityUpdate) (*models.Community, error) {
	community, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("community name is required")
		}
		community.Name = name
	}
	if update.Description != nil {
		community.Description = *update.Description
	}

	if err := s.repository.Update(ctx, community); err != nil {
		return nil, err
	}
	return community, nil
}

func (s *Service) DeleteCommunity(ctx context.Context, id uint) error {
	return s.repository.Delete(ctx, id)
}

func (s *Service) ListCommunities(ctx context.Context, page, limit int) ([]models.Community, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repository.List(ctx, page, limit)
}

// Join adds the user as a member. Joining twice is a no-op that returns the
// existing membership.
func (s *Service) Join(ctx context.Context, communityID, userID uint) (*models.CommunityMember, error) {
	if _, err := s.repository.GetByID(ctx, communityID); err != nil {
		return nil, err
	}

	existing, err := s.repository.GetMember(ctx, communityID, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrMemberNotFound) {
		return nil, err
	}

	member := &models.CommunityMember{
		CommunityID: communityID,
		UserID:      userID,
		Role:        models.MemberRoleMember,
		JoinedAt:    time.Now().UTC(),
	}
	if err := s.repository.CreateMember(ctx, member); err != nil {
		return nil, err
	}

	log.Printf("[DEBUG] User %d joined community %d", userID, communityID)
	return member, nil
}

func (s *Service) Leave(ctx context.Context, communityID, userID uint) error {
	if err := s.repository.DeleteMember(ctx, communityID, userID); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return ErrNotMember
		}
		return err
	}
	return nil
}

// SetMemberRole promotes or demotes a member. Used by admins and moderators.
func (s *Service) SetMemberRole(ctx context.Context, communityID, userID uint, role models.MemberRole) (*models.CommunityMember, error) {
	if role != models.MemberRoleMember && role != models.MemberRoleModerator {
		return nil, fmt.Errorf("invalid member role: %s", role)
	}

	member, err := s.repository.GetMember(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrNotMember
		}
		return nil, err
	}

	member.Role = role
	if err := s.repository.UpdateMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *Service) ListMembers(ctx context.Context, communityID uint, page, limit int) ([]MemberWithUser, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if _, err := s.repository.GetByID(ctx, communityID); err != nil {
		return nil, 0, err
	}
	return s.repository.ListMembers(ctx, communityID, page, limit)
}

func (s *Service) GetMembership(ctx context.Context, communityID, userID uint) (*models.CommunityMember, error) {
	return s.repository.GetMember(ctx, communityID, userID)
}
