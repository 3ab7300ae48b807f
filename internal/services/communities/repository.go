package communities

import (
	"context"
	"errors"
	"fmt"

	"github.com/thereadylab/readylab-api/internal/models"
	"gorm.io/gorm"
)

// Repository errors
var (
	ErrCommunityNotFound = errors.New("community not found")
	ErrMemberNotFound    = errors.New("community member not found")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) CommunityRepository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, community *models.Community) error {
	if err := r.db.WithContext(ctx).Create(community).Error; err != nil {
		return fmt.Errorf("creating community: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).First(&community, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, fmt.Errorf("getting community: %w", err)
	}
	return &community, nil
}

func (r *Repository) Update(ctx context.Context, community *models.Community) error {
	result := r.db.WithContext(ctx).Save(community)
	if result.Error != nil {
		return fmt.Errorf("updating community: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCommunityNotFound
	}
	return nil
}

// Delete soft-deletes a community and removes its memberships.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ?", id).Delete(&models.CommunityMember{}).Error; err != nil {
			return fmt.Errorf("deleting community members: %w", err)
		}
		result := tx.Delete(&models.Community{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting community: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrCommunityNotFound
		}
		return nil
	})
}

func (r *Repository) List(ctx context.Context, page, limit int) ([]models.Community, int64, error) {
	var communities []models.Community
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Community{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting communities: %w", err)
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&communities).Error; err != nil {
		return nil, 0, fmt.Errorf("listing communities: %w", err)
	}
	return communities, total, nil
}

func (r *Repository) GetMember(ctx context.Context, communityID, userID uint) (*models.CommunityMember, error) {
	var member models.CommunityMember
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("getting community member: %w", err)
	}
	return &member, nil
}

func (r *Repository) CreateMember(ctx context.Context, member *models.CommunityMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("creating community member: %w", err)
	}
	return nil
}

func (r *Repository) UpdateMember(ctx context.Context, member *models.CommunityMember) error {
	result := r.db.WithContext(ctx).Save(member)
	if result.Error != nil {
		return fmt.Errorf("updating community member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *Repository) DeleteMember(ctx context.Context, communityID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.CommunityMember{})
	if result.Error != nil {
		return fmt.Errorf("deleting community member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// ListMembers returns memberships joined with user records, ordered by join date.
func (r *Repository) ListMembers(ctx context.Context, communityID uint, page, limit int) ([]MemberWithUser, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.CommunityMember{}).
		Where("community_id = ?", communityID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting community members: %w", err)
	}

	var members []models.CommunityMember
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&members).Error; err != nil {
		return nil, 0, fmt.Errorf("listing community members: %w", err)
	}

	result := make([]MemberWithUser, 0, len(members))
	for _, member := range members {
		var user models.User
		if err := r.db.WithContext(ctx).First(&user, member.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, 0, fmt.Errorf("loading member user: %w", err)
		}
		result = append(result, MemberWithUser{CommunityMember: member, User: user})
	}
	return result, total, nil
}

func (r *Repository) CountMembers(ctx context.Context, communityID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommunityMember{}).
		Where("community_id = ?", communityID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting community members: %w", err)
	}
	return count, nil
}
