package institutions

import (
	"context"
	"errors"
	"fmt"

	"github.com/thereadylab/readylab-api/internal/models"
	"gorm.io/gorm"
)

// Repository errors
var (
	ErrInstitutionNotFound = errors.New("institution not found")
	ErrMemberNotFound      = errors.New("institution member not found")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) InstitutionRepository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, institution *models.Institution) error {
	if err := r.db.WithContext(ctx).Create(institution).Error; err != nil {
		return fmt.Errorf("creating institution: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Institution, error) {
	var institution models.Institution
	if err := r.db.WithContext(ctx).First(&institution, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstitutionNotFound
		}
		return nil, fmt.Errorf("getting institution: %w", err)
	}
	return &institution, nil
}

func (r *Repository) Update(ctx context.Context, institution *models.Institution) error {
	result := r.db.WithContext(ctx).Save(institution)
	if result.Error != nil {
		return fmt.Errorf("updating institution: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInstitutionNotFound
	}
	return nil
}

// Delete soft-deletes an institution and its membership rows.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("institution_id = ?", id).Delete(&models.InstitutionMember{}).Error; err != nil {
			return fmt.Errorf("deleting institution members: %w", err)
		}
		result := tx.Delete(&models.Institution{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting institution: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInstitutionNotFound
		}
		return nil
	})
}

func (r *Repository) List(ctx context.Context, page, limit int) ([]models.Institution, int64, error) {
	var institutions []models.Institution
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Institution{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting institutions: %w", err)
	}

	offset := (page - 1) * limit
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&institutions).Error; err != nil {
		return nil, 0, fmt.Errorf("listing institutions: %w", err)
	}
	return institutions, total, nil
}

func (r *Repository) CreateMember(ctx context.Context, member *models.InstitutionMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("creating institution member: %w", err)
	}
	return nil
}

func (r *Repository) GetMemberByEmail(ctx context.Context, institutionID uint, email string) (*models.InstitutionMember, error) {
	var member models.InstitutionMember
	err := r.db.WithContext(ctx).
		Where("institution_id = ? AND email = ?", institutionID, email).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("getting institution member: %w", err)
	}
	return &member, nil
}

func (r *Repository) UpdateMember(ctx context.Context, member *models.InstitutionMember) error {
	result := r.db.WithContext(ctx).Save(member)
	if result.Error != nil {
		return fmt.Errorf("updating institution member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *Repository) DeleteMember(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.InstitutionMember{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting institution member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *Repository) ListMembers(ctx context.Context, institutionID uint, page, limit int) ([]models.InstitutionMember, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.InstitutionMember{}).
		Where("institution_id = ?", institutionID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting institution members: %w", err)
	}

	var members []models.InstitutionMember
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("institution_id = ?", institutionID).
		Order("invited_at ASC").
		Offset(offset).Limit(limit).
		Find(&members).Error; err != nil {
		return nil, 0, fmt.Errorf("listing institution members: %w", err)
	}
	return members, total, nil
}

// FindPendingInvites returns invites whose email matches and which have not
// been bound to a user yet.
func (r *Repository) FindPendingInvites(ctx context.Context, email string) ([]models.InstitutionMember, error) {
	var members []models.InstitutionMember
	err := r.db.WithContext(ctx).
		Where("email = ? AND user_id IS NULL", email).
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("finding pending invites: %w", err)
	}
	return members, nil
}
