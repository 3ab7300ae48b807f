package institutions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/jobs"
)

// ErrAlreadyInvited indicates the email already has an invite or membership.
var ErrAlreadyInvited = errors.New("email already invited")

type Service struct {
	repository InstitutionRepository
	userFinder UserFinder
	jobService jobs.Service
}

// NewService creates the institution service. jobService may be nil; invite
// emails are then skipped.
func NewService(repository InstitutionRepository, userFinder UserFinder, jobService jobs.Service) InstitutionService {
	return &Service{
		repository: repository,
		userFinder: userFinder,
		jobService: jobService,
	}
}

func (s *Service) CreateInstitution(ctx context.Context, name, description, logoURL, website string) (*models.Institution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("institution name is required")
	}

	institution := &models.Institution{
		Name:        name,
		Description: description,
		LogoURL:     logoURL,
		Website:     website,
	}
	if err := s.repository.Create(ctx, institution); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Institution created: id=%d name=%q", institution.ID, institution.Name)
	return institution, nil
}

func (s *Service) GetInstitution(ctx context.Context, id uint) (*models.Institution, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *Service) UpdateInstitution(ctx context.Context, id uint, update InstitutionUpdate) (*models.Institution, error) {
	institution, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("institution name is required")
		}
		institution.Name = name
	}
	if update.Description != nil {
		institution.Description = *update.Description
	}
	if update.LogoURL != nil {
		institution.LogoURL = *update.LogoURL
	}
	if update.Website != nil {
		institution.Website = *update.Website
	}

	if err := s.repository.Update(ctx, institution); err != nil {
		return nil, err
	}
	return institution, nil
}

func (s *Service) DeleteInstitution(ctx context.Context, id uint) error {
	return s.repository.Delete(ctx, id)
}

func (s *Service) ListInstitutions(ctx context.Context, page, limit int) ([]models.Institution, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repository.List(ctx, page, limit)
}

// InviteMember creates a membership for the email. If a registered user
// matches, the membership is bound immediately; otherwise it stays pending
// until the user registers.
func (s *Service) InviteMember(ctx context.Context, institutionID uint, email string) (*models.InstitutionMember, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("valid email is required")
	}

	institution, err := s.repository.GetByID(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repository.GetMemberByEmail(ctx, institutionID, email); err == nil {
		return nil, ErrAlreadyInvited
	} else if !errors.Is(err, ErrMemberNotFound) {
		return nil, err
	}

	member := &models.InstitutionMember{
		InstitutionID: institutionID,
		Email:         email,
		InvitedAt:     time.Now().UTC(),
	}

	user, err := s.userFinder.GetUserByEmail(ctx, email)
	if err == nil {
		now := time.Now().UTC()
		member.UserID = &user.ID
		member.JoinedAt = &now
	}

	if err := s.repository.CreateMember(ctx, member); err != nil {
		return nil, err
	}

	if user != nil {
		user.InstitutionID = &institutionID
		if err := s.userFinder.UpdateUser(ctx, user); err != nil {
			log.Printf("[WARN] Failed to link user %d to institution %d: %v", user.ID, institutionID, err)
		}
	}

	s.enqueueInviteEmail(ctx, institution, member)
	return member, nil
}

func (s *Service) enqueueInviteEmail(ctx context.Context, institution *models.Institution, member *models.InstitutionMember) {
	if s.jobService == nil {
		return
	}
	payload := models.JobPayload{
		"template":       "institution_invite",
		"email":          member.Email,
		"institution_id": institution.ID,
		"member_id":      member.ID,
	}
	if _, err := s.jobService.EnqueueUniqueJob(ctx, models.JobTypeNotificationEmail, payload, "member_id"); err != nil {
		log.Printf("[WARN] Failed to enqueue invite email for %s: %v", member.Email, err)
	}
}

func (s *Service) RemoveMember(ctx context.Context, institutionID uint, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	member, err := s.repository.GetMemberByEmail(ctx, institutionID, email)
	if err != nil {
		return err
	}

	if member.UserID != nil {
		user, err := s.userFinder.GetUserByEmail(ctx, email)
		if err == nil && user.InstitutionID != nil && *user.InstitutionID == institutionID {
			user.InstitutionID = nil
			if err := s.userFinder.UpdateUser(ctx, user); err != nil {
				log.Printf("[WARN] Failed to unlink user %d from institution %d: %v", user.ID, institutionID, err)
			}
		}
	}

	return s.repository.DeleteMember(ctx, member.ID)
}

func (s *Service) ListMembers(ctx context.Context, institutionID uint, page, limit int) ([]models.InstitutionMember, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if _, err := s.repository.GetByID(ctx, institutionID); err != nil {
		return nil, 0, err
	}
	return s.repository.ListMembers(ctx, institutionID, page, limit)
}

// AcceptPendingInvites binds outstanding invites for the user's email. The
// first institution bound becomes the user's primary institution.
func (s *Service) AcceptPendingInvites(ctx context.Context, user *models.User) error {
	invites, err := s.repository.FindPendingInvites(ctx, user.Email)
	if err != nil {
		return err
	}
	if len(invites) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range invites {
		invites[i].UserID = &user.ID
		invites[i].JoinedAt = &now
		if err := s.repository.UpdateMember(ctx, &invites[i]); err != nil {
			return fmt.Errorf("accepting invite %d: %w", invites[i].ID, err)
		}
	}

	if user.InstitutionID == nil {
		user.InstitutionID = &invites[0].InstitutionID
		if err := s.userFinder.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("linking user to institution: %w", err)
		}
	}

	log.Printf("[INFO] User %d accepted %d institution invite(s)", user.ID, len(invites))
	return nil
}
