package enrollments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/jobs"
	"github.com/thereadylab/readylab-api/internal/services/lessons"
)

type Service struct {
	repository    EnrollmentRepository
	lessonService lessons.LessonService
	lessonCounter LessonCounter
	jobService    jobs.Service
}

// NewService creates the enrollment service. jobService may be nil; completion
// notifications are then skipped.
func NewService(repository EnrollmentRepository, lessonService lessons.LessonService, lessonCounter LessonCounter, jobService jobs.Service) EnrollmentService {
	return &Service{
		repository:    repository,
		lessonService: lessonService,
		lessonCounter: lessonCounter,
		jobService:    jobService,
	}
}

// Enroll enrolls a user into a course, idempotently
func (s *Service) Enroll(ctx context.Context, userID, courseID uint) (*models.Enrollment, error) {
	existing, err := s.repository.GetEnrollment(ctx, userID, courseID)
	if err == nil {
		// Re-enrolling a dropped enrollment reactivates it
		if existing.Status == models.EnrollmentDropped {
			existing.Status = models.EnrollmentActive
			if err := s.repository.UpdateEnrollment(ctx, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}
	if !errors.Is(err, ErrEnrollmentNotFound) {
		return nil, err
	}

	enrollment := &models.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   models.EnrollmentActive,
	}

	if err := s.repository.CreateEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}

	log.Printf("[INFO] User %d enrolled in course %d", userID, courseID)

	return s.repository.GetEnrollmentByID(ctx, enrollment.ID)
}

// Drop marks an enrollment as dropped
func (s *Service) Drop(ctx context.Context, userID, courseID uint) error {
	enrollment, err := s.repository.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		return err
	}

	enrollment.Status = models.EnrollmentDropped
	return s.repository.UpdateEnrollment(ctx, enrollment)
}

// GetEnrollment retrieves the enrollment of a user in a course
func (s *Service) GetEnrollment(ctx context.Context, userID, courseID uint) (*models.Enrollment, error) {
	return s.repository.GetEnrollment(ctx, userID, courseID)
}

// IsEnrolled reports whether the user holds a non-dropped enrollment
func (s *Service) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	enrollment, err := s.repository.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, ErrEnrollmentNotFound) {
			return false, nil
		}
		return false, err
	}
	return enrollment.Status != models.EnrollmentDropped, nil
}

// ListMine returns the caller's enrollments with computed progress
func (s *Service) ListMine(ctx context.Context, userID uint) ([]EnrollmentWithProgress, error) {
	enrollments, err := s.repository.ListEnrollmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]EnrollmentWithProgress, 0, len(enrollments))
	for _, e := range enrollments {
		withProgress, err := s.withProgress(ctx, e)
		if err != nil {
			return nil, err
		}
		result = append(result, withProgress)
	}

	return result, nil
}

// CompleteLesson records lesson completion for the caller's enrollment
func (s *Service) CompleteLesson(ctx context.Context, userID, lessonID uint) (*EnrollmentWithProgress, error) {
	lesson, err := s.lessonService.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.repository.GetEnrollment(ctx, userID, lesson.CourseID)
	if err != nil {
		return nil, err
	}

	if enrollment.Status == models.EnrollmentDropped {
		return nil, fmt.Errorf("enrollment in course %d is dropped", lesson.CourseID)
	}

	// Completing the same lesson twice is a no-op
	_, err = s.repository.GetProgress(ctx, enrollment.ID, lessonID)
	if err == nil {
		withProgress, err := s.withProgress(ctx, *enrollment)
		if err != nil {
			return nil, err
		}
		return &withProgress, nil
	}
	if !errors.Is(err, ErrProgressNotFound) {
		return nil, err
	}

	progress := &models.LessonProgress{
		EnrollmentID: enrollment.ID,
		LessonID:     lessonID,
		CompletedAt:  time.Now(),
	}
	if err := s.repository.CreateProgress(ctx, progress); err != nil {
		return nil, err
	}

	// Check whether the course is now complete
	completed, err := s.repository.CountProgress(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}
	total, err := s.lessonCounter.CountLessonsByCourse(ctx, lesson.CourseID)
	if err != nil {
		return nil, err
	}

	if total > 0 && completed >= total && enrollment.Status != models.EnrollmentCompleted {
		now := time.Now()
		enrollment.Status = models.EnrollmentCompleted
		enrollment.CompletedAt = &now
		if err := s.repository.UpdateEnrollment(ctx, enrollment); err != nil {
			return nil, err
		}

		log.Printf("[INFO] User %d completed course %d", userID, lesson.CourseID)

		if s.jobService != nil {
			payload := models.JobPayload{
				"template":      "course_completed",
				"user_id":       enrollment.UserID,
				"course_id":     enrollment.CourseID,
				"enrollment_id": enrollment.ID,
			}
			if _, err := s.jobService.EnqueueUniqueJob(ctx, models.JobTypeNotificationEmail, payload, "enrollment_id"); err != nil {
				log.Printf("[WARN] Failed to enqueue completion notification for enrollment %d: %v", enrollment.ID, err)
			}
		}
	}

	withProgress, err := s.withProgress(ctx, *enrollment)
	if err != nil {
		return nil, err
	}
	return &withProgress, nil
}

func (s *Service) withProgress(ctx context.Context, enrollment models.Enrollment) (EnrollmentWithProgress, error) {
	completed, err := s.repository.CountProgress(ctx, enrollment.ID)
	if err != nil {
		return EnrollmentWithProgress{}, err
	}

	total, err := s.lessonCounter.CountLessonsByCourse(ctx, enrollment.CourseID)
	if err != nil {
		return EnrollmentWithProgress{}, err
	}

	percent := 0.0
	if total > 0 {
		percent = float64(completed) / float64(total) * 100
	}

	return EnrollmentWithProgress{
		Enrollment:       enrollment,
		CompletedLessons: completed,
		TotalLessons:     total,
		ProgressPercent:  percent,
	}, nil
}
