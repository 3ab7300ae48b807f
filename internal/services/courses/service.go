package courses

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/thereadylab/readylab-api/internal/models"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

type Service struct {
	repository CourseRepository
}

func NewService(repository CourseRepository) CourseService {
	return &Service{repository: repository}
}

// CreateCourse creates a draft course, deriving a slug from the title if absent
func (s *Service) CreateCourse(ctx context.Context, course *models.Course) (*models.Course, error) {
	if strings.TrimSpace(course.Title) == "" {
		return nil, fmt.Errorf("course title is required")
	}
	if course.Slug == "" {
		course.Slug = Slugify(course.Title)
	}
	course.Published = false
	course.PublishedAt = nil

	if err := s.repository.CreateCourse(ctx, course); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Created course %d (%s)", course.ID, course.Slug)

	return course, nil
}

// UpdateCourse applies a partial update to a course
func (s *Service) UpdateCourse(ctx context.Context, id uint, update CourseUpdate) (*models.Course, error) {
	course, err := s.repository.GetCourseByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		course.Title = *update.Title
	}
	if update.Description != nil {
		course.Description = *update.Description
	}
	if update.CoverURL != nil {
		course.CoverURL = *update.CoverURL
	}
	if update.Level != nil {
		course.Level = *update.Level
	}
	if update.Category != nil {
		course.Category = *update.Category
	}
	if update.PriceCents != nil {
		course.PriceCents = *update.PriceCents
	}

	if err := s.repository.UpdateCourse(ctx, course); err != nil {
		return nil, err
	}

	return course, nil
}

// DeleteCourse soft-deletes a course
func (s *Service) DeleteCourse(ctx context.Context, id uint) error {
	return s.repository.DeleteCourse(ctx, id)
}

// GetByID retrieves a course by ID
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	return s.repository.GetCourseByID(ctx, id)
}

// GetBySlug retrieves a course by slug
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	return s.repository.GetCourseBySlug(ctx, slug)
}

// ListCourses returns a paginated, filtered course listing
func (s *Service) ListCourses(ctx context.Context, opts ListOptions) ([]models.Course, int64, error) {
	return s.repository.ListCourses(ctx, opts)
}

// SetPublished publishes or unpublishes a course. A course needs at least one
// lesson before it can be published.
func (s *Service) SetPublished(ctx context.Context, id uint, published bool) (*models.Course, error) {
	course, err := s.repository.GetCourseByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if published && len(course.Lessons) == 0 {
		return nil, fmt.Errorf("course %d cannot be published without lessons", id)
	}

	course.Published = published
	if published {
		now := time.Now()
		course.PublishedAt = &now
	} else {
		course.PublishedAt = nil
	}

	if err := s.repository.UpdateCourse(ctx, course); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Course %d published=%t", id, published)

	return course, nil
}

// Slugify converts a title into a URL-safe slug
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
