package tracks

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/courses"
)

type Service struct {
	repository TrackRepository
}

func NewService(repository TrackRepository) TrackService {
	return &Service{repository: repository}
}

// CreateTrack creates a new learning track
func (s *Service) CreateTrack(ctx context.Context, track *models.Track) (*models.Track, error) {
	if strings.TrimSpace(track.Title) == "" {
		return nil, fmt.Errorf("track title is required")
	}
	if track.Slug == "" {
		track.Slug = courses.Slugify(track.Title)
	}

	if err := s.repository.CreateTrack(ctx, track); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Created track %d (%s)", track.ID, track.Slug)

	return track, nil
}

// UpdateTrack applies a partial update to a track
func (s *Service) UpdateTrack(ctx context.Context, id uint, title, description, coverURL *string, published *bool) (*models.Track, error) {
	track, err := s.repository.GetTrackByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if title != nil {
		track.Title = *title
	}
	if description != nil {
		track.Description = *description
	}
	if coverURL != nil {
		track.CoverURL = *coverURL
	}
	if published != nil {
		track.Published = *published
	}

	if err := s.repository.UpdateTrack(ctx, track); err != nil {
		return nil, err
	}

	return track, nil
}

// DeleteTrack deletes a track and its memberships
func (s *Service) DeleteTrack(ctx context.Context, id uint) error {
	return s.repository.DeleteTrack(ctx, id)
}

// GetByID retrieves a track by ID
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Track, error) {
	return s.repository.GetTrackByID(ctx, id)
}

// GetBySlug retrieves a track by slug
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Track, error) {
	return s.repository.GetTrackBySlug(ctx, slug)
}

// ListTracks returns a paginated list of tracks
func (s *Service) ListTracks(ctx context.Context, page, limit int, publishedOnly bool) ([]models.Track, int64, error) {
	return s.repository.ListTracks(ctx, page, limit, publishedOnly)
}

// AddCourse appends a course at the end of a track
func (s *Service) AddCourse(ctx context.Context, trackID, courseID uint) error {
	if _, err := s.repository.GetTrackByID(ctx, trackID); err != nil {
		return err
	}

	max, err := s.repository.MaxPosition(ctx, trackID)
	if err != nil {
		return err
	}

	tc := &models.TrackCourse{
		TrackID:  trackID,
		CourseID: courseID,
		Position: max + 1,
	}

	return s.repository.AddCourse(ctx, tc)
}

// RemoveCourse removes a course from a track
func (s *Service) RemoveCourse(ctx context.Context, trackID, courseID uint) error {
	return s.repository.RemoveCourse(ctx, trackID, courseID)
}

// ReorderCourses rewrites course positions; orderedCourseIDs must cover the whole track
func (s *Service) ReorderCourses(ctx context.Context, trackID uint, orderedCourseIDs []uint) error {
	count, err := s.repository.CountCourses(ctx, trackID)
	if err != nil {
		return err
	}
	if int64(len(orderedCourseIDs)) != count {
		return fmt.Errorf("reorder requires all %d courses of track %d, got %d", count, trackID, len(orderedCourseIDs))
	}

	return s.repository.UpdateCoursePositions(ctx, trackID, orderedCourseIDs)
}
