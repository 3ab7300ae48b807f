package tracks

import (
	"context"

	"github.com/thereadylab/readylab-api/internal/models"
)

// TrackRepository defines the data access interface for learning tracks
type TrackRepository interface {
	CreateTrack(ctx context.Context, track *models.Track) error
	UpdateTrack(ctx context.Context, track *models.Track) error
	DeleteTrack(ctx context.Context, id uint) error

	GetTrackByID(ctx context.Context, id uint) (*models.Track, error)
	GetTrackBySlug(ctx context.Context, slug string) (*models.Track, error)
	ListTracks(ctx context.Context, page, limit int, publishedOnly bool) ([]models.Track, int64, error)

	AddCourse(ctx context.Context, tc *models.TrackCourse) error
	RemoveCourse(ctx context.Context, trackID, courseID uint) error
	MaxPosition(ctx context.Context, trackID uint) (int, error)
	UpdateCoursePositions(ctx context.Context, trackID uint, orderedCourseIDs []uint) error
	CountCourses(ctx context.Context, trackID uint) (int64, error)
}

// TrackService defines the business logic interface for track operations
type TrackService interface {
	CreateTrack(ctx context.Context, track *models.Track) (*models.Track, error)
	UpdateTrack(ctx context.Context, id uint, title, description, coverURL *string, published *bool) (*models.Track, error)
	DeleteTrack(ctx context.Context, id uint) error

	GetByID(ctx context.Context, id uint) (*models.Track, error)
	GetBySlug(ctx context.Context, slug string) (*models.Track, error)
	ListTracks(ctx context.Context, page, limit int, publishedOnly bool) ([]models.Track, int64, error)

	AddCourse(ctx context.Context, trackID, courseID uint) error
	RemoveCourse(ctx context.Context, trackID, courseID uint) error
	ReorderCourses(ctx context.Context, trackID uint, orderedCourseIDs []uint) error
}
