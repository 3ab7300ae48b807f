package tracks

import (
	"context"
	"errors"
	"fmt"

	"github.com/thereadylab/readylab-api/internal/models"
	"gorm.io/gorm"
)

// Repository errors
var (
	ErrTrackNotFound    = errors.New("track not found")
	ErrCourseNotInTrack = errors.New("course not in track")
	ErrCourseInTrack    = errors.New("course already in track")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) TrackRepository {
	return &Repository{db: db}
}

// CreateTrack creates a new track
func (r *Repository) CreateTrack(ctx context.Context, track *models.Track) error {
	if err := r.db.WithContext(ctx).Create(track).Error; err != nil {
		return fmt.Errorf("creating track: %w", err)
	}
	return nil
}

// UpdateTrack updates an existing track
func (r *Repository) UpdateTrack(ctx context.Context, track *models.Track) error {
	result := r.db.WithContext(ctx).Save(track)
	if result.Error != nil {
		return fmt.Errorf("updating track: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTrackNotFound
	}
	return nil
}

// DeleteTrack soft-deletes a track and removes its course memberships
func (r *Repository) DeleteTrack(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", id).Delete(&models.TrackCourse{}).Error; err != nil {
			return fmt.Errorf("deleting track courses: %w", err)
		}
		result := tx.Delete(&models.Track{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting track: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrTrackNotFound
		}
		return nil
	})
}

// GetTrackByID retrieves a track with its ordered courses
func (r *Repository) GetTrackByID(ctx context.Context, id uint) (*models.Track, error) {
	var track models.Track
	if err := r.db.WithContext(ctx).
		Preload("Courses", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Courses.Course").
		First(&track, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackNotFound
		}
		return nil, fmt.Errorf("getting track: %w", err)
	}
	return &track, nil
}

// GetTrackBySlug retrieves a track by slug
func (r *Repository) GetTrackBySlug(ctx context.Context, slug string) (*models.Track, error) {
	var track models.Track
	if err := r.db.WithContext(ctx).
		Preload("Courses", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Courses.Course").
		Where("slug = ?", slug).
		First(&track).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackNotFound
		}
		return nil, fmt.Errorf("getting track by slug: %w", err)
	}
	return &track, nil
}

// ListTracks returns a paginated list of tracks
func (r *Repository) ListTracks(ctx context.Context, page, limit int, publishedOnly bool) ([]models.Track, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Model(&models.Track{})
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting tracks: %w", err)
	}

	var tracks []models.Track
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tracks).Error; err != nil {
		return nil, 0, fmt.Errorf("listing tracks: %w", err)
	}

	return tracks, total, nil
}

// AddCourse adds a course to a track
func (r *Repository) AddCourse(ctx context.Context, tc *models.TrackCourse) error {
	var existing models.TrackCourse
	err := r.db.WithContext(ctx).
		Where("track_id = ? AND course_id = ?", tc.TrackID, tc.CourseID).
		First(&existing).Error
	if err == nil {
		return ErrCourseInTrack
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking track course: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(tc).Error; err != nil {
		return fmt.Errorf("adding course to track: %w", err)
	}
	return nil
}

// RemoveCourse removes a course from a track
func (r *Repository) RemoveCourse(ctx context.Context, trackID, courseID uint) error {
	result := r.db.WithContext(ctx).
		Where("track_id = ? AND course_id = ?", trackID, courseID).
		Delete(&models.TrackCourse{})

	if result.Error != nil {
		return fmt.Errorf("removing course from track: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotInTrack
	}
	return nil
}

// MaxPosition returns the highest course position in a track (0 if empty)
func (r *Repository) MaxPosition(ctx context.Context, trackID uint) (int, error) {
	var max *int
	if err := r.db.WithContext(ctx).
		Model(&models.TrackCourse{}).
		Where("track_id = ?", trackID).
		Select("MAX(position)").
		Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("getting max track position: %w", err)
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// UpdateCoursePositions rewrites course positions in a single transaction
func (r *Repository) UpdateCoursePositions(ctx context.Context, trackID uint, orderedCourseIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, courseID := range orderedCourseIDs {
			result := tx.Model(&models.TrackCourse{}).
				Where("track_id = ? AND course_id = ?", trackID, courseID).
				Update("position", i+1)
			if result.Error != nil {
				return fmt.Errorf("updating course %d position: %w", courseID, result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrCourseNotInTrack
			}
		}
		return nil
	})
}

// CountCourses returns the number of courses in a track
func (r *Repository) CountCourses(ctx context.Context, trackID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TrackCourse{}).
		Where("track_id = ?", trackID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting track courses: %w", err)
	}
	return count, nil
}
