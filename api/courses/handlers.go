package courses

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/courses"
	"github.com/thereadylab/readylab-api/internal/services/enrollments"
)

// CreateCourseRequest is the payload for course creation
type CreateCourseRequest struct {
	Title         string `json:"title" binding:"required,min=1"`
	Description   string `json:"description"`
	CoverURL      string `json:"cover_url"`
	Level         string `json:"level"`
	Category      string `json:"category"`
	PriceCents    int    `json:"price_cents" binding:"min=0"`
	InstitutionID *uint  `json:"institution_id"`
}

// UpdateCourseRequest carries optional course field changes
type UpdateCourseRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CoverURL    *string `json:"cover_url"`
	Level       *string `json:"level"`
	Category    *string `json:"category"`
	PriceCents  *int    `json:"price_cents"`
}

// canManage reports whether the caller owns the course or is an admin.
func canManage(c *gin.Context, course *models.Course) bool {
	userID, _ := auth.CurrentUserID(c)
	role, _ := auth.CurrentRole(c)
	return role == models.RoleAdmin || course.InstructorID == userID
}

// Create handles course creation
// @Summary Create a course
// @Tags courses
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateCourseRequest true "Course details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} types.ErrorResponse
// @Router /api/v1/courses [post]
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCourseRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		userID, _ := auth.CurrentUserID(c)
		course := &models.Course{
			Title:         req.Title,
			Description:   req.Description,
			CoverURL:      req.CoverURL,
			Level:         models.CourseLevel(req.Level),
			Category:      req.Category,
			PriceCents:    req.PriceCents,
			InstructorID:  userID,
			InstitutionID: req.InstitutionID,
		}

		created, err := deps.CourseService.CreateCourse(c.Request.Context(), course)
		if err != nil {
			if errors.Is(err, courses.ErrSlugTaken) {
				types.SendConflict(c, "A course with a similar title already exists")
				return
			}
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendCreated(c, created)
	}
}

// List handles course listing with pagination and search
// @Summary List courses
// @Tags courses
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param search query string false "Search in title"
// @Param category query string false "Category filter"
// @Success 200 {object} types.ListResponse
// @Router /api/v1/courses [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := types.ParsePagination(c)

		opts := courses.ListOptions{
			Page:          page,
			Limit:         limit,
			Search:        c.Query("search"),
			Category:      c.Query("category"),
			PublishedOnly: true,
		}
		if institutionID, err := strconv.ParseUint(c.Query("institution_id"), 10, 32); err == nil {
			opts.InstitutionID = uint(institutionID)
		}

		// Instructors and admins may list their unpublished courses.
		if role, ok := auth.CurrentRole(c); ok {
			if role == models.RoleAdmin {
				opts.PublishedOnly = false
			} else if role == models.RoleInstructor && c.Query("mine") == "true" {
				userID, _ := auth.CurrentUserID(c)
				opts.InstructorID = userID
				opts.PublishedOnly = false
			}
		}

		items, total, err := deps.CourseService.ListCourses(c.Request.Context(), opts)
		if err != nil {
			types.SendInternalError(c, "Failed to list courses")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: items, Count: len(items), Total: total, Page: page, Limit: limit})
	}
}

// Get handles single-course retrieval
// @Summary Get a course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/courses/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		course, err := deps.CourseService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Course not found")
			return
		}

		// Unpublished courses are only visible to their owner and admins.
		if !course.Published && !canManage(c, course) {
			types.SendNotFound(c, "Course not found")
			return
		}
		types.SendSuccess(c, course)
	}
}

// GetBySlug handles retrieval by slug
// @Summary Get a course by slug
// @Tags courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/courses/slug/{slug} [get]
func GetBySlug(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, err := deps.CourseService.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			types.SendNotFound(c, "Course not found")
			return
		}
		if !course.Published && !canManage(c, course) {
			types.SendNotFound(c, "Course not found")
			return
		}
		types.SendSuccess(c, course)
	}
}

// Update handles course updates
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		course, err := deps.CourseService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Course not found")
			return
		}
		if !canManage(c, course) {
			types.SendForbidden(c, "Only the course instructor may edit it")
			return
		}

		var req UpdateCourseRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		var level *models.CourseLevel
		if req.Level != nil {
			l := models.CourseLevel(*req.Level)
			level = &l
		}
		updated, err := deps.CourseService.UpdateCourse(c.Request.Context(), id, courses.CourseUpdate{
			Title:       req.Title,
			Description: req.Description,
			CoverURL:    req.CoverURL,
			Level:       level,
			Category:    req.Category,
			PriceCents:  req.PriceCents,
		})
		if err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendSuccess(c, updated)
	}
}

// Delete handles course deletion
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		course, err := deps.CourseService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Course not found")
			return
		}
		if !canManage(c, course) {
			types.SendForbidden(c, "Only the course instructor may delete it")
			return
		}

		if err := deps.CourseService.DeleteCourse(c.Request.Context(), id); err != nil {
			types.SendInternalError(c, "Failed to delete course")
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}

// SetPublished handles publish and unpublish
func SetPublished(deps *types.Dependencies, published bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		course, err := deps.CourseService.GetByID(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Course not found")
			return
		}
		if !canManage(c, course) {
			types.SendForbidden(c, "Only the course instructor may publish it")
			return
		}

		updated, err := deps.CourseService.SetPublished(c.Request.Context(), id, published)
		if err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendSuccess(c, updated)
	}
}

// Enroll handles course enrollment for the authenticated user
// @Summary Enroll in a course
// @Tags enrollments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Course ID"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/courses/{id}/enroll [post]
func Enroll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		course, err := deps.CourseService.GetByID(c.Request.Context(), id)
		if err != nil || !course.Published {
			types.SendNotFound(c, "Course not found")
			return
		}

		enrollment, err := deps.EnrollmentService.Enroll(c.Request.Context(), userID, id)
		if err != nil {
			types.SendInternalError(c, "Failed to enroll")
			return
		}
		types.SendCreated(c, enrollment)
	}
}

// Unenroll drops the authenticated user's enrollment
func Unenroll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		if err := deps.EnrollmentService.Drop(c.Request.Context(), userID, id); err != nil {
			if errors.Is(err, enrollments.ErrEnrollmentNotFound) {
				types.SendNotFound(c, "Enrollment not found")
				return
			}
			types.SendInternalError(c, "Failed to drop enrollment")
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}
