package events

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/events"
)

// CreateEventRequest is the payload for scheduling a live event
type CreateEventRequest struct {
	Title       string `json:"title" binding:"required,min=1"`
	Description string `json:"description"`
	CourseID    *uint  `json:"course_id"`
	ScheduledAt int64  `json:"scheduled_at" binding:"required"`
}

// UpdateEventRequest carries optional event field changes
type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ScheduledAt *int64  `json:"scheduled_at"`
}

// hostView includes the stream key, which only the host may see
type hostView struct {
	*models.LiveEvent
	StreamKey string `json:"stream_key"`
}

// List handles event listing
// @Summary List live events
// @Tags events
// @Produce json
// @Param upcoming query bool false "Only scheduled events"
// @Success 200 {object} types.ListResponse
// @Router /api/v1/events [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := types.ParsePagination(c)
		upcoming := c.Query("upcoming") == "true"

		items, total, err := deps.EventService.ListEvents(c.Request.Context(), page, limit, upcoming)
		if err != nil {
			types.SendInternalError(c, "Failed to list events")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: items, Count: len(items), Total: total, Page: page, Limit: limit})
	}
}

// Get handles single-event retrieval; the host also receives the stream key
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		event, err := deps.EventService.GetEvent(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Event not found")
			return
		}

		if userID, ok := auth.CurrentUserID(c); ok && userID == event.HostID {
			types.SendSuccess(c, hostView{LiveEvent: event, StreamKey: event.StreamKey})
			return
		}
		types.SendSuccess(c, event)
	}
}

// Create handles scheduling a new event
// @Summary Schedule a live event
// @Tags events
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "Event details"
// @Success 201 {object} map[string]interface{}
// @Router /api/v1/events [post]
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		event, err := deps.EventService.CreateEvent(c.Request.Context(), userID, req.Title, req.Description, req.CourseID, req.ScheduledAt)
		if err != nil {
			types.SendBadRequest(c, err.Error())
			return
		}
		types.SendCreated(c, hostView{LiveEvent: event, StreamKey: event.StreamKey})
	}
}

// Update handles event edits by the host
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		var req UpdateEventRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		event, err := deps.EventService.UpdateEvent(c.Request.Context(), id, userID, events.EventUpdate{
			Title:       req.Title,
			Description: req.Description,
			ScheduledAt: req.ScheduledAt,
		})
		if err != nil {
			switch {
			case errors.Is(err, events.ErrEventNotFound):
				types.SendNotFound(c, "Event not found")
			case errors.Is(err, events.ErrNotHost):
				types.SendForbidden(c, "Only the host may edit the event")
			case errors.Is(err, events.ErrEventNotEditable):
				types.SendConflict(c, "Event can no longer be modified")
			default:
				types.SendBadRequest(c, err.Error())
			}
			return
		}
		types.SendSuccess(c, event)
	}
}

// Cancel handles event cancellation by the host
func Cancel(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		event, err := deps.EventService.CancelEvent(c.Request.Context(), id, userID)
		if err != nil {
			switch {
			case errors.Is(err, events.ErrEventNotFound):
				types.SendNotFound(c, "Event not found")
			case errors.Is(err, events.ErrNotHost):
				types.SendForbidden(c, "Only the host may cancel the event")
			case errors.Is(err, events.ErrEventNotEditable):
				types.SendConflict(c, "Event can no longer be modified")
			default:
				types.SendInternalError(c, "Failed to cancel event")
			}
			return
		}
		types.SendSuccess(c, event)
	}
}

// Register handles attendee registration
// @Summary Register for an event
// @Tags events
// @Security BearerAuth
// @Produce json
// @Param id path int true "Event ID"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} types.ErrorResponse "Already registered"
// @Router /api/v1/events/{id}/register [post]
func Register(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		registration, err := deps.EventService.Register(c.Request.Context(), id, userID)
		if err != nil {
			switch {
			case errors.Is(err, events.ErrEventNotFound):
				types.SendNotFound(c, "Event not found")
			case errors.Is(err, events.ErrAlreadyRegistered):
				types.SendConflict(c, "Already registered")
			case errors.Is(err, events.ErrEventNotEditable):
				types.SendConflict(c, "Event is no longer open for registration")
			default:
				types.SendBadRequest(c, err.Error())
			}
			return
		}
		types.SendCreated(c, registration)
	}
}

// Unregister handles attendee withdrawal
func Unregister(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		userID, _ := auth.CurrentUserID(c)

		if err := deps.EventService.Unregister(c.Request.Context(), id, userID); err != nil {
			if errors.Is(err, events.ErrNotRegistered) || errors.Is(err, events.ErrRegistrationNotFound) {
				types.SendNotFound(c, "Registration not found")
				return
			}
			types.SendInternalError(c, "Failed to unregister")
			return
		}
		types.SendSuccess(c, gin.H{"status": types.StatusOK})
	}
}

// ListAttendees handles listing event registrations, host only
func ListAttendees(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		event, err := deps.EventService.GetEvent(c.Request.Context(), id)
		if err != nil {
			types.SendNotFound(c, "Event not found")
			return
		}

		userID, _ := auth.CurrentUserID(c)
		role, _ := auth.CurrentRole(c)
		if userID != event.HostID && role != models.RoleAdmin {
			types.SendForbidden(c, "Only the host may list attendees")
			return
		}

		attendees, err := deps.EventService.ListAttendees(c.Request.Context(), id)
		if err != nil {
			types.SendInternalError(c, "Failed to list attendees")
			return
		}
		types.SendSuccess(c, types.ListResponse{Items: attendees, Count: len(attendees), Total: int64(len(attendees))})
	}
}
