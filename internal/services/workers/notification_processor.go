package workers

import (
	"context"
	"fmt"
	"log"

	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/courses"
	"github.com/thereadylab/readylab-api/internal/services/email"
	"github.com/thereadylab/readylab-api/internal/services/events"
	"github.com/thereadylab/readylab-api/internal/services/institutions"
	"github.com/thereadylab/readylab-api/internal/services/jobs"
	"github.com/thereadylab/readylab-api/internal/services/users"
)

// NotificationProcessor sends the transactional emails queued by the domain
// services: course completions, event reminders and institution invites.
type NotificationProcessor struct {
	jobService         jobs.Service
	sender             email.Sender
	userService        users.UserService
	courseService      courses.CourseService
	eventService       events.EventService
	institutionService institutions.InstitutionService
}

// NewNotificationProcessor creates a new notification processor.
func NewNotificationProcessor(
	jobService jobs.Service,
	sender email.Sender,
	userService users.UserService,
	courseService courses.CourseService,
	eventService events.EventService,
	institutionService institutions.InstitutionService,
) *NotificationProcessor {
	return &NotificationProcessor{
		jobService:         jobService,
		sender:             sender,
		userService:        userService,
		courseService:      courseService,
		eventService:       eventService,
		institutionService: institutionService,
	}
}

// CanProcess returns true if this processor can handle the job type
func (p *NotificationProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeNotificationEmail
}

// ProcessJob sends the email described by the job payload.
func (p *NotificationProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	if !p.CanProcess(job.Type) {
		return fmt.Errorf("unsupported job type: %s", job.Type)
	}

	template, ok := job.GetPayloadString("template")
	if !ok {
		return models.NewSystemError("INVALID_PAYLOAD", "job payload missing template", "", nil)
	}

	var err error
	switch template {
	case "course_completed":
		err = p.sendCourseCompleted(ctx, job)
	case "event_reminder":
		err = p.sendEventReminder(ctx, job)
	case "institution_invite":
		err = p.sendInstitutionInvite(ctx, job)
	default:
		return models.NewSystemError("UNKNOWN_TEMPLATE",
			fmt.Sprintf("no handler for template %q", template), "", nil)
	}
	if err != nil {
		return err
	}

	return p.jobService.CompleteJob(ctx, job.ID, models.JobResult{"template": template})
}

func (p *NotificationProcessor) sendCourseCompleted(ctx context.Context, job *models.Job) error {
	userID, ok := job.GetPayloadInt("user_id")
	if !ok {
		return models.NewSystemError("INVALID_PAYLOAD", "job payload missing user_id", "", nil)
	}
	courseID, ok := job.GetPayloadInt("course_id")
	if !ok {
		return models.NewSystemError("INVALID_PAYLOAD", "job payload missing course_id", "", nil)
	}

	user, err := p.userService.GetByID(ctx, uint(userID))
	if err != nil {
		return models.NewNotFoundError("USER_NOT_FOUND", fmt.Sprintf("user %d not found", userID), "", err)
	}
	course, err := p.courseService.GetByID(ctx, uint(courseID))
	if err != nil {
		return models.NewNotFoundError("COURSE_NOT_FOUND", fmt.Sprintf("course %d not found", courseID), "", err)
	}

	subject := fmt.Sprintf("You finished %s!", course.Title)
	body := fmt.Sprintf("<p>Hi %s,</p><p>Congratulations on completing <strong>%s</strong>. Your progress is saved and the course stays available for review any time.</p>",
		user.FullName, course.Title)
	return p.send(ctx, user.Email, subject, body)
}

func (p *NotificationProcessor) sendEventReminder(ctx context.Context, job *models.Job) error {
	eventID, ok := job.GetPayloadInt("event_id")
	if !ok {
		return models.NewSystemError("INVALID_PAYLOAD", "job payload missing event_id", "", nil)
	}

	event, err := p.eventService.GetEvent(ctx, uint(eventID))
	if err != nil {
		return models.NewNotFoundError("EVENT_NOT_FOUND", fmt.Sprintf("event %d not found", eventID), "", err)
	}
	if event.Status == models.EventCanceled {
		log.Printf("[DEBUG] Event %d canceled, skipping reminders", event.ID)
		return nil
	}

	attendees, err := p.eventService.ListAttendees(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("listing attendees for event %d: %w", event.ID, err)
	}

	subject := fmt.Sprintf("Starting soon: %s", event.Title)
	body := fmt.Sprintf("<p><strong>%s</strong> starts at %s. See you there!</p>",
		event.Title, event.ScheduledAt.Format("Jan 2, 2006 15:04 MST"))

	for _, registration := range attendees {
		user, err := p.userService.GetByID(ctx, registration.UserID)
		if err != nil {
			log.Printf("[WARN] Skipping reminder for missing user %d: %v", registration.UserID, err)
			continue
		}
		if err := p.send(ctx, user.Email, subject, body); err != nil {
			return err
		}
	}
	return nil
}

func (p *NotificationProcessor) sendInstitutionInvite(ctx context.Context, job *models.Job) error {
	to, ok := job.GetPayloadString("email")
	if !ok {
		return models.NewSystemError("INVALID_PAYLOAD", "job payload missing email", "", nil)
	}
	institutionID, ok := job.GetPayloadInt("institution_id")
	if !ok {
		return models.NewSystemError("INVALID_PAYLOAD", "job payload missing institution_id", "", nil)
	}

	institution, err := p.institutionService.GetInstitution(ctx, uint(institutionID))
	if err != nil {
		return models.NewNotFoundError("INSTITUTION_NOT_FOUND",
			fmt.Sprintf("institution %d not found", institutionID), "", err)
	}

	subject := fmt.Sprintf("%s invited you to The Ready Lab", institution.Name)
	body := fmt.Sprintf("<p><strong>%s</strong> invited you to join them on The Ready Lab. Create an account with this email address and you will be added automatically.</p>",
		institution.Name)
	return p.send(ctx, to, subject, body)
}

func (p *NotificationProcessor) send(ctx context.Context, to, subject, body string) error {
	if err := p.sender.Send(ctx, to, subject, body); err != nil {
		return models.NewSystemError("EMAIL_SEND_FAILED",
			fmt.Sprintf("sending %q to %s", subject, to), err.Error(), err)
	}
	return nil
}
