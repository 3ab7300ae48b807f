package types

import (
	"github.com/thereadylab/readylab-api/internal/database"
	"github.com/thereadylab/readylab-api/internal/services/auth"
	"github.com/thereadylab/readylab-api/internal/services/captions"
	"github.com/thereadylab/readylab-api/internal/services/communities"
	"github.com/thereadylab/readylab-api/internal/services/courses"
	"github.com/thereadylab/readylab-api/internal/services/enrollments"
	"github.com/thereadylab/readylab-api/internal/services/events"
	"github.com/thereadylab/readylab-api/internal/services/institutions"
	"github.com/thereadylab/readylab-api/internal/services/jobs"
	"github.com/thereadylab/readylab-api/internal/services/lessons"
	"github.com/thereadylab/readylab-api/internal/services/posts"
	"github.com/thereadylab/readylab-api/internal/services/quizzes"
	"github.com/thereadylab/readylab-api/internal/services/subscriptions"
	"github.com/thereadylab/readylab-api/internal/services/tracks"
	"github.com/thereadylab/readylab-api/internal/services/users"
	"github.com/thereadylab/readylab-api/internal/services/workers"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB *database.DB

	AuthService         *auth.Service
	UserService         users.UserService
	CourseService       courses.CourseService
	LessonService       lessons.LessonService
	TrackService        tracks.TrackService
	EnrollmentService   enrollments.EnrollmentService
	QuizService         quizzes.QuizService
	CommunityService    communities.CommunityService
	PostService         posts.PostService
	InstitutionService  institutions.InstitutionService
	SubscriptionService subscriptions.SubscriptionService
	EventService        events.EventService
	CaptionService      captions.CaptionService
	JobService          jobs.Service
	WorkerPool          *workers.WorkerPool

	// Webhook verification secrets and caption fan-out languages, lifted from
	// config at wiring time so handlers stay config-free.
	VideoWebhookSecret   string
	PaymentWebhookSecret string
	CaptionLanguages     []string
}
