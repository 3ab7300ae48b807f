package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/thereadylab/readylab-api/api"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/database"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/auth"
	"github.com/thereadylab/readylab-api/internal/services/captions"
	"github.com/thereadylab/readylab-api/internal/services/communities"
	"github.com/thereadylab/readylab-api/internal/services/courses"
	"github.com/thereadylab/readylab-api/internal/services/email"
	"github.com/thereadylab/readylab-api/internal/services/enrollments"
	"github.com/thereadylab/readylab-api/internal/services/events"
	"github.com/thereadylab/readylab-api/internal/services/institutions"
	"github.com/thereadylab/readylab-api/internal/services/jobs"
	"github.com/thereadylab/readylab-api/internal/services/lessons"
	"github.com/thereadylab/readylab-api/internal/services/posts"
	"github.com/thereadylab/readylab-api/internal/services/quizzes"
	"github.com/thereadylab/readylab-api/internal/services/storage"
	"github.com/thereadylab/readylab-api/internal/services/subscriptions"
	"github.com/thereadylab/readylab-api/internal/services/tracks"
	"github.com/thereadylab/readylab-api/internal/services/translate"
	"github.com/thereadylab/readylab-api/internal/services/users"
	"github.com/thereadylab/readylab-api/internal/services/videostream"
	"github.com/thereadylab/readylab-api/internal/services/workers"
	"github.com/thereadylab/readylab-api/pkg/config"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start The Ready Lab API server with the configured settings.

The server listens for HTTP requests, receives provider webhooks, and,
unless processing.embedded_workers is disabled, runs the background
worker pool in-process.

Example:
  readylab-api serve
  readylab-api serve --port 9090
  readylab-api serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Use config values if flags not provided
	if serverHost == "" {
		serverHost = cfg.Server.Host
	}
	if serverPort == 0 {
		serverPort = cfg.Server.Port
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("[WARN] Failed to close database: %v", err)
		}
	}()

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	deps := buildDependencies(cfg, db)

	// Run the worker pool in-process unless a dedicated worker deployment
	// handles jobs.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if cfg.Processing.EmbeddedWorkers {
		pool := buildWorkerPool(cfg, deps)
		deps.WorkerPool = pool
		if err := pool.Start(workerCtx); err != nil {
			return fmt.Errorf("failed to start worker pool: %w", err)
		}
		defer pool.Stop()
	}

	server := api.NewServer(fmt.Sprintf("%s:%d", serverHost, serverPort))
	server.SetDatabase(db)
	server.SetDependencies(deps)
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	log.Printf("[INFO] Starting The Ready Lab API server on %s:%d", serverHost, serverPort)

	// Channel to listen for interrupt signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-stop:
		log.Println("[INFO] Shutting down server...")
	case err := <-serverErr:
		log.Printf("[ERROR] %v", err)
		log.Println("[INFO] Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[ERROR] Server forced to shutdown: %v", err)
		return err
	}

	log.Println("[INFO] Server gracefully stopped")
	return nil
}

// buildDependencies wires every service the handlers need
func buildDependencies(cfg *config.Config, db *database.DB) *types.Dependencies {
	authService := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	jobService := jobs.NewService(jobs.NewRepository(db.DB))

	userRepo := users.NewRepository(db.DB)
	userService := users.NewService(userRepo)

	courseService := courses.NewService(courses.NewRepository(db.DB))
	lessonRepo := lessons.NewRepository(db.DB)
	lessonService := lessons.NewService(lessonRepo)
	trackService := tracks.NewService(tracks.NewRepository(db.DB))

	enrollmentService := enrollments.NewService(enrollments.NewRepository(db.DB), lessonService, lessonRepo, jobService)
	quizService := quizzes.NewService(quizzes.NewRepository(db.DB), lessonService, enrollmentService)

	communityService := communities.NewService(communities.NewRepository(db.DB))
	postService := posts.NewService(posts.NewRepository(db.DB), communityService)

	institutionService := institutions.NewService(institutions.NewRepository(db.DB), userRepo, jobService)
	subscriptionService := subscriptions.NewService(subscriptions.NewRepository(db.DB))

	videoClient := videostream.NewClient(videostream.Config{
		BaseURL:       cfg.Video.BaseURL,
		StreamBaseURL: cfg.Video.StreamBaseURL,
		APIToken:      cfg.Video.APIToken,
		Timeout:       cfg.Video.Timeout,
	})
	eventService := events.NewService(events.NewRepository(db.DB), videostream.NewProvisioner(videoClient), jobService)

	captionService := captions.NewService(captions.NewRepository(db.DB), jobService)

	return &types.Dependencies{
		DB:                  db,
		AuthService:         authService,
		UserService:         userService,
		CourseService:       courseService,
		LessonService:       lessonService,
		TrackService:        trackService,
		EnrollmentService:   enrollmentService,
		QuizService:         quizService,
		CommunityService:    communityService,
		PostService:         postService,
		InstitutionService:  institutionService,
		SubscriptionService: subscriptionService,
		EventService:        eventService,
		CaptionService:      captionService,
		JobService:          jobService,

		VideoWebhookSecret:   cfg.Video.WebhookSecret,
		PaymentWebhookSecret: cfg.Payments.WebhookSecret,
		CaptionLanguages:     cfg.Captions.TargetLanguages,
	}
}

// buildWorkerPool assembles the background workers with their processors
func buildWorkerPool(cfg *config.Config, deps *types.Dependencies) *workers.WorkerPool {
	pool := workers.NewWorkerPool(deps.JobService, cfg.Processing.Workers, cfg.Processing.PollInterval)

	videoClient := videostream.NewClient(videostream.Config{
		BaseURL:       cfg.Video.BaseURL,
		StreamBaseURL: cfg.Video.StreamBaseURL,
		APIToken:      cfg.Video.APIToken,
		Timeout:       cfg.Video.Timeout,
	})
	translateClient := translate.NewClient(translate.Config{
		BaseURL: cfg.Translate.BaseURL,
		APIKey:  cfg.Translate.APIKey,
		Timeout: cfg.Translate.Timeout,
	})
	store := storage.NewClient(storage.Config{
		BaseURL:    cfg.Storage.BaseURL,
		ServiceKey: cfg.Storage.ServiceKey,
	})

	pool.RegisterProcessor(workers.NewCaptionProcessor(
		deps.JobService,
		deps.CaptionService,
		videoClient,
		translateClient,
		store,
		workers.CaptionProcessorConfig{
			SourceLanguage:    cfg.Captions.SourceLanguage,
			Bucket:            cfg.Captions.Bucket,
			TrackPollInterval: cfg.Video.TrackPollInterval,
			TrackPollAttempts: cfg.Video.TrackPollAttempts,
		},
	))

	sender := email.NewClient(email.Config{
		BaseURL: cfg.Email.BaseURL,
		APIKey:  cfg.Email.APIKey,
		From:    cfg.Email.From,
		Timeout: cfg.Email.Timeout,
	})
	pool.RegisterProcessor(workers.NewNotificationProcessor(
		deps.JobService,
		sender,
		deps.UserService,
		deps.CourseService,
		deps.EventService,
		deps.InstitutionService,
	))

	return pool
}
