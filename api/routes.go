package api

import (
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/thereadylab/readylab-api/api/admin"
	authapi "github.com/thereadylab/readylab-api/api/auth"
	"github.com/thereadylab/readylab-api/api/communities"
	"github.com/thereadylab/readylab-api/api/courses"
	"github.com/thereadylab/readylab-api/api/enrollments"
	"github.com/thereadylab/readylab-api/api/events"
	"github.com/thereadylab/readylab-api/api/health"
	"github.com/thereadylab/readylab-api/api/institutions"
	"github.com/thereadylab/readylab-api/api/lessons"
	"github.com/thereadylab/readylab-api/api/posts"
	"github.com/thereadylab/readylab-api/api/profiles"
	"github.com/thereadylab/readylab-api/api/quizzes"
	"github.com/thereadylab/readylab-api/api/subscriptions"
	"github.com/thereadylab/readylab-api/api/tracks"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/api/version"
	"github.com/thereadylab/readylab-api/api/webhooks"
	_ "github.com/thereadylab/readylab-api/docs/swagger"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	// Public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Swagger documentation
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(301, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	engine.NoRoute(NotFoundHandler())

	// Provider webhooks are signature-authenticated and rate limited
	// generously: providers retry aggressively on 429s.
	webhookGroup := engine.Group("/webhooks")
	webhookGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 20, 40))
	webhooks.RegisterRoutes(webhookGroup, deps)

	v1 := engine.Group("/api/v1")

	// Auth endpoints get a tight limit to slow down credential stuffing
	// (2 req/s, burst of 5).
	authGroup := v1.Group("/auth")
	authGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 2, 5))
	authapi.RegisterRoutes(authGroup, deps)

	// General content routes (10 req/s, burst of 20)
	general := PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20)

	profileGroup := v1.Group("/profiles")
	profileGroup.Use(general)
	profiles.RegisterRoutes(profileGroup, deps)

	courseGroup := v1.Group("/courses")
	courseGroup.Use(general)
	courses.RegisterRoutes(courseGroup, deps)

	lessonGroup := v1.Group("/lessons")
	lessonGroup.Use(general)
	lessons.RegisterRoutes(lessonGroup, deps)
	quizzes.RegisterLessonRoutes(lessonGroup, deps)

	trackGroup := v1.Group("/tracks")
	trackGroup.Use(general)
	tracks.RegisterRoutes(trackGroup, deps)

	enrollmentGroup := v1.Group("/enrollments")
	enrollmentGroup.Use(general)
	enrollments.RegisterRoutes(enrollmentGroup, deps)

	quizGroup := v1.Group("/quizzes")
	quizGroup.Use(general)
	attemptGroup := v1.Group("/attempts")
	attemptGroup.Use(general)
	quizzes.RegisterRoutes(quizGroup, attemptGroup, deps)

	communityGroup := v1.Group("/communities")
	communityGroup.Use(general)
	communities.RegisterRoutes(communityGroup, deps)
	posts.RegisterCommunityRoutes(communityGroup, deps)

	postGroup := v1.Group("/posts")
	postGroup.Use(general)
	posts.RegisterRoutes(postGroup, deps)

	institutionGroup := v1.Group("/institutions")
	institutionGroup.Use(general)
	institutions.RegisterRoutes(institutionGroup, deps)

	planGroup := v1.Group("/plans")
	planGroup.Use(general)
	subscriptionGroup := v1.Group("/subscriptions")
	subscriptionGroup.Use(general)
	subscriptions.RegisterRoutes(planGroup, subscriptionGroup, deps)

	eventGroup := v1.Group("/events")
	eventGroup.Use(general)
	events.RegisterRoutes(eventGroup, deps)

	// Admin routes (5 req/s, burst of 10)
	adminGroup := v1.Group("/admin")
	adminGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 5, 10))
	admin.RegisterRoutes(adminGroup, deps)

	// Convenience alias for the authenticated profile
	v1.GET("/me", general, authapi.Middleware(deps.AuthService), authapi.Me(deps))

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(404, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
