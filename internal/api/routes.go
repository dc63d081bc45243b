package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hyperkids/gym-app/internal/domain"
	"hyperkids/gym-app/internal/repository"
	"hyperkids/gym-app/internal/service"
)

// Services bundles everything SetupRoutes wires into handlers.
type Services struct {
	Auth         service.AuthService
	Program      service.ProgramService
	Schedule     service.ScheduleService
	Completion   service.CompletionService
	Coach        service.CoachService
	Subscription service.SubscriptionService
	Testing      service.TestingService
}

func SetupRoutes(
	router *gin.Engine,
	services Services,
	userRepo repository.UserRepository,
	eventsHandler *EventsHandler,
) {
	authHandler := NewAuthHandler(services.Auth)
	programHandler := NewProgramHandler(services.Program)
	scheduleHandler := NewScheduleHandler(services.Schedule, userRepo)
	athleteHandler := NewAthleteHandler(services.Schedule, services.Completion, userRepo)
	coachHandler := NewCoachHandler(services.Coach, services.Testing, userRepo)
	adminHandler := NewAdminHandler(services.Subscription, services.Completion)

	authMiddleware := AuthMiddleware(services.Auth.GetJWTSecret())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})
		protected.GET("/me/subscriptions", adminHandler.GetMySubscriptions)

		// Any authenticated party with standing (coach, athlete, group
		// member, admin) may read a schedule; the service decides.
		protected.GET("/assignments/:assignmentId/schedule", scheduleHandler.GetSchedule)

		// Change streams for client cache invalidation.
		if eventsHandler != nil {
			protected.GET("/events/:collection", eventsHandler.Stream)
		}

		// --- Coach Routes ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			// Roster
			coachGroup.POST("/athletes", coachHandler.AddAthleteByEmail)
			coachGroup.GET("/athletes", coachHandler.GetManagedAthletes)

			// Groups
			coachGroup.POST("/groups", coachHandler.CreateGroup)
			coachGroup.GET("/groups", coachHandler.GetGroups)
			coachGroup.POST("/groups/:groupId/athletes", coachHandler.AddAthleteToGroup)
			coachGroup.DELETE("/groups/:groupId/athletes/:athleteId", coachHandler.RemoveAthleteFromGroup)
			coachGroup.DELETE("/groups/:groupId", coachHandler.DeleteGroup)

			// Program templates
			coachGroup.POST("/templates", programHandler.CreateTemplate)
			coachGroup.GET("/templates", programHandler.GetMyTemplates)
			coachGroup.GET("/templates/:templateId", programHandler.GetTemplate)
			coachGroup.PUT("/templates/:templateId", programHandler.UpdateTemplate)
			coachGroup.DELETE("/templates/:templateId", programHandler.DeleteTemplate)
			coachGroup.GET("/templates/:templateId/weeks", scheduleHandler.PreviewWeeks)
			coachGroup.GET("/templates/:templateId/exercises/:exerciseId/video", programHandler.GetExerciseVideoURL)

			// Assignments and schedules
			coachGroup.POST("/assignments", scheduleHandler.AssignProgram)
			coachGroup.GET("/assignments", scheduleHandler.GetCoachAssignments)
			coachGroup.PUT("/assignments/:assignmentId/dates", scheduleHandler.EditTrainingDates)
			coachGroup.PUT("/assignments/:assignmentId/status", scheduleHandler.UpdateAssignmentStatus)

			// Strength tests
			coachGroup.POST("/tests", coachHandler.RecordTestResult)
			coachGroup.GET("/athletes/:athleteId/tests", coachHandler.GetTestResults)
			coachGroup.GET("/athletes/:athleteId/load", coachHandler.GetLoadSuggestion)
		}

		// --- Athlete Routes ---
		athleteGroup := protected.Group("/athlete")
		athleteGroup.Use(RoleMiddleware(domain.RoleAthlete))
		{
			athleteGroup.GET("/assignments", athleteHandler.GetMyAssignments)
			athleteGroup.POST("/assignments/:assignmentId/completions", athleteHandler.RecordCompletion)
			athleteGroup.GET("/assignments/:assignmentId/completions", athleteHandler.GetCompletions)
		}

		// --- Admin Routes ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.POST("/subscriptions", adminHandler.CreateSubscription)
			adminGroup.GET("/subscriptions", adminHandler.ListSubscriptions)
			adminGroup.DELETE("/subscriptions/:subscriptionId", adminHandler.CancelSubscription)
			adminGroup.PUT("/completions/:completionId", adminHandler.OverrideCompletion)
		}
	}
}
