package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"hyperkids/gym-app/internal/api"
	"hyperkids/gym-app/internal/config"
	"hyperkids/gym-app/internal/metrics"
	"hyperkids/gym-app/internal/realtime"
	"hyperkids/gym-app/internal/repository/mongo"
	"hyperkids/gym-app/internal/scheduler"
	"hyperkids/gym-app/internal/service"
	"hyperkids/gym-app/internal/storage"
)

func main() {
	log.Println("Starting HyperKids Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("FATAL: Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureGroupIndexes(ctx, appDB.Collection("groups"))
		mongo.EnsureProgramIndexes(ctx, appDB.Collection("program_templates"))
		mongo.EnsureAssignmentIndexes(ctx, appDB.Collection("program_assignments"))
		mongo.EnsureCompletionIndexes(ctx, appDB.Collection("workout_completions"))
		mongo.EnsureSubscriptionIndexes(ctx, appDB.Collection("subscriptions"))
		mongo.EnsureTestResultIndexes(ctx, appDB.Collection("test_results"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	groupRepo := mongo.NewMongoGroupRepository(appDB)
	programRepo := mongo.NewMongoProgramRepository(appDB)
	assignmentRepo := mongo.NewMongoAssignmentRepository(appDB)
	completionRepo := mongo.NewMongoCompletionRepository(appDB)
	subscriptionRepo := mongo.NewMongoSubscriptionRepository(appDB)
	testResultRepo := mongo.NewMongoTestResultRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	services := api.Services{
		Auth:         service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		Program:      service.NewProgramService(programRepo, assignmentRepo, fileStorage),
		Schedule:     service.NewScheduleService(userRepo, groupRepo, programRepo, assignmentRepo, completionRepo, loc),
		Completion:   service.NewCompletionService(assignmentRepo, completionRepo, loc),
		Coach:        service.NewCoachService(userRepo, groupRepo),
		Subscription: service.NewSubscriptionService(subscriptionRepo, userRepo),
		Testing:      service.NewTestingService(userRepo, testResultRepo),
	}

	// --- Realtime change streams ---
	watcher := realtime.NewWatcher(appDB)
	eventsHandler := api.NewEventsHandler(watcher)

	// --- Daily assignment sweep ---
	sweeper := scheduler.NewSweeper(assignmentRepo, loc, cfg.Scheduler.SweepSchedule)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("FATAL: Could not start assignment sweeper: %v", err)
	}
	defer sweeper.Stop()

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware
	router.Use(metrics.Middleware())

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, services, userRepo, eventsHandler)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
