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

	"github.com/ml4teachers/helf/internal/api"
	"github.com/ml4teachers/helf/internal/assistant"
	"github.com/ml4teachers/helf/internal/config"
	"github.com/ml4teachers/helf/internal/logger"
	"github.com/ml4teachers/helf/internal/repository/mongo"
	"github.com/ml4teachers/helf/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	// --- Logger ---
	appLog, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("FATAL: Could not initialize logger: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("Starting training server", "address", cfg.Server.Address)

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		appLog.Fatal("Could not connect to MongoDB", "error", err)
	}
	defer func() {
		appLog.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			appLog.Error("Failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	appLog.Info("Database connection established", "database", cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("plans"))
		mongo.EnsurePlanWeekIndexes(ctx, appDB.Collection("plan_weeks"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("sessions"))
		mongo.EnsureExerciseEntryIndexes(ctx, appDB.Collection("exercise_entries"))
		mongo.EnsureSetIndexes(ctx, appDB.Collection("sets"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		appLog.Info("Index creation process completed")
	}()

	// --- Initialize Repositories ---
	planRepo := mongo.NewMongoPlanRepository(appDB)
	weekRepo := mongo.NewMongoPlanWeekRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	entryRepo := mongo.NewMongoExerciseEntryRepository(appDB)
	setRepo := mongo.NewMongoSetRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)

	// --- Initialize Services ---
	exerciseService := service.NewExerciseService(exerciseRepo, appLog)
	planService := service.NewPlanService(planRepo, weekRepo, sessionRepo, entryRepo, setRepo, exerciseService, appLog)
	sessionService := service.NewSessionService(sessionRepo, planRepo, entryRepo, setRepo, exerciseService, appLog)

	// --- Assistant Pipeline ---
	generator := assistant.NewHTTPGenerator(
		cfg.Assistant.BaseURL,
		cfg.Assistant.APIKey,
		cfg.Assistant.Model,
		cfg.Assistant.Timeout,
		appLog,
	)
	processor := assistant.NewProcessor(exerciseService, appLog)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, generator, processor, planService, sessionService, exerciseService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("ListenAndServe error", "error", err)
		}
	}()
	appLog.Info("Server started", "address", cfg.Server.Address)

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		appLog.Fatal("Server forced to shutdown", "error", err)
	}

	appLog.Info("Server exiting.")
}
