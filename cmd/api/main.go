package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chefforces-tocode/backend/internal/data"
	"github.com/chefforces-tocode/backend/internal/handler"
	"github.com/chefforces-tocode/backend/internal/infrastructure"
	"github.com/chefforces-tocode/backend/internal/judge"
	"github.com/chefforces-tocode/backend/internal/middleware"
	"github.com/chefforces-tocode/backend/internal/repository"
	"github.com/chefforces-tocode/backend/internal/service"
)

func main() {
	// Load configuration
	config := infrastructure.LoadConfig()

	// Initialize logger
	logger, err := infrastructure.NewLogger(config.Server.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.SyncLogger(logger)

	logger.Info("Starting ChefForces toCode API",
		zap.String("environment", config.Server.Environment),
		zap.Int("port", config.Server.Port),
	)

	// Initialize context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize telemetry
	telemetry, err := infrastructure.NewTelemetry(ctx, &config.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		telemetry.Shutdown(shutdownCtx)
	}()

	// Create metrics
	metrics, err := telemetry.CreateMetrics()
	if err != nil {
		logger.Error("Failed to create metrics", zap.Error(err))
		os.Exit(1)
	}

	// Initialize database
	database, err := infrastructure.NewDatabase(&config.Database, logger)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		os.Exit(1)
	}

	// Seed starter problems
	seeder := data.NewSeeder(database.DB, logger)
	if err := seeder.SeedProblems(); err != nil {
		logger.Error("Failed to seed problems", zap.Error(err))
		os.Exit(1)
	}

	// Initialize Redis for leaderboard caching. The API stays up without
	// it; leaderboards fall back to the database.
	cache, err := infrastructure.NewRedisClient(&config.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, leaderboard caching disabled", zap.Error(err))
		cache = nil
	}
	defer func() {
		if cache != nil {
			cache.Close()
		}
	}()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	problemRepo := repository.NewProblemRepository(database.DB)
	contestRepo := repository.NewContestRepository(database.DB)
	submissionRepo := repository.NewSubmissionRepository(database.DB)
	attemptRepo := repository.NewAttemptRepository(database.DB)

	// Initialize the judge client
	judgeClient := judge.NewClient(judge.Config{
		BaseURL:        config.Judge.BaseURL,
		APIKey:         config.Judge.APIKey,
		APIHost:        config.Judge.APIHost,
		CPUTimeLimit:   config.Judge.CPUTimeLimit,
		RequestTimeout: config.Judge.RequestTimeout,
	}, telemetry.Tracer, logger)

	// Initialize services
	userService := service.NewUserService(userRepo, attemptRepo, problemRepo, &config.JWT, telemetry.Tracer, logger)
	problemService := service.NewProblemService(problemRepo, telemetry.Tracer, logger)
	contestService := service.NewContestService(
		contestRepo, problemRepo, submissionRepo, attemptRepo, userRepo,
		judgeClient, cache, config.Redis.TTL, metrics, telemetry.Tracer, logger,
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	problemHandler := handler.NewProblemHandler(problemService)
	contestHandler := handler.NewContestHandler(contestService)
	judgeHandler := handler.NewJudgeHandler(judgeClient)

	// Setup Gin router
	if config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add global middleware
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig()))
	router.Use(middleware.TracingMiddleware(telemetry.Tracer))
	router.Use(middleware.MetricsMiddleware(metrics))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": config.Telemetry.ServiceVersion,
		})
	})

	// Metrics endpoint for Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		// Public read-only routes
		api.GET("/problems", problemHandler.GetProblems)
		api.GET("/problems/:id", problemHandler.GetProblem)
		api.GET("/contests", contestHandler.GetContests)
		api.GET("/contests/:id", contestHandler.GetContest)
		api.GET("/leaderboard/:contestId", contestHandler.Leaderboard)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(userService))
		{
			protected.POST("/problems", problemHandler.CreateProblem)
			protected.POST("/submit", judgeHandler.Submit)

			// Contest routes
			contests := protected.Group("/contests")
			{
				contests.POST("", contestHandler.CreateContest)
				contests.POST("/register", contestHandler.Register)
				contests.POST("/submit", contestHandler.Submit)
			}

			// User routes
			users := protected.Group("/users")
			{
				users.GET("", userHandler.GetUsers)
				users.GET("/me", userHandler.GetCurrentUser)
				users.GET("/:userId", userHandler.GetProfile)
				users.PUT("/:userId", userHandler.RecordAttempt)
			}
		}
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server starting",
			zap.String("address", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
