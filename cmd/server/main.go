package main

import (
	"context"
	"log"
	"os"

	"github.com/anonto42/insyd/backend/internal/middleware"
	"github.com/anonto42/insyd/backend/internal/repositories"
	"github.com/anonto42/insyd/backend/internal/router"
	"github.com/anonto42/insyd/backend/pkg/config"
	"github.com/anonto42/insyd/backend/pkg/logger"
	"github.com/anonto42/insyd/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg := config.Load()
	slogger := logger.New(os.Stdout, cfg.LogLevel)

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	if err := repositories.Migrate(db.SQL); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("Auto-migrations completed for all models.")

	if cfg.SeedUsers {
		userRepo := repositories.NewPostgresUserRepository(db.SQL)
		if err := repositories.SeedUsers(context.Background(), userRepo, "Alice", "Bob", "Cara"); err != nil {
			log.Fatalf("Failed to seed users: %v", err)
		}
	}

	var notificationLog repositories.NotificationLog
	if cfg.NotificationStore == "memory" {
		notificationLog = repositories.NewMemoryNotificationLog()
		log.Println("Using in-memory notification log; notifications are lost on restart.")
	}

	var pollCounter middleware.Counter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		pollCounter = middleware.NewRedisCounter(redisClient)
		log.Printf("Poll rate limit: %d requests/minute per client", cfg.PollRateLimit)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	// Debug mode returns internal error details to clients
	e.Debug = cfg.IsDevelopment()

	// Setup global middleware
	config.SetupMiddleware(e, slogger)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	router.SetupRoutes(e, router.Dependencies{
		SQL:             db.SQL,
		Posts:           repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase)),
		NotificationLog: notificationLog,
		PageSize:        cfg.NotificationPageSize,
		PollCounter:     pollCounter,
		PollRateLimit:   cfg.PollRateLimit,
		Logger:          slogger,
	})

	// Metrics
	go func() {
		m := echo.New()
		m.HideBanner = true
		m.HidePort = true
		m.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
		if err := m.Start(":" + cfg.MetricsPort); err != nil {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
