package router

import (
	"log"
	"log/slog"
	"time"

	"github.com/anonto42/insyd/backend/internal/delivery"
	"github.com/anonto42/insyd/backend/internal/fanout"
	"github.com/anonto42/insyd/backend/internal/handlers"
	"github.com/anonto42/insyd/backend/internal/middleware"
	"github.com/anonto42/insyd/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Dependencies are the stores and settings the routes are built from
type Dependencies struct {
	SQL             *gorm.DB
	Posts           repositories.PostRepository
	NotificationLog repositories.NotificationLog
	PageSize        int
	PollCounter     middleware.Counter // nil disables poll rate limiting
	PollRateLimit   int
	Logger          *slog.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{"ok": true, "service": "insyd-backend"})
	})

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.SQL)
	followRepo := repositories.NewPostgresFollowRepository(deps.SQL)
	likeRepo := repositories.NewPostgresLikeRepository(deps.SQL)
	commentRepo := repositories.NewPostgresCommentRepository(deps.SQL)
	notificationLog := deps.NotificationLog
	if notificationLog == nil {
		notificationLog = repositories.NewPostgresNotificationLog(deps.SQL)
	}

	// --- Core ---
	engine := fanout.NewEngine(followRepo, deps.Posts, userRepo, notificationLog, deps.Logger)
	feed := delivery.NewService(notificationLog, deps.PageSize)

	api := e.Group("/api/v1")

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	followHandler := handlers.NewFollowHandler(followRepo)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	postHandler := handlers.NewPostHandler(deps.Posts, engine, deps.Logger)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	likeHandler := handlers.NewLikeHandler(likeRepo, deps.Posts, engine, deps.Logger)
	likeHandler.RegisterLikeRoutes(api)
	log.Println("Like routes configured.")

	commentHandler := handlers.NewCommentHandler(commentRepo, deps.Posts, engine, deps.Logger)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	notificationHandler := handlers.NewNotificationHandler(feed, userRepo)
	notificationHandler.RegisterNotificationRoutes(api,
		middleware.RateLimit(deps.PollCounter, deps.PollRateLimit, time.Minute, deps.Logger))
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
