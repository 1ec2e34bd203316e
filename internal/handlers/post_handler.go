package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/insyd/backend/internal/models"
	"github.com/anonto42/insyd/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	notifier       Notifier
	logger         *slog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, notifier Notifier, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.POST("/discover", h.DiscoverPost)
}

// CreatePost publishes a post, then notifies the author's followers
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post := &models.Post{
		UserID:  req.UserID,
		Content: req.Content,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	err := h.notifier.Publish(fanOutContext(c), post.UserID, post.ID.Hex(), post.Content)
	reportFanOut(h.logger, models.VerbPublished, err)

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": post})
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": post})
}

// DiscoverPost records that a viewer came across a post. Nothing is stored
// besides the notification to the post's author.
func (h *PostHandler) DiscoverPost(c echo.Context) error {
	var req models.DiscoverRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.notifier.Discover(fanOutContext(c), req.ViewerID, req.PostID)
	reportFanOut(h.logger, models.VerbDiscovered, err)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"ok": true}})
}
