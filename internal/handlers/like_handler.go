package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/insyd/backend/internal/models"
	"github.com/anonto42/insyd/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	postRepository repositories.PostRepository // To update like counts in posts
	notifier       Notifier
	logger         *slog.Logger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, postRepo repositories.PostRepository, notifier Notifier, logger *slog.Logger) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		postRepository: postRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/likes", h.LikePost)
}

// LikePost records a like and notifies the post's author. Likes on posts
// that cannot be resolved are kept; they just notify nobody.
func (h *LikeHandler) LikePost(c echo.Context) error {
	var req models.CreateLikeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	like := &models.Like{
		PostID: req.PostID,
		UserID: req.UserID,
	}
	if err := h.likeRepository.CreateLike(ctx, like); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Post already liked by this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.postRepository.IncrementLikesCount(ctx, req.PostID); err != nil {
		h.logger.Warn("failed to increment likes count", "post_id", req.PostID, "error", err)
	}

	err := h.notifier.Like(fanOutContext(c), req.UserID, req.PostID)
	reportFanOut(h.logger, models.VerbLiked, err)

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": like})
}
