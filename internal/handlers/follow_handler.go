package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/insyd/backend/internal/models"
	"github.com/anonto42/insyd/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository) *FollowHandler {
	return &FollowHandler{followRepository: followRepo}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follows", h.FollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
}

// FollowUser records that follower_id follows followed_id. Following twice is a conflict.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	var req models.CreateFollowRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	follow := &models.Follow{
		FollowerID:  req.FollowerID,
		FollowingID: req.FollowedID,
	}
	if err := h.followRepository.CreateFollow(c.Request().Context(), follow); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Already following this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// GetFollowers lists the ids of a user's followers
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	followers, err := h.followRepository.FollowersOf(c.Request().Context(), uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if followers == nil {
		followers = []uint{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"followers": followers, "count": len(followers)},
	})
}
