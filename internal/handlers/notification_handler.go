package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/insyd/backend/internal/delivery"
	"github.com/anonto42/insyd/backend/internal/models"
	"github.com/anonto42/insyd/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler serves the polling notification feed
type NotificationHandler struct {
	delivery       *delivery.Service
	userRepository repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(svc *delivery.Service, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{delivery: svc, userRepository: userRepo}
}

// EnrichedNotification is a notification with its actor as currently stored.
// Message keeps the name the actor had when the notification was written.
type EnrichedNotification struct {
	models.Notification
	Actor *models.UserCompact `json:"actor,omitempty"`
}

func (h *NotificationHandler) enrichNotifications(ctx context.Context, notifications []models.Notification) []EnrichedNotification {
	enriched := make([]EnrichedNotification, len(notifications))
	userCache := make(map[uint]*models.UserCompact)

	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}
		if actor, ok := userCache[n.ActorID]; ok {
			enriched[i].Actor = actor
			continue
		}
		var actor *models.UserCompact
		if user, err := h.userRepository.GetUserByID(ctx, n.ActorID); err == nil {
			compact := user.ToCompact()
			actor = &compact
		}
		userCache[n.ActorID] = actor
		enriched[i].Actor = actor
	}
	return enriched
}

// RegisterNotificationRoutes registers notification routes. poll wraps the
// endpoints clients hit on a timer.
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, poll ...echo.MiddlewareFunc) {
	g.GET("/notifications", h.GetNotifications, poll...)
	g.GET("/notifications/unread-count", h.GetUnreadCount, poll...)
	g.POST("/notifications/read", h.MarkAsRead)
}

// GetNotifications returns the bootstrap page when since_id is absent or 0,
// and every newer notification otherwise.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	var req models.FetchNotificationsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	page, err := h.delivery.Fetch(ctx, req.UserID, req.SinceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": h.enrichNotifications(ctx, page.Notifications),
			"cursor":        page.Cursor,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	var req models.UnreadCountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	count, err := h.delivery.Unread(c.Request().Context(), req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead marks the given notifications of user_id as read. Ids that
// belong to someone else are ignored.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	var req models.MarkReadRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.delivery.Acknowledge(c.Request().Context(), req.UserID, req.IDs); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}
