package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/insyd/backend/internal/fanout"
	"github.com/anonto42/insyd/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// Notifier fans a committed action out to its recipients. *fanout.Engine implements it.
type Notifier interface {
	Publish(ctx context.Context, authorID uint, postID, content string) error
	Like(ctx context.Context, userID uint, postID string) error
	Comment(ctx context.Context, userID uint, postID string, commentID uint, content string) error
	Discover(ctx context.Context, viewerID uint, postID string) error
}

// fanOutContext detaches fan-out from the client connection: the primary
// write has already committed, so a disconnect must not abort the fan-out.
func fanOutContext(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}

// reportFanOut records a failed fan-out. It never changes the response of the
// action that triggered it.
func reportFanOut(logger *slog.Logger, verb models.Verb, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, fanout.ErrFanOutFailed) {
		logger.Error("fan-out failed", "verb", verb, "error", err)
		return
	}
	logger.Error("fan-out returned unexpected error", "verb", verb, "error", err)
}

// bindAndValidate binds the request into req and runs the echo validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}
