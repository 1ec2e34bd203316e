package delivery

import (
	"context"

	"github.com/anonto42/insyd/backend/internal/models"
	"github.com/anonto42/insyd/backend/internal/repositories"
)

// Page is one fetch result. Notifications are newest first; Cursor is the
// watermark the client should send on its next fetch.
type Page struct {
	Notifications []models.Notification `json:"notifications"`
	Cursor        uint64                `json:"cursor"`
}

// Service is the read side of the notification log.
type Service struct {
	log      repositories.NotificationLog
	pageSize int
}

// NewService creates a Service returning bootstrap pages of pageSize records
func NewService(log repositories.NotificationLog, pageSize int) *Service {
	return &Service{log: log, pageSize: repositories.NormalizeLimit(pageSize)}
}

// Fetch returns the bootstrap page when sinceID is 0 and the unbounded delta otherwise.
func (s *Service) Fetch(ctx context.Context, recipientID uint, sinceID uint64) (Page, error) {
	var (
		notifications []models.Notification
		err           error
	)
	if sinceID == 0 {
		notifications, err = s.log.QueryInitial(ctx, recipientID, s.pageSize)
	} else {
		notifications, err = s.log.QueryIncremental(ctx, recipientID, sinceID)
	}
	if err != nil {
		return Page{}, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	return Page{Notifications: notifications, Cursor: Advance(sinceID, notifications)}, nil
}

// Acknowledge marks ids read for recipientID. Repeating the call changes nothing.
func (s *Service) Acknowledge(ctx context.Context, recipientID uint, ids []uint64) error {
	return s.log.MarkRead(ctx, recipientID, ids)
}

// Unread returns how many of recipientID's notifications are unread.
func (s *Service) Unread(ctx context.Context, recipientID uint) (int64, error) {
	return s.log.UnreadCount(ctx, recipientID)
}

// Advance returns the watermark after observing batch: never lower than watermark.
func Advance(watermark uint64, batch []models.Notification) uint64 {
	for _, n := range batch {
		if n.ID > watermark {
			watermark = n.ID
		}
	}
	return watermark
}
