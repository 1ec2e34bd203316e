package models

import "time"

// Verb is the kind of action a notification describes
type Verb string

const (
	VerbPublished  Verb = "PUBLISHED"
	VerbLiked      Verb = "LIKED"
	VerbCommented  Verb = "COMMENTED"
	VerbDiscovered Verb = "DISCOVERED"
)

// Subject types a notification can refer to
const (
	SubjectPost    = "post"
	SubjectComment = "comment"
)

// Notification is one record of the append-only notification log.
// Only IsRead may change after the record is written.
type Notification struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement;index:idx_notifications_recipient_id,priority:2,sort:desc"`
	RecipientID uint      `json:"recipient_id" gorm:"not null;index:idx_notifications_recipient_id,priority:1"`
	ActorID     uint      `json:"actor_id" gorm:"not null"`
	Verb        Verb      `json:"verb" gorm:"size:20;not null"`
	SubjectType string    `json:"subject_type" gorm:"size:20;not null"`
	SubjectID   string    `json:"subject_id" gorm:"size:64;not null"`
	Message     string    `json:"message" gorm:"not null"`
	IsRead      bool      `json:"is_read" gorm:"not null;default:false"`
	BatchID     string    `json:"batch_id" gorm:"size:36;index"`
	CreatedAt   time.Time `json:"created_at"`
}

// MarkReadRequest defines the request body for acknowledging notifications
type MarkReadRequest struct {
	UserID uint     `json:"user_id" validate:"required"`
	IDs    []uint64 `json:"ids" validate:"required"`
}

// FetchNotificationsRequest defines the query of a notification poll
type FetchNotificationsRequest struct {
	UserID  uint   `query:"user_id" validate:"required"`
	SinceID uint64 `query:"since_id"`
}

// UnreadCountRequest defines the query of an unread count lookup
type UnreadCountRequest struct {
	UserID uint `query:"user_id" validate:"required"`
}
