package models

import "time"

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"size:64;index;uniqueIndex:idx_user_post_like"` // MongoDB ObjectID as hex string
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_post_like"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateLikeRequest defines the request body for liking a post
type CreateLikeRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	PostID string `json:"post_id" validate:"required"`
}
