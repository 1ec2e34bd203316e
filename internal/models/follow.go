package models

import "time"

// Follow represents a directed follow edge: FollowerID follows FollowingID
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateFollowRequest defines the request body for following a user
type CreateFollowRequest struct {
	FollowerID uint `json:"follower_id" validate:"required"`
	FollowedID uint `json:"followed_id" validate:"required"`
}
