package models

import "time"

// User represents an account in the social graph
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// UserCompact is the minimal user shape embedded in other responses
type UserCompact struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ToCompact returns the compact form of the user
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name}
}

// CreateUserRequest defines the request body for creating a user
type CreateUserRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}
