package model

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates user roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// UnlimitedAttempts is the max_test_attempts sentinel for no attempt cap.
const UnlimitedAttempts = -1

// User represents a platform account.
type User struct {
	ID                uuid.UUID   `json:"id"`
	FullName          string      `json:"full_name"`
	Email             string      `json:"email"`
	Phone             string      `json:"phone"`
	PasswordHash      string      `json:"-"`
	Role              Role        `json:"role"`
	IsBlocked         bool        `json:"is_blocked"`
	FreeTestUsed      bool        `json:"free_test_used"`
	TestAttempts      int         `json:"test_attempts"`
	MaxTestAttempts   int         `json:"max_test_attempts"`
	AllowedDirections []uuid.UUID `json:"allowed_directions"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// HasAttemptsLeft reports whether the user may start another session.
func (u *User) HasAttemptsLeft() bool {
	if u.MaxTestAttempts == UnlimitedAttempts {
		return true
	}
	return u.TestAttempts < u.MaxTestAttempts
}

// IsAllowedDirection reports whether the direction was granted to the user
// by an administrator.
func (u *User) IsAllowedDirection(directionID uuid.UUID) bool {
	for _, id := range u.AllowedDirections {
		if id == directionID {
			return true
		}
	}
	return false
}

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required,min=7,max=20"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
