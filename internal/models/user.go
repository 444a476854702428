package models

import (
	"time"

	"github.com/google/uuid"
)

type UserType string

const (
	UserTypeSeeker   UserType = "SEEKER"
	UserTypeEmployer UserType = "EMPLOYER"
	UserTypeAdmin    UserType = "ADMIN"
)

// User covers both ordinary accounts and administrators: an admin is a user
// with UserType ADMIN and MustUseOtp set, not a separate entity.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	UserType     UserType  `json:"user_type"`

	IsActive      bool `json:"is_active"`
	EmailVerified bool `json:"email_verified"`
	MustUseOtp    bool `json:"-"`

	FailedLoginAttempts int        `json:"-"`
	AccountLockedUntil  *time.Time `json:"-"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	UserType string `json:"user_type" binding:"required,oneof=SEEKER EMPLOYER"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
