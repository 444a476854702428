package services

import "errors"

// Sentinel errors surfaced by the auth flows. Handlers translate these to
// HTTP statuses; anything else is treated as an internal error.
var (
	// Deliberately identical for bad password and unknown account, so the
	// login surface does not allow account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailTaken       = errors.New("email already registered")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrAccountLocked    = errors.New("account temporarily locked")
	ErrUserNotFound     = errors.New("user not found")

	// Bad, expired or already consumed code — callers cannot tell which.
	ErrInvalidOtp = errors.New("invalid otp")

	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrInvalidTokenPurpose   = errors.New("invalid token purpose")
	ErrPasswordMismatch      = errors.New("passwords do not match")

	// The OTP row was persisted but the email could not be dispatched;
	// a retry-send is a valid recovery path.
	ErrNotificationFailed = errors.New("failed to send notification")
)
