package models

import (
	"time"

	"github.com/google/uuid"
)

type OtpPurpose string

const (
	OtpPurposeEmailVerification OtpPurpose = "EMAIL_VERIFICATION"
	OtpPurposePasswordReset     OtpPurpose = "PASSWORD_RESET"
	OtpPurposeAdminLogin        OtpPurpose = "ADMIN_LOGIN"
)

// Otp — одна строка на каждую отправку кода.
// Only the bcrypt hash of the code is stored (CodeHash); rows are never
// deleted, only marked used or left to expire.
type Otp struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	CodeHash  string     `json:"-"`
	Purpose   OtpPurpose `json:"purpose"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used"`
	Attempts  int        `json:"attempts"`
}
