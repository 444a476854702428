package models

import (
	"time"

	"github.com/google/uuid"
)

type OwnerKind string

const (
	OwnerKindUser  OwnerKind = "user"
	OwnerKindAdmin OwnerKind = "admin"
)

// RefreshToken — persisted SHA-256 digest of an issued refresh token.
// Every record carries a tagged owner (OwnerID + OwnerKind), so any live
// session traces to exactly one identity.
type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	OwnerKind OwnerKind `json:"owner_kind"`
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	IPAddress string    `json:"-"`
	UserAgent string    `json:"-"`
}
