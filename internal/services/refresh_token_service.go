package services

import (
	"crypto/subtle"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"jobsphere/internal/models"
	"jobsphere/internal/repositories"
	"jobsphere/internal/utils"
)

// RefreshTokenService is the ledger of issued refresh tokens. Raw tokens are
// never stored: issuance persists a SHA-256 digest, validation re-derives
// the digest from the presented token and looks it up among active records.
type RefreshTokenService struct {
	repo repositories.RefreshTokenRepository
}

func NewRefreshTokenService(repo repositories.RefreshTokenRepository) *RefreshTokenService {
	return &RefreshTokenService{repo: repo}
}

// SessionMeta — optional client metadata recorded per session.
type SessionMeta struct {
	IPAddress string
	UserAgent string
}

// Issue persists the record for an already generated raw token.
func (s *RefreshTokenService) Issue(raw string, ownerID uuid.UUID, kind models.OwnerKind, meta SessionMeta) (*models.RefreshToken, error) {
	return s.issue(s.repo, raw, ownerID, kind, meta)
}

func (s *RefreshTokenService) IssueTx(tx *sql.Tx, raw string, ownerID uuid.UUID, kind models.OwnerKind, meta SessionMeta) (*models.RefreshToken, error) {
	return s.issue(s.repo.WithTx(tx), raw, ownerID, kind, meta)
}

func (s *RefreshTokenService) issue(repo repositories.RefreshTokenRepository, raw string, ownerID uuid.UUID, kind models.OwnerKind, meta SessionMeta) (*models.RefreshToken, error) {
	rec := &models.RefreshToken{
		OwnerID:   ownerID,
		OwnerKind: kind,
		TokenHash: hashRefreshToken(raw),
		ExpiresAt: time.Now().Add(RefreshTokenTTL),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := repo.Create(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Validate resolves a presented raw token to its active ledger record.
// Revoked and expired records are indistinguishable from absent ones.
func (s *RefreshTokenService) Validate(raw string) (*models.RefreshToken, error) {
	digest := hashRefreshToken(raw)
	rec, err := s.repo.GetActiveByHash(digest)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrInvalidOrExpiredToken
	}
	// The stored digest drove the lookup; compare it once more in constant
	// time rather than trusting index equality.
	if subtle.ConstantTimeCompare([]byte(rec.TokenHash), []byte(digest)) != 1 {
		return nil, ErrInvalidOrExpiredToken
	}
	return rec, nil
}

func (s *RefreshTokenService) Revoke(id uuid.UUID) error {
	return s.repo.Revoke(id)
}

// Rotate revokes the old record and issues a replacement in one
// transaction; used by the refresh endpoint.
func (s *RefreshTokenService) RotateTx(tx *sql.Tx, old *models.RefreshToken, newRaw string, meta SessionMeta) (*models.RefreshToken, error) {
	txRepo := s.repo.WithTx(tx)
	if err := txRepo.Revoke(old.ID); err != nil {
		return nil, err
	}
	return s.issue(txRepo, newRaw, old.OwnerID, old.OwnerKind, meta)
}

func (s *RefreshTokenService) RevokeAllForOwner(ownerID uuid.UUID, kind models.OwnerKind) error {
	return s.repo.RevokeAllForOwner(ownerID, kind)
}

func hashRefreshToken(raw string) string {
	return utils.HashToken(raw)
}
