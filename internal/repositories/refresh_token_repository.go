package repositories

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"jobsphere/internal/models"
)

type RefreshTokenRepository interface {
	Create(rec *models.RefreshToken) error
	// GetActiveByHash returns the non-revoked, non-expired record with the
	// given digest, or nil.
	GetActiveByHash(tokenHash string) (*models.RefreshToken, error)
	// Revoke is idempotent: revoking an already revoked record is a no-op.
	Revoke(id uuid.UUID) error
	RevokeAllForOwner(ownerID uuid.UUID, kind models.OwnerKind) error
	WithTx(tx *sql.Tx) RefreshTokenRepository
}

type refreshTokenRepository struct {
	DB Querier
}

func NewRefreshTokenRepository(db *sql.DB) RefreshTokenRepository {
	return &refreshTokenRepository{DB: db}
}

func (r *refreshTokenRepository) WithTx(tx *sql.Tx) RefreshTokenRepository {
	return &refreshTokenRepository{DB: tx}
}

func (r *refreshTokenRepository) Create(rec *models.RefreshToken) error {
	const q = `
		INSERT INTO refresh_tokens (
			id, owner_id, owner_kind, token_hash,
			created_at, expires_at, revoked, ip_address, user_agent
		)
		VALUES ($1,$2,$3,$4,NOW(),$5,FALSE,$6,$7)
		RETURNING created_at
	`
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if err := r.DB.QueryRow(q,
		rec.ID, rec.OwnerID, rec.OwnerKind, rec.TokenHash,
		rec.ExpiresAt, rec.IPAddress, rec.UserAgent,
	).Scan(&rec.CreatedAt); err != nil {
		return fmt.Errorf("refresh token create: %w", err)
	}
	return nil
}

func (r *refreshTokenRepository) GetActiveByHash(tokenHash string) (*models.RefreshToken, error) {
	const q = `
		SELECT id, owner_id, owner_kind, token_hash, created_at, expires_at, revoked,
		       COALESCE(ip_address,''), COALESCE(user_agent,'')
		FROM refresh_tokens
		WHERE token_hash = $1 AND revoked = FALSE AND expires_at > NOW()
	`
	rec := &models.RefreshToken{}
	err := r.DB.QueryRow(q, tokenHash).Scan(
		&rec.ID, &rec.OwnerID, &rec.OwnerKind, &rec.TokenHash,
		&rec.CreatedAt, &rec.ExpiresAt, &rec.Revoked,
		&rec.IPAddress, &rec.UserAgent,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("refresh token lookup: %w", err)
	}
	return rec, nil
}

func (r *refreshTokenRepository) Revoke(id uuid.UUID) error {
	if _, err := r.DB.Exec(`UPDATE refresh_tokens SET revoked=TRUE WHERE id=$1`, id); err != nil {
		return fmt.Errorf("refresh token revoke: %w", err)
	}
	return nil
}

func (r *refreshTokenRepository) RevokeAllForOwner(ownerID uuid.UUID, kind models.OwnerKind) error {
	_, err := r.DB.Exec(`
		UPDATE refresh_tokens
		SET revoked=TRUE
		WHERE owner_id=$1 AND owner_kind=$2 AND revoked=FALSE
	`, ownerID, kind)
	return err
}
