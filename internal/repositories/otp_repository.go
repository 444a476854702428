package repositories

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"jobsphere/internal/models"
)

type OtpRepository interface {
	Create(otp *models.Otp) error
	LatestActive(email string, purpose models.OtpPurpose) (*models.Otp, error)
	// Consume marks the row used. The used=FALSE guard makes the transition
	// single-shot: under concurrent submissions exactly one caller gets true.
	Consume(id uuid.UUID) (bool, error)
	IncrementAttempts(id uuid.UUID) (int, error)
	WithTx(tx *sql.Tx) OtpRepository
}

type otpRepository struct {
	DB Querier
}

func NewOtpRepository(db *sql.DB) OtpRepository {
	return &otpRepository{DB: db}
}

func (r *otpRepository) WithTx(tx *sql.Tx) OtpRepository {
	return &otpRepository{DB: tx}
}

// Create — каждая отправка кода = новая строка.
func (r *otpRepository) Create(otp *models.Otp) error {
	const q = `
		INSERT INTO otps (id, email, code_hash, purpose, created_at, expires_at, used, attempts)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, 0)
	`
	if otp.ID == uuid.Nil {
		otp.ID = uuid.New()
	}
	if _, err := r.DB.Exec(q, otp.ID, otp.Email, otp.CodeHash, otp.Purpose, otp.CreatedAt, otp.ExpiresAt); err != nil {
		return fmt.Errorf("otp create: %w", err)
	}
	return nil
}

// LatestActive — newest unused, unexpired row for (email, purpose).
func (r *otpRepository) LatestActive(email string, purpose models.OtpPurpose) (*models.Otp, error) {
	const q = `
		SELECT id, email, code_hash, purpose, created_at, expires_at, used, attempts
		FROM otps
		WHERE email = $1 AND purpose = $2 AND used = FALSE AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := r.DB.QueryRow(q, email, purpose)
	var o models.Otp
	if err := row.Scan(&o.ID, &o.Email, &o.CodeHash, &o.Purpose, &o.CreatedAt, &o.ExpiresAt, &o.Used, &o.Attempts); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("otp latest: %w", err)
	}
	return &o, nil
}

func (r *otpRepository) Consume(id uuid.UUID) (bool, error) {
	const q = `
		UPDATE otps
		SET used = TRUE
		WHERE id = $1 AND used = FALSE AND expires_at > NOW()
		RETURNING id
	`
	var consumed uuid.UUID
	err := r.DB.QueryRow(q, id).Scan(&consumed)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("otp consume: %w", err)
	}
	return true, nil
}

// IncrementAttempts — +1 попытка, возвращает новое значение attempts.
func (r *otpRepository) IncrementAttempts(id uuid.UUID) (int, error) {
	const q = `
		UPDATE otps
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`
	var attempts int
	if err := r.DB.QueryRow(q, id).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("otp increment attempts: %w", err)
	}
	return attempts, nil
}
