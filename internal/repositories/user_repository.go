package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"jobsphere/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
	UpdatePassword(id uuid.UUID, passwordHash string) error
	MarkEmailVerified(email string) error
	UpdateLastLogin(id uuid.UUID, at time.Time) error

	// lockout helpers
	IncrementFailedLogins(id uuid.UUID) (int, error)
	LockUntil(id uuid.UUID, until time.Time) error
	ResetFailedLogins(id uuid.UUID) error

	WithTx(tx *sql.Tx) UserRepository
}

type userRepository struct {
	DB Querier
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) WithTx(tx *sql.Tx) UserRepository {
	return &userRepository{DB: tx}
}

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (
			id, email, password_hash, user_type,
			is_active, email_verified, must_use_otp,
			failed_login_attempts, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,0,NOW(),NOW())
		RETURNING created_at, updated_at
	`
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return r.DB.QueryRow(q,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.UserType,
		user.IsActive,
		user.EmailVerified,
		user.MustUseOtp,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(id uuid.UUID) (*models.User, error) {
	return r.getBy(`WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	return r.getBy(`WHERE email = $1`, email)
}

func (r *userRepository) getBy(where string, arg any) (*models.User, error) {
	q := `
		SELECT
			id, email, password_hash, user_type,
			is_active, email_verified, must_use_otp,
			failed_login_attempts, account_locked_until,
			last_login, created_at, updated_at
		FROM users
	` + where
	u := &models.User{}
	var (
		lockedUntil sql.NullTime
		lastLogin   sql.NullTime
	)
	err := r.DB.QueryRow(q, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.UserType,
		&u.IsActive, &u.EmailVerified, &u.MustUseOtp,
		&u.FailedLoginAttempts, &lockedUntil,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if lockedUntil.Valid {
		t := lockedUntil.Time
		u.AccountLockedUntil = &t
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return u, nil
}

func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`, email).Scan(&exists)
	return exists, err
}

func (r *userRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	_, err := r.DB.Exec(`
		UPDATE users
		SET password_hash=$1, updated_at=NOW()
		WHERE id=$2
	`, passwordHash, id)
	return err
}

func (r *userRepository) MarkEmailVerified(email string) error {
	_, err := r.DB.Exec(`
		UPDATE users
		SET email_verified=TRUE, updated_at=NOW()
		WHERE email=$1
	`, email)
	return err
}

func (r *userRepository) UpdateLastLogin(id uuid.UUID, at time.Time) error {
	_, err := r.DB.Exec(`
		UPDATE users
		SET last_login=$1, updated_at=NOW()
		WHERE id=$2
	`, at, id)
	return err
}

// ===== lockout helpers =====

func (r *userRepository) IncrementFailedLogins(id uuid.UUID) (int, error) {
	const q = `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1, updated_at=NOW()
		WHERE id = $1
		RETURNING failed_login_attempts
	`
	var attempts int
	if err := r.DB.QueryRow(q, id).Scan(&attempts); err != nil {
		return 0, err
	}
	return attempts, nil
}

func (r *userRepository) LockUntil(id uuid.UUID, until time.Time) error {
	_, err := r.DB.Exec(`
		UPDATE users
		SET account_locked_until=$1, updated_at=NOW()
		WHERE id=$2
	`, until, id)
	return err
}

func (r *userRepository) ResetFailedLogins(id uuid.UUID) error {
	_, err := r.DB.Exec(`
		UPDATE users
		SET failed_login_attempts=0, account_locked_until=NULL, updated_at=NOW()
		WHERE id=$1
	`, id)
	return err
}
