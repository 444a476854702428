package services

import (
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"jobsphere/internal/models"
	"jobsphere/internal/repositories"
	"jobsphere/internal/utils"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

// RegistrationResult — correlation handle for the verify step. The ticket
// grants no privileges; it only binds the pending OTP challenge.
type RegistrationResult struct {
	UserID   string `json:"user_id"`
	OtpToken string `json:"otp_token"`
}

// AuthResult — issued session credentials. RefreshToken is empty for flows
// that issue an access token only.
type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

type AuthService interface {
	Register(email, password string, userType models.UserType) (*RegistrationResult, error)
	VerifyEmail(email, code string, meta SessionMeta) (*AuthResult, error)
	Login(email, password string) (*AuthResult, error)
	ForgotPassword(email string) error
	VerifyResetOtp(email, code string) (string, error)
	ResetPasswordWithToken(resetToken, newPassword, confirmPassword string) (string, error)
	Refresh(rawRefreshToken string, meta SessionMeta) (*AuthResult, error)
	Logout(rawRefreshToken string) error
}

type authService struct {
	db      *sql.DB
	users   repositories.UserRepository
	otps    *OtpService
	tokens  *TokenService
	refresh *RefreshTokenService
	alerts  AlertService
}

func NewAuthService(
	db *sql.DB,
	users repositories.UserRepository,
	otps *OtpService,
	tokens *TokenService,
	refresh *RefreshTokenService,
	alerts AlertService,
) AuthService {
	return &authService{
		db:      db,
		users:   users,
		otps:    otps,
		tokens:  tokens,
		refresh: refresh,
		alerts:  alerts,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the account unverified and opens the EMAIL_VERIFICATION
// challenge. A mail failure is surfaced (ErrNotificationFailed) but both
// the account and the OTP row persist: the recovery path is a resend, not
// a re-register.
func (s *authService) Register(email, password string, userType models.UserType) (*RegistrationResult, error) {
	email = normalizeEmail(email)

	exists, err := s.users.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		UserType:     userType,
		IsActive:     true,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	log.Printf("[auth][register] user created: id=%s type=%s", user.ID, user.UserType)

	if err := s.otps.Send(email, models.OtpPurposeEmailVerification); err != nil {
		return nil, err
	}

	ticket, err := s.tokens.IssueOtpTicket(email, string(userType))
	if err != nil {
		return nil, err
	}
	return &RegistrationResult{UserID: user.ID.String(), OtpToken: ticket}, nil
}

// VerifyEmail consumes the EMAIL_VERIFICATION challenge and flips
// email_verified in the same transaction. Verification is an OTP-proved
// login, so it issues a refresh token alongside the access token.
func (s *authService) VerifyEmail(email, code string, meta SessionMeta) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidOtp
	}

	rawRefresh, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := s.otps.ValidateTx(tx, email, code, models.OtpPurposeEmailVerification)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidOtp
	}
	if err := s.users.WithTx(tx).MarkEmailVerified(email); err != nil {
		return nil, err
	}
	if _, err := s.refresh.IssueTx(tx, rawRefresh, user.ID, models.OwnerKindUser, meta); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	user.EmailVerified = true
	log.Printf("[auth][verify] email verified: id=%s", user.ID)

	access, err := s.tokens.IssueAccessToken(email, string(user.UserType))
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: rawRefresh}, nil
}

func (s *authService) Login(email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.checkPassword(email, password)
	if err != nil {
		return nil, err
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	access, err := s.tokens.IssueAccessToken(email, string(user.UserType))
	if err != nil {
		return nil, err
	}
	log.Printf("[auth][login] success id=%s type=%s", user.ID, user.UserType)
	return &AuthResult{User: user, AccessToken: access}, nil
}

// checkPassword implements the shared credential gate: enumeration-safe
// errors, lockout counting, bcrypt compare. Shared with the admin flow.
func (s *authService) checkPassword(email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if user.AccountLockedUntil != nil && user.AccountLockedUntil.After(time.Now()) {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		attempts, incErr := s.users.IncrementFailedLogins(user.ID)
		if incErr != nil {
			return nil, incErr
		}
		if attempts >= maxFailedLogins {
			until := time.Now().Add(lockoutDuration)
			if lockErr := s.users.LockUntil(user.ID, until); lockErr != nil {
				return nil, lockErr
			}
			log.Printf("[auth][lockout] id=%s attempts=%d until=%s", user.ID, attempts, until.Format(time.RFC3339))
			if s.alerts != nil {
				s.alerts.AccountLocked(user.Email, until)
			}
		}
		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.AccountLockedUntil != nil {
		if err := s.users.ResetFailedLogins(user.ID); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *authService) ForgotPassword(email string) error {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.otps.Send(email, models.OtpPurposePasswordReset)
}

func (s *authService) VerifyResetOtp(email, code string) (string, error) {
	email = normalizeEmail(email)

	ok, err := s.otps.Validate(email, code, models.OtpPurposePasswordReset)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidOtp
	}
	return s.tokens.IssueResetTicket(email)
}

// ResetPasswordWithToken is the terminal step of the reset flow. The ticket
// must verify AND carry purpose=PASSWORD_RESET exactly; a valid token
// issued for any other purpose is rejected.
func (s *authService) ResetPasswordWithToken(resetToken, newPassword, confirmPassword string) (string, error) {
	if newPassword != confirmPassword {
		return "", ErrPasswordMismatch
	}

	claims, err := s.tokens.ParseResetTicket(resetToken)
	if err != nil {
		return "", err
	}
	email := claims.Subject

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdatePassword(user.ID, string(hash)); err != nil {
		return "", err
	}
	log.Printf("[auth][reset] password replaced: id=%s", user.ID)
	return email, nil
}

// Refresh rotates the presented refresh token and issues a fresh access
// token for its owner. Revoked, expired and unknown tokens are equally
// invalid.
func (s *authService) Refresh(rawRefreshToken string, meta SessionMeta) (*AuthResult, error) {
	rec, err := s.refresh.Validate(rawRefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(rec.OwnerID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidOrExpiredToken
	}

	newRaw, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := s.refresh.RotateTx(tx, rec, newRaw, meta); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccessToken(user.Email, string(user.UserType))
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: newRaw}, nil
}

// Logout revokes the presented refresh token; revoking an already invalid
// token is a no-op.
func (s *authService) Logout(rawRefreshToken string) error {
	rec, err := s.refresh.Validate(rawRefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpiredToken) {
			return nil
		}
		return err
	}
	return s.refresh.Revoke(rec.ID)
}
