package services

import (
	"database/sql"
	"log"
	"time"

	"jobsphere/internal/models"
	"jobsphere/internal/repositories"
	"jobsphere/internal/utils"
)

// AdminAuthService — двухфакторный вход для администраторов.
// Password check first, then an ADMIN_LOGIN OTP; tokens are issued only
// after the second factor.
type AdminAuthService interface {
	Login(email, password string) (string, error)
	VerifyOtp(email, code string, meta SessionMeta) (*AuthResult, error)
	ForgotPassword(email string) error
	VerifyResetOtp(email, code string) (string, error)
}

type adminAuthService struct {
	db      *sql.DB
	users   repositories.UserRepository
	otps    *OtpService
	tokens  *TokenService
	refresh *RefreshTokenService
	alerts  AlertService

	// shared credential gate (lockout, enumeration-safe errors)
	base *authService
}

func NewAdminAuthService(
	db *sql.DB,
	users repositories.UserRepository,
	otps *OtpService,
	tokens *TokenService,
	refresh *RefreshTokenService,
	alerts AlertService,
) AdminAuthService {
	base := &authService{db: db, users: users, otps: otps, tokens: tokens, refresh: refresh, alerts: alerts}
	return &adminAuthService{
		db:      db,
		users:   users,
		otps:    otps,
		tokens:  tokens,
		refresh: refresh,
		alerts:  alerts,
		base:    base,
	}
}

// Login checks credentials and opens the ADMIN_LOGIN challenge. It returns
// an OTP ticket only — no privileges are granted before the second factor.
func (s *adminAuthService) Login(email, password string) (string, error) {
	email = normalizeEmail(email)

	user, err := s.base.checkPassword(email, password)
	if err != nil {
		return "", err
	}
	if user.UserType != models.UserTypeAdmin {
		return "", ErrInvalidCredentials
	}

	if err := s.otps.Send(email, models.OtpPurposeAdminLogin); err != nil {
		return "", err
	}
	log.Printf("[admin][login] otp challenge opened: id=%s", user.ID)

	return s.tokens.IssueOtpTicket(email, string(models.UserTypeAdmin))
}

// VerifyOtp completes the second factor: consumes the ADMIN_LOGIN code,
// stamps last_login and records the refresh session in one transaction.
func (s *adminAuthService) VerifyOtp(email, code string, meta SessionMeta) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.UserType != models.UserTypeAdmin {
		return nil, ErrInvalidOtp
	}

	rawRefresh, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := s.otps.ValidateTx(tx, email, code, models.OtpPurposeAdminLogin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidOtp
	}
	if err := s.users.WithTx(tx).UpdateLastLogin(user.ID, now); err != nil {
		return nil, err
	}
	if _, err := s.refresh.IssueTx(tx, rawRefresh, user.ID, models.OwnerKindAdmin, meta); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	access, err := s.tokens.IssueAccessToken(email, string(models.UserTypeAdmin))
	if err != nil {
		return nil, err
	}
	log.Printf("[admin][verify] success id=%s", user.ID)
	if s.alerts != nil {
		s.alerts.AdminLoggedIn(email, meta.IPAddress)
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: rawRefresh}, nil
}

func (s *adminAuthService) ForgotPassword(email string) error {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil || user.UserType != models.UserTypeAdmin {
		return ErrUserNotFound
	}
	return s.otps.Send(email, models.OtpPurposePasswordReset)
}

func (s *adminAuthService) VerifyResetOtp(email, code string) (string, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return "", err
	}
	if user == nil || user.UserType != models.UserTypeAdmin {
		return "", ErrInvalidOtp
	}
	return s.base.VerifyResetOtp(email, code)
}
