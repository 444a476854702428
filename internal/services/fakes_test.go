package services_test

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jobsphere/internal/models"
	"jobsphere/internal/repositories"
	"jobsphere/internal/services"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// ===== transaction stub =====

// The services under test only use *sql.DB for Begin/Commit/Rollback; all
// data access goes through the in-memory repositories, which ignore the
// transaction handle. The stub driver provides just that surface.
type txDriver struct{}

func (txDriver) Open(string) (driver.Conn, error) { return txConn{}, nil }

type txConn struct{}

func (txConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("unexpected statement on stub connection")
}
func (txConn) Close() error              { return nil }
func (txConn) Begin() (driver.Tx, error) { return txHandle{}, nil }

type txHandle struct{}

func (txHandle) Commit() error   { return nil }
func (txHandle) Rollback() error { return nil }

var registerStubOnce sync.Once

func newStubDB(t *testing.T) *sql.DB {
	t.Helper()
	registerStubOnce.Do(func() { sql.Register("txstub", txDriver{}) })
	db, err := sql.Open("txstub", "")
	require.NoError(t, err)
	return db
}

// ===== in-memory repositories =====

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) ExistsByEmail(email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeUserRepo) UpdatePassword(id uuid.UUID, passwordHash string) error {
	return f.update(id, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (f *fakeUserRepo) MarkEmailVerified(email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok {
		u.EmailVerified = true
	}
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(id uuid.UUID, at time.Time) error {
	return f.update(id, func(u *models.User) { u.LastLogin = &at })
}

func (f *fakeUserRepo) IncrementFailedLogins(id uuid.UUID) (int, error) {
	var attempts int
	err := f.update(id, func(u *models.User) {
		u.FailedLoginAttempts++
		attempts = u.FailedLoginAttempts
	})
	return attempts, err
}

func (f *fakeUserRepo) LockUntil(id uuid.UUID, until time.Time) error {
	return f.update(id, func(u *models.User) { u.AccountLockedUntil = &until })
}

func (f *fakeUserRepo) ResetFailedLogins(id uuid.UUID) error {
	return f.update(id, func(u *models.User) {
		u.FailedLoginAttempts = 0
		u.AccountLockedUntil = nil
	})
}

func (f *fakeUserRepo) WithTx(*sql.Tx) repositories.UserRepository { return f }

func (f *fakeUserRepo) update(id uuid.UUID, mutate func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			mutate(u)
			return nil
		}
	}
	return errors.New("user not found")
}

type fakeOtpRepo struct {
	mu   sync.Mutex
	rows []*models.Otp
}

func newFakeOtpRepo() *fakeOtpRepo { return &fakeOtpRepo{} }

func (f *fakeOtpRepo) Create(otp *models.Otp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if otp.ID == uuid.Nil {
		otp.ID = uuid.New()
	}
	cp := *otp
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeOtpRepo) LatestActive(email string, purpose models.OtpPurpose) (*models.Otp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.rows) - 1; i >= 0; i-- {
		r := f.rows[i]
		if r.Email == email && r.Purpose == purpose && !r.Used && r.ExpiresAt.After(time.Now()) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOtpRepo) Consume(id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			if r.Used || !r.ExpiresAt.After(time.Now()) {
				return false, nil
			}
			r.Used = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOtpRepo) IncrementAttempts(id uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			r.Attempts++
			return r.Attempts, nil
		}
	}
	return 0, errors.New("otp not found")
}

func (f *fakeOtpRepo) WithTx(*sql.Tx) repositories.OtpRepository { return f }

func (f *fakeOtpRepo) expire(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			r.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
}

type fakeRefreshRepo struct {
	mu   sync.Mutex
	rows []*models.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo { return &fakeRefreshRepo{} }

func (f *fakeRefreshRepo) Create(rec *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	cp := *rec
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeRefreshRepo) GetActiveByHash(tokenHash string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.TokenHash == tokenHash && !r.Revoked && r.ExpiresAt.After(time.Now()) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRefreshRepo) Revoke(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			r.Revoked = true
		}
	}
	return nil
}

func (f *fakeRefreshRepo) RevokeAllForOwner(ownerID uuid.UUID, kind models.OwnerKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.OwnerID == ownerID && r.OwnerKind == kind {
			r.Revoked = true
		}
	}
	return nil
}

func (f *fakeRefreshRepo) WithTx(*sql.Tx) repositories.RefreshTokenRepository { return f }

func (f *fakeRefreshRepo) all() []*models.RefreshToken {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.RefreshToken, 0, len(f.rows))
	for _, r := range f.rows {
		cp := *r
		out = append(out, &cp)
	}
	return out
}

func (f *fakeRefreshRepo) expire(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			r.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
}

// ===== outbound fakes =====

type sentEmail struct {
	email   string
	code    string
	purpose models.OtpPurpose
}

type fakeEmailService struct {
	mu   sync.Mutex
	sent []sentEmail
	fail bool
}

func (f *fakeEmailService) SendOtpEmail(email, code string, purpose models.OtpPurpose) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("%w: smtp refused", services.ErrNotificationFailed)
	}
	f.sent = append(f.sent, sentEmail{email: email, code: code, purpose: purpose})
	return nil
}

// lastCode returns the code from the newest message sent for the purpose.
func (f *fakeEmailService) lastCode(purpose models.OtpPurpose) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].purpose == purpose {
			return f.sent[i].code
		}
	}
	return ""
}

type fakeAlertService struct {
	mu           sync.Mutex
	adminLogins  []string
	lockedEmails []string
}

func (f *fakeAlertService) AdminLoggedIn(email, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminLogins = append(f.adminLogins, email)
}

func (f *fakeAlertService) AccountLocked(email string, _ time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lockedEmails = append(f.lockedEmails, email)
}

// ===== fixture =====

type authFixture struct {
	users       *fakeUserRepo
	otpRepo     *fakeOtpRepo
	refreshRepo *fakeRefreshRepo
	emails      *fakeEmailService
	alerts      *fakeAlertService

	tokens  *services.TokenService
	otps    *services.OtpService
	refresh *services.RefreshTokenService
	auth    services.AuthService
	admin   services.AdminAuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db := newStubDB(t)
	t.Cleanup(func() { _ = db.Close() })

	f := &authFixture{
		users:       newFakeUserRepo(),
		otpRepo:     newFakeOtpRepo(),
		refreshRepo: newFakeRefreshRepo(),
		emails:      &fakeEmailService{},
		alerts:      &fakeAlertService{},
	}

	tokens, err := services.NewTokenService(testSecret)
	require.NoError(t, err)
	f.tokens = tokens
	f.otps = services.NewOtpService(f.otpRepo, f.emails)
	f.refresh = services.NewRefreshTokenService(f.refreshRepo)
	f.auth = services.NewAuthService(db, f.users, f.otps, f.tokens, f.refresh, f.alerts)
	f.admin = services.NewAdminAuthService(db, f.users, f.otps, f.tokens, f.refresh, f.alerts)
	return f
}

func (f *authFixture) seedUser(t *testing.T, email, password string, userType models.UserType, verified bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Email:         email,
		PasswordHash:  string(hash),
		UserType:      userType,
		IsActive:      true,
		EmailVerified: verified,
		MustUseOtp:    userType == models.UserTypeAdmin,
	}
	require.NoError(t, f.users.Create(u))
	return u
}
