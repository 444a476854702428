package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jobsphere/internal/models"
	"jobsphere/internal/services"
	"jobsphere/internal/utils"
)

func TestAdminLoginIsTwoFactor(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.seedUser(t, "admin@example.com", "admin-pass", models.UserTypeAdmin, true)

	ticket, err := f.admin.Login("admin@example.com", "admin-pass")
	require.NoError(t, err)
	require.NotEmpty(t, ticket)

	// first factor yields a correlation ticket only — no session yet
	claims, err := f.tokens.ParseOtpTicket(ticket)
	require.NoError(t, err)
	require.Equal(t, "ADMIN", claims.UserType)
	_, err = f.tokens.ParseAccessToken(ticket)
	require.ErrorIs(t, err, services.ErrInvalidTokenPurpose)
	require.Empty(t, f.refreshRepo.all())

	code := f.emails.lastCode(models.OtpPurposeAdminLogin)
	require.Len(t, code, 6)

	res, err := f.admin.VerifyOtp("admin@example.com", code, services.SessionMeta{IPAddress: "10.0.0.9"})
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.NotNil(t, res.User.LastLogin)

	access, err := f.tokens.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "ADMIN", access.UserType)

	recs := f.refreshRepo.all()
	require.Len(t, recs, 1)
	require.Equal(t, admin.ID, recs[0].OwnerID)
	require.Equal(t, models.OwnerKindAdmin, recs[0].OwnerKind)
	require.Equal(t, utils.HashToken(res.RefreshToken), recs[0].TokenHash)

	require.Equal(t, []string{"admin@example.com"}, f.alerts.adminLogins)
}

func TestAdminLoginRejectsNonAdmins(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "user@example.com", "secret123", models.UserTypeSeeker, true)

	_, err := f.admin.Login("user@example.com", "secret123")
	require.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAdminLoginWrongPasswordCountsTowardLockout(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "admin@example.com", "admin-pass", models.UserTypeAdmin, true)

	for i := 0; i < 5; i++ {
		_, err := f.admin.Login("admin@example.com", "wrong")
		require.ErrorIs(t, err, services.ErrInvalidCredentials)
	}
	_, err := f.admin.Login("admin@example.com", "admin-pass")
	require.ErrorIs(t, err, services.ErrAccountLocked)
	require.Equal(t, []string{"admin@example.com"}, f.alerts.lockedEmails)
}

func TestAdminVerifyOtpWrongCode(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "admin@example.com", "admin-pass", models.UserTypeAdmin, true)

	_, err := f.admin.Login("admin@example.com", "admin-pass")
	require.NoError(t, err)

	code := f.emails.lastCode(models.OtpPurposeAdminLogin)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err = f.admin.VerifyOtp("admin@example.com", wrong, services.SessionMeta{})
	require.ErrorIs(t, err, services.ErrInvalidOtp)
	require.Empty(t, f.refreshRepo.all())

	// the failed attempt is recorded on the challenge row
	row, err := f.otpRepo.LatestActive("admin@example.com", models.OtpPurposeAdminLogin)
	require.NoError(t, err)
	require.Equal(t, 1, row.Attempts)
}

func TestAdminVerifyOtpUnknownOrNonAdmin(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "user@example.com", "secret123", models.UserTypeSeeker, true)

	_, err := f.admin.VerifyOtp("nobody@example.com", "123456", services.SessionMeta{})
	require.ErrorIs(t, err, services.ErrInvalidOtp)
	_, err = f.admin.VerifyOtp("user@example.com", "123456", services.SessionMeta{})
	require.ErrorIs(t, err, services.ErrInvalidOtp)
}

func TestAdminForgotPasswordOnlyForAdmins(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "user@example.com", "secret123", models.UserTypeSeeker, true)
	f.seedUser(t, "admin@example.com", "admin-pass", models.UserTypeAdmin, true)

	require.ErrorIs(t, f.admin.ForgotPassword("user@example.com"), services.ErrUserNotFound)
	require.ErrorIs(t, f.admin.ForgotPassword("nobody@example.com"), services.ErrUserNotFound)
	require.NoError(t, f.admin.ForgotPassword("admin@example.com"))
}

func TestAdminResetPasswordFlow(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "admin@example.com", "old-pass", models.UserTypeAdmin, true)

	require.NoError(t, f.admin.ForgotPassword("admin@example.com"))
	code := f.emails.lastCode(models.OtpPurposePasswordReset)

	ticket, err := f.admin.VerifyResetOtp("admin@example.com", code)
	require.NoError(t, err)

	// the terminal step is shared with the user flow: same purpose-scoped ticket
	_, err = f.auth.ResetPasswordWithToken(ticket, "new-pass", "new-pass")
	require.NoError(t, err)

	_, err = f.admin.Login("admin@example.com", "old-pass")
	require.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = f.admin.Login("admin@example.com", "new-pass")
	require.NoError(t, err)
}
