package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"jobsphere/internal/models"
)

type EmailService interface {
	SendOtpEmail(email, code string, purpose models.OtpPurpose) error
}

type emailService struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, fromName string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer:   dialer,
		from:     fromEmail,
		fromName: fromName,
	}
}

func (s *emailService) SendOtpEmail(email, code string, purpose models.OtpPurpose) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", email)
	m.SetHeader("Subject", otpSubject(purpose))
	m.SetBody("text/html", buildOtpBody(code, purpose))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

func otpSubject(purpose models.OtpPurpose) string {
	switch purpose {
	case models.OtpPurposePasswordReset:
		return "Reset Your JobSphere Password"
	case models.OtpPurposeAdminLogin:
		return "Your Admin Login Code - JobSphere"
	default:
		return "Verify Your JobSphere Account"
	}
}

func buildOtpBody(code string, purpose models.OtpPurpose) string {
	var action string
	switch purpose {
	case models.OtpPurposePasswordReset:
		action = "password reset"
	case models.OtpPurposeAdminLogin:
		action = "admin login"
	default:
		action = "email verification"
	}
	return fmt.Sprintf(`
		<div style="font-family:system-ui;max-width:600px;margin:auto">
			<h2 style="color:#1d4ed8">Your %s code</h2>
			<div style="font-size:36px;font-weight:bold;color:#1d4ed8;margin:20px 0">%s</div>
			<p>The code is valid for 10 minutes.</p>
			<p>If you did not request this, you can ignore this email.</p>
		</div>
	`, action, code)
}
