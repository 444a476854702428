package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"jobsphere/internal/models"
	"jobsphere/internal/repositories"
	"jobsphere/internal/utils"
)

const defaultOtpTTL = 10 * time.Minute

// OtpService владеет жизненным циклом одноразовых кодов: generate, hash,
// email, validate. Коды живут 10 минут и сгорают после первого совпадения.
type OtpService struct {
	repo   repositories.OtpRepository
	emails EmailService
	ttl    time.Duration
}

func NewOtpService(repo repositories.OtpRepository, emails EmailService) *OtpService {
	return &OtpService{
		repo:   repo,
		emails: emails,
		ttl:    defaultOtpTTL,
	}
}

// Send generates a fresh six-digit code, stores its bcrypt hash and mails
// the plaintext. The row is persisted before the send, so a mail failure
// (ErrNotificationFailed) leaves a retryable challenge behind.
func (s *OtpService) Send(email string, purpose models.OtpPurpose) error {
	code, err := utils.NewOtpCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	codeHashBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bcrypt generate: %w", err)
	}

	now := time.Now()
	otp := &models.Otp{
		Email:     email,
		CodeHash:  string(codeHashBytes),
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(otp); err != nil {
		return err
	}

	if err := s.emails.SendOtpEmail(email, code, purpose); err != nil {
		log.Printf("[otp][send] email dispatch failed: email=%q purpose=%s err=%v", email, purpose, err)
		return err
	}
	log.Printf("[otp][send] ok: email=%q purpose=%s", email, purpose)
	return nil
}

// Validate checks a submitted code against the newest outstanding challenge
// for (email, purpose). No outstanding code, mismatch, expiry and re-use all
// fail closed with false; a mismatch additionally bumps the row's attempts
// counter (kept even though the request fails — that is the audit trail).
func (s *OtpService) Validate(email, code string, purpose models.OtpPurpose) (bool, error) {
	return s.validate(s.repo, email, code, purpose)
}

// ValidateTx is Validate with the consume step executed on the caller's
// transaction, so OTP consumption commits together with the identity
// mutation. The attempts increment on mismatch deliberately runs outside
// the transaction and survives a rollback.
func (s *OtpService) ValidateTx(tx *sql.Tx, email, code string, purpose models.OtpPurpose) (bool, error) {
	return s.validate(s.repo.WithTx(tx), email, code, purpose)
}

func (s *OtpService) validate(consumer repositories.OtpRepository, email, code string, purpose models.OtpPurpose) (bool, error) {
	otp, err := s.repo.LatestActive(email, purpose)
	if err != nil {
		return false, err
	}
	if otp == nil {
		return false, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)); err != nil {
		if _, incErr := s.repo.IncrementAttempts(otp.ID); incErr != nil {
			return false, incErr
		}
		return false, nil
	}

	// Conditional update: of two concurrent submissions of the same code,
	// only one observes used=FALSE.
	consumed, err := consumer.Consume(otp.ID)
	if err != nil {
		return false, err
	}
	return consumed, nil
}
