package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role-specific TTLs. The key is immutable after construction.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
	OtpTicketTTL    = 5 * time.Minute
	ResetTicketTTL  = 15 * time.Minute
)

const (
	PurposeOtpVerification = "OTP_VERIFICATION"
	PurposePasswordReset   = "PASSWORD_RESET"
)

// AccessClaims — long-session token presented on each authenticated request.
type AccessClaims struct {
	UserType string `json:"userType"`
	jwt.RegisteredClaims
}

// OtpTicketClaims — short-lived correlation handle issued between the
// credential step and the OTP step. Grants no privileges.
type OtpTicketClaims struct {
	UserType string `json:"userType"`
	Purpose  string `json:"purpose"`
	jwt.RegisteredClaims
}

// ResetTicketClaims — ticket issued after a successful PASSWORD_RESET OTP;
// the only operation it authorizes is the password replacement itself.
type ResetTicketClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type TokenService struct {
	key []byte
}

// NewTokenService fails fast on a weak key: HMAC-SHA256 wants at least
// 256 bits of entropy behind it.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 bytes, got %d", len(secret))
	}
	return &TokenService{key: []byte(secret)}, nil
}

func (s *TokenService) IssueAccessToken(email, userType string) (string, error) {
	claims := &AccessClaims{
		UserType:         userType,
		RegisteredClaims: registered(email, AccessTokenTTL),
	}
	return s.sign(claims)
}

func (s *TokenService) IssueOtpTicket(email, userType string) (string, error) {
	claims := &OtpTicketClaims{
		UserType:         userType,
		Purpose:          PurposeOtpVerification,
		RegisteredClaims: registered(email, OtpTicketTTL),
	}
	return s.sign(claims)
}

func (s *TokenService) IssueResetTicket(email string) (string, error) {
	claims := &ResetTicketClaims{
		Purpose:          PurposePasswordReset,
		RegisteredClaims: registered(email, ResetTicketTTL),
	}
	return s.sign(claims)
}

// accessProbe carries the purpose claim so ticket tokens can be told apart
// from real access tokens: tickets always have one, access tokens never do.
type accessProbe struct {
	Purpose string `json:"purpose"`
	AccessClaims
}

func (s *TokenService) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	probe := &accessProbe{}
	if err := s.parse(tokenStr, probe); err != nil {
		return nil, err
	}
	// OTP and reset tickets verify under the same key; reject them here so a
	// five-minute ticket can never serve as a session credential.
	if probe.Purpose != "" {
		return nil, ErrInvalidTokenPurpose
	}
	return &probe.AccessClaims, nil
}

func (s *TokenService) ParseOtpTicket(tokenStr string) (*OtpTicketClaims, error) {
	claims := &OtpTicketClaims{}
	if err := s.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != PurposeOtpVerification {
		return nil, ErrInvalidTokenPurpose
	}
	return claims, nil
}

func (s *TokenService) ParseResetTicket(tokenStr string) (*ResetTicketClaims, error) {
	claims := &ResetTicketClaims{}
	if err := s.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != PurposePasswordReset {
		return nil, ErrInvalidTokenPurpose
	}
	return claims, nil
}

func registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// parse rejects anything that is not a valid HS256 token signed with our
// key: malformed input, signature mismatch and expiry all map to
// ErrInvalidOrExpiredToken. No claim is trusted before the signature check.
func (s *TokenService) parse(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return ErrInvalidOrExpiredToken
	}
	return nil
}
