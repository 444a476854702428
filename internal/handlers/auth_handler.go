package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobsphere/internal/models"
	"jobsphere/internal/services"
)

type AuthHandler struct {
	auth services.AuthService
}

func NewAuthHandler(auth services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// @Summary      Register a new account
// @Description  Creates an unverified account and emails a verification code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        register  body      models.RegisterRequest  true  "Registration data"
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  map[string]string
// @Failure      409       {object}  map[string]string
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.auth.Register(req.Email, req.Password, models.UserType(req.UserType))
	if err != nil {
		log.Printf("[auth][register] failed email=%q: %v", req.Email, err)
		abortWithAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Check email for OTP",
		"user_id":   res.UserID,
		"otp_token": res.OtpToken,
	})
}

// @Summary      Verify registration OTP
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/auth/verify-otp [post]
func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Otp   string `json:"otp" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.auth.VerifyEmail(req.Email, req.Otp, sessionMeta(c))
	if err != nil {
		abortWithAuthError(c, err)
		return
	}

	SetUserSessionCookies(c, res.AccessToken, res.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"token":         res.AccessToken,
		"refresh_token": res.RefreshToken,
		"email":         res.User.Email,
		"userType":      res.User.UserType,
	})
}

// @Summary      Log in
// @Description  Password login for verified accounts; no OTP step
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)
	log.Printf("[auth][login] attempt email=%q", email)

	res, err := h.auth.Login(email, req.Password)
	if err != nil {
		log.Printf("[auth][login] rejected email=%q: %v", email, err)
		abortWithAuthError(c, err)
		return
	}

	SetUserSessionCookies(c, res.AccessToken, "")
	c.JSON(http.StatusOK, gin.H{
		"token":    res.AccessToken,
		"email":    res.User.Email,
		"userType": res.User.UserType,
	})
}

// @Summary      Request a password reset code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.ForgotPassword(req.Email); err != nil {
		abortWithAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset OTP sent to email",
		"email":   req.Email,
	})
}

// @Summary      Verify password reset OTP
// @Description  Exchanges a valid reset code for a short-lived reset ticket
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/auth/verify-reset-otp [post]
func (h *AuthHandler) VerifyResetOtp(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Otp   string `json:"otp" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resetToken, err := h.auth.VerifyResetOtp(req.Email, req.Otp)
	if err != nil {
		abortWithAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reset_token": resetToken,
		"email":       req.Email,
		"message":     "OTP verified. You can now reset password.",
	})
}

// @Summary      Reset password with a reset ticket
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		ResetToken      string `json:"reset_token" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=6"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email, err := h.auth.ResetPasswordWithToken(req.ResetToken, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		abortWithAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successful",
		"email":   email,
	})
}

// @Summary      Rotate the refresh token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw := h.refreshTokenFromRequest(c, UserRefreshCookie)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token"})
		return
	}

	res, err := h.auth.Refresh(raw, sessionMeta(c))
	if err != nil {
		abortWithAuthError(c, err)
		return
	}

	SetUserSessionCookies(c, res.AccessToken, res.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"token":         res.AccessToken,
		"refresh_token": res.RefreshToken,
	})
}

// @Summary      Log out
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if raw := h.refreshTokenFromRequest(c, UserRefreshCookie); raw != "" {
		if err := h.auth.Logout(raw); err != nil {
			abortWithAuthError(c, err)
			return
		}
	}
	ClearUserSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// @Summary      Current identity
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	email, userType := getEmailAndType(c)
	c.JSON(http.StatusOK, gin.H{"email": email, "userType": userType})
}

// refresh token arrives either in the JSON body or in the scoped cookie
func (h *AuthHandler) refreshTokenFromRequest(c *gin.Context, cookieName string) string {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err == nil && strings.TrimSpace(req.RefreshToken) != "" {
		return strings.TrimSpace(req.RefreshToken)
	}
	if v, err := c.Cookie(cookieName); err == nil {
		return v
	}
	return ""
}
