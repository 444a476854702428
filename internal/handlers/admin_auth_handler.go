package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobsphere/internal/models"
	"jobsphere/internal/services"
)

type AdminAuthHandler struct {
	adminAuth services.AdminAuthService
	auth      services.AuthService
}

func NewAdminAuthHandler(adminAuth services.AdminAuthService, auth services.AuthService) *AdminAuthHandler {
	return &AdminAuthHandler{adminAuth: adminAuth, auth: auth}
}

// @Summary      Admin login (first factor)
// @Description  Checks credentials and emails an ADMIN_LOGIN code
// @Tags         AdminAuth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /api/v1/admin/auth/login [post]
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	otpToken, err := h.adminAuth.Login(req.Email, req.Password)
	if err != nil {
		log.Printf("[admin][login] rejected email=%q: %v", req.Email, err)
		abortWithAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Admin OTP sent to email",
		"otp_token": otpToken,
	})
}

// @Summary      Admin login (second factor)
// @Description  Validates the ADMIN_LOGIN code and issues the admin session
// @Tags         AdminAuth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/admin/auth/verify-otp [post]
func (h *AdminAuthHandler) VerifyOtp(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Otp   string `json:"otp" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.adminAuth.VerifyOtp(req.Email, req.Otp, sessionMeta(c))
	if err != nil {
		abortWithAuthError(c, err)
		return
	}

	SetAdminSessionCookies(c, res.AccessToken, res.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"token":         res.AccessToken,
		"refresh_token": res.RefreshToken,
		"email":         res.User.Email,
		"role":          models.UserTypeAdmin,
	})
}

// @Summary      Admin forgot password
// @Tags         AdminAuth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/admin/auth/forgot-password [post]
func (h *AdminAuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.adminAuth.ForgotPassword(req.Email); err != nil {
		abortWithAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Admin password reset OTP sent to email",
		"email":   req.Email,
	})
}

// @Summary      Admin verify reset OTP
// @Tags         AdminAuth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/admin/auth/verify-reset-otp [post]
func (h *AdminAuthHandler) VerifyResetOtp(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Otp   string `json:"otp" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resetToken, err := h.adminAuth.VerifyResetOtp(req.Email, req.Otp)
	if err != nil {
		abortWithAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reset_token": resetToken,
		"email":       req.Email,
		"message":     "OTP verified. You can now reset admin password.",
	})
}

// @Summary      Admin reset password with a reset ticket
// @Tags         AdminAuth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/admin/auth/reset-password [post]
func (h *AdminAuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		ResetToken      string `json:"reset_token" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=6"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// same purpose-scoped ticket as the user flow
	email, err := h.auth.ResetPasswordWithToken(req.ResetToken, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		abortWithAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Admin password reset successful",
		"email":   email,
	})
}

// @Summary      Admin logout
// @Tags         AdminAuth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/v1/admin/auth/logout [post]
func (h *AdminAuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	raw := ""
	if err := c.ShouldBindJSON(&req); err == nil {
		raw = req.RefreshToken
	}
	if raw == "" {
		if v, err := c.Cookie(AdminRefreshCookie); err == nil {
			raw = v
		}
	}
	if raw != "" {
		if err := h.auth.Logout(raw); err != nil {
			abortWithAuthError(c, err)
			return
		}
	}
	ClearAdminSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// @Summary      Current admin identity
// @Tags         AdminAuth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/admin/me [get]
func (h *AdminAuthHandler) Me(c *gin.Context) {
	email, userType := getEmailAndType(c)
	c.JSON(http.StatusOK, gin.H{"email": email, "userType": userType})
}
