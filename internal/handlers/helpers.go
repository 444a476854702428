package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobsphere/internal/services"
)

// translate a service error to an HTTP status + safe message. Internal
// errors never leak details to the client.
func authErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, services.ErrEmailTaken.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, services.ErrInvalidCredentials.Error()
	case errors.Is(err, services.ErrAccountLocked):
		return http.StatusLocked, services.ErrAccountLocked.Error()
	case errors.Is(err, services.ErrEmailNotVerified):
		return http.StatusForbidden, services.ErrEmailNotVerified.Error()
	case errors.Is(err, services.ErrInvalidOtp):
		return http.StatusBadRequest, services.ErrInvalidOtp.Error()
	case errors.Is(err, services.ErrInvalidTokenPurpose):
		return http.StatusUnauthorized, services.ErrInvalidTokenPurpose.Error()
	case errors.Is(err, services.ErrInvalidOrExpiredToken):
		return http.StatusUnauthorized, services.ErrInvalidOrExpiredToken.Error()
	case errors.Is(err, services.ErrPasswordMismatch):
		return http.StatusBadRequest, services.ErrPasswordMismatch.Error()
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, services.ErrUserNotFound.Error()
	case errors.Is(err, services.ErrNotificationFailed):
		return http.StatusBadGateway, services.ErrNotificationFailed.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

func abortWithAuthError(c *gin.Context, err error) {
	status, msg := authErrorStatus(err)
	c.JSON(status, gin.H{"error": msg})
}

func sessionMeta(c *gin.Context) services.SessionMeta {
	return services.SessionMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func getEmailAndType(c *gin.Context) (email, userType string) {
	if v, ok := c.Get("email"); ok {
		email, _ = v.(string)
	}
	if v, ok := c.Get("user_type"); ok {
		userType, _ = v.(string)
	}
	return
}
