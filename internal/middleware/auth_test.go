package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"jobsphere/internal/middleware"
	"jobsphere/internal/services"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newProtectedRouter(t *testing.T) (*gin.Engine, *services.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := services.NewTokenService(testSecret)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", middleware.AuthMiddleware(tokens, "access_token"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"email":     c.GetString("email"),
			"user_type": c.GetString("user_type"),
		})
	})
	return r, tokens
}

func TestAuthMiddlewareBearerHeader(t *testing.T) {
	r, tokens := newProtectedRouter(t)

	access, err := tokens.IssueAccessToken("user@example.com", "SEEKER")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "user@example.com")
	require.Contains(t, w.Body.String(), "SEEKER")
}

func TestAuthMiddlewareCookieFallback(t *testing.T) {
	r, tokens := newProtectedRouter(t)

	access, err := tokens.IssueAccessToken("user@example.com", "EMPLOYER")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: access})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "EMPLOYER")
}

func TestAuthMiddlewareRejects(t *testing.T) {
	r, tokens := newProtectedRouter(t)

	// no credentials
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// garbage token
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// an OTP ticket is not a session credential
	ticket, err := tokens.IssueOtpTicket("user@example.com", "SEEKER")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+ticket)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// a valid signature with an unknown user type is still rejected
	stray, err := tokens.IssueAccessToken("user@example.com", "SUPERUSER")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+stray)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
