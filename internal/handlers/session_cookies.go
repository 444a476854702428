package handlers

import (
	"github.com/gin-gonic/gin"

	"jobsphere/internal/services"
)

// Cookie names and paths are disjoint between user and admin scopes, so a
// user session can never be read where an admin session is expected.
const (
	UserAccessCookie   = "access_token"
	UserRefreshCookie  = "refresh_token"
	AdminAccessCookie  = "admin_access_token"
	AdminRefreshCookie = "admin_refresh_token"

	userAccessPath   = "/"
	userRefreshPath  = "/api/v1/auth/refresh"
	adminAccessPath  = "/api/v1/admin"
	adminRefreshPath = "/api/v1/admin/auth/refresh"
)

// SetUserSessionCookies maps issued tokens onto httpOnly cookies with
// maxAge equal to each token's TTL. An empty refresh token sets the access
// cookie only.
func SetUserSessionCookies(c *gin.Context, accessToken, refreshToken string) {
	setCookie(c, UserAccessCookie, accessToken, userAccessPath, int(services.AccessTokenTTL.Seconds()))
	if refreshToken != "" {
		setCookie(c, UserRefreshCookie, refreshToken, userRefreshPath, int(services.RefreshTokenTTL.Seconds()))
	}
}

func SetAdminSessionCookies(c *gin.Context, accessToken, refreshToken string) {
	setCookie(c, AdminAccessCookie, accessToken, adminAccessPath, int(services.AccessTokenTTL.Seconds()))
	if refreshToken != "" {
		setCookie(c, AdminRefreshCookie, refreshToken, adminRefreshPath, int(services.RefreshTokenTTL.Seconds()))
	}
}

func ClearUserSessionCookies(c *gin.Context) {
	clearCookie(c, UserAccessCookie, userAccessPath)
	clearCookie(c, UserRefreshCookie, userRefreshPath)
}

func ClearAdminSessionCookies(c *gin.Context) {
	clearCookie(c, AdminAccessCookie, adminAccessPath)
	clearCookie(c, AdminRefreshCookie, adminRefreshPath)
}

func setCookie(c *gin.Context, name, value, path string, maxAge int) {
	c.SetCookie(name, value, maxAge, path, "", false, true)
}

func clearCookie(c *gin.Context, name, path string) {
	// MaxAge < 0 is Go's "delete immediately"
	c.SetCookie(name, "", -1, path, "", false, true)
}
