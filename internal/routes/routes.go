package routes

import (
	"github.com/gin-gonic/gin"

	"jobsphere/internal/handlers"
	"jobsphere/internal/middleware"
	"jobsphere/internal/models"
	"jobsphere/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	tokens *services.TokenService,
	authHandler *handlers.AuthHandler,
	adminAuthHandler *handlers.AdminAuthHandler,
) *gin.Engine {

	// ---- public
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/verify-otp", authHandler.VerifyOtp)
		auth.POST("/login", authHandler.Login)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/verify-reset-otp", authHandler.VerifyResetOtp)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	adminAuth := r.Group("/api/v1/admin/auth")
	{
		adminAuth.POST("/login", adminAuthHandler.Login)
		adminAuth.POST("/verify-otp", adminAuthHandler.VerifyOtp)
		adminAuth.POST("/forgot-password", adminAuthHandler.ForgotPassword)
		adminAuth.POST("/verify-reset-otp", adminAuthHandler.VerifyResetOtp)
		adminAuth.POST("/reset-password", adminAuthHandler.ResetPassword)
		adminAuth.POST("/logout", adminAuthHandler.Logout)
	}

	// ---- protected
	me := r.Group("/api/v1/auth", middleware.AuthMiddleware(tokens, handlers.UserAccessCookie))
	{
		me.GET("/me", authHandler.Me)
	}

	admin := r.Group("/api/v1/admin",
		middleware.AuthMiddleware(tokens, handlers.AdminAccessCookie),
		middleware.RequireUserTypes(string(models.UserTypeAdmin)),
	)
	{
		admin.GET("/me", adminAuthHandler.Me)
	}

	return r
}
