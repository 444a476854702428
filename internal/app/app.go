package app

import (
	"database/sql"
	"fmt"
	"log"

	"jobsphere/internal/config"
	"jobsphere/internal/handlers"
	"jobsphere/internal/repositories"
	"jobsphere/internal/routes"
	"jobsphere/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "jobsphere/docs"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	otpRepo := repositories.NewOtpRepository(db)
	refreshRepo := repositories.NewRefreshTokenRepository(db)

	// === Services ===
	tokenService, err := services.NewTokenService(cfg.JWT.Secret)
	if err != nil {
		log.Fatal("token service: ", err)
	}
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
	)
	otpService := services.NewOtpService(otpRepo, emailService)
	refreshService := services.NewRefreshTokenService(refreshRepo)

	// nil when no bot token is configured
	alertService := services.NewTelegramAlertService(cfg.Telegram.BotToken, cfg.Telegram.ChatID)

	authService := services.NewAuthService(db, userRepo, otpService, tokenService, refreshService, alertService)
	adminAuthService := services.NewAdminAuthService(db, userRepo, otpService, tokenService, refreshService, alertService)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(authService)
	adminAuthHandler := handlers.NewAdminAuthHandler(adminAuthService, authService)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, tokenService, authHandler, adminAuthHandler)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server failed: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
