package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/nickbelling/FlexFlow/internal/app"
	"github.com/nickbelling/FlexFlow/internal/config"
	"github.com/nickbelling/FlexFlow/internal/controllers"
	"github.com/nickbelling/FlexFlow/internal/middleware"
	"github.com/nickbelling/FlexFlow/internal/repositories"
	"github.com/nickbelling/FlexFlow/internal/services"
	"github.com/nickbelling/FlexFlow/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	userRepo := repositories.NewUserRepository(application.DB)
	loginRepo := repositories.NewLoginAttemptsRepository(application.DB)
	blacklistRepo := repositories.NewBlacklistRepository(application.DB)

	if err := application.Migrate(context.Background()); err != nil {
		utils.Logger.Fatal("Failed to migrate database schema:", err)
	}
	if err := application.Seed(context.Background(), userRepo); err != nil {
		utils.Logger.Fatal("Failed to seed database:", err)
	}

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	var tokenBlacklist services.TokenBlacklist
	switch cfg.BlacklistStore {
	case config.BlacklistStorePostgres:
		tokenBlacklist = services.NewPostgresTokenBlacklist(blacklistRepo, cfg.BearerLifetime)
	default:
		tokenBlacklist = services.NewMemoryTokenBlacklist(cfg.BearerLifetime)
	}
	utils.Logger.Infof("Using %s token blacklist store", cfg.BlacklistStore)

	currentToken := services.NewCurrentTokenService(tokenBlacklist)
	identity := services.NewIdentityProvider(userRepo)
	jwtService := services.NewJWTService(cfg)
	authService := services.NewAuthService(identity, loginRepo, userRepo, jwtService, cfg)
	cleanupService := services.NewBlacklistCleanupService(blacklistRepo, loginRepo)

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	authController := controllers.NewAuthController(authService, currentToken)
	healthController := controllers.NewHealthController(application)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()

	// Every request, authenticated or not, is rejected if it carries a
	// blacklisted bearer token.
	router.Use(middleware.BlacklistMiddleware(currentToken))

	// Health
	router.HandleFunc("/health", healthController.HealthCheckHandler).Methods("GET")

	// /api/auth
	apiRouter := router.PathPrefix("/api").Subrouter()
	authRouter := apiRouter.PathPrefix("/auth").Subrouter()

	authRouter.HandleFunc("/login", authController.Login).Methods("POST")

	// Protected endpoints require a valid token
	protected := authRouter.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg))
	protected.HandleFunc("/logout", authController.Logout).Methods("POST")
	protected.HandleFunc("/changepassword", authController.ChangePassword).Methods("POST")

	//----------------------------------------------------------------------
	// Setup daily cleanup via cron
	//----------------------------------------------------------------------
	c := cron.New()
	if _, schErr := c.AddFunc("0 3 * * *", func() {
		if e := cleanupService.CleanupDaily(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled blacklist cleanup failed")
		}
	}); schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule blacklist cleanup job")
	}
	c.Start()

	co := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AppUrl},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
