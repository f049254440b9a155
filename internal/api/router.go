package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clipstream/accounts-api/internal/api/handler"
	"github.com/clipstream/accounts-api/internal/api/middleware"
	"github.com/clipstream/accounts-api/internal/core/ports"
	"github.com/clipstream/accounts-api/internal/core/service"
	"github.com/clipstream/accounts-api/internal/infrastructure/config"
	mongodb "github.com/clipstream/accounts-api/internal/infrastructure/db/mongo"
	redisdb "github.com/clipstream/accounts-api/internal/infrastructure/db/redis"
)

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, media ports.MediaStore, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	userCache := redisdb.NewUserCache(rdb, cfg.Auth.AccessTokenTTL)
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	issuer := service.NewJWTIssuer(
		cfg.Auth.AccessTokenSecret, cfg.Auth.RefreshTokenSecret,
		cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL,
	)

	sessions := service.NewSessionService(userRepo, hasher, issuer, userCache, log)
	profiles := service.NewProfileService(userRepo, hasher, media, userCache, log)

	authHandler := handler.NewAuthHandler(sessions, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	userHandler := handler.NewUserHandler(profiles)
	requireAuth := middleware.Auth(cfg.Auth.AccessTokenSecret, userRepo, userCache)

	// --- User routes ---
	users := e.Group("/api/v1/users")
	users.POST("/register", userHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/refresh-token", authHandler.Refresh)
	users.POST("/logout", authHandler.Logout, requireAuth)
	users.POST("/change-password", authHandler.ChangePassword, requireAuth)
	users.GET("/current-user", userHandler.CurrentUser, requireAuth)
	users.PATCH("/update-account", userHandler.UpdateProfile, requireAuth)
	users.PATCH("/avatar", userHandler.UpdateAvatar, requireAuth)
	users.PATCH("/cover-image", userHandler.UpdateCoverImage, requireAuth)

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	return e
}
