package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/mkovalchuk/contacts-api/docs" // Swagger docs (generated)
	"github.com/mkovalchuk/contacts-api/internal/auth"
	"github.com/mkovalchuk/contacts-api/internal/config"
	"github.com/mkovalchuk/contacts-api/internal/contact"
	"github.com/mkovalchuk/contacts-api/internal/database"
	"github.com/mkovalchuk/contacts-api/internal/email"
	httpServer "github.com/mkovalchuk/contacts-api/internal/http"
	"github.com/mkovalchuk/contacts-api/internal/logging"
	"github.com/mkovalchuk/contacts-api/internal/ratelimit"
	"github.com/mkovalchuk/contacts-api/internal/storage"
	"github.com/mkovalchuk/contacts-api/internal/token"
	"github.com/mkovalchuk/contacts-api/internal/user"
)

// @title           Contacts API
// @version         1.0
// @description     Contacts management backend with token authentication, password reset and avatar upload.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Repositories and caches
	userRepo := user.NewRepository(db)
	userCache := user.NewCache(redisClient)
	contactRepo := contact.NewRepository(db)

	rateLimiter := ratelimit.NewLimiter(redisClient)

	tokenService, err := initTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Outbound mail: SMTP sender behind a queue, drained on shutdown
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.PublicURL,
	)
	mailDispatcher := email.NewDispatcher(emailService, logger, 64)
	defer mailDispatcher.Close()

	uploader, err := storage.NewS3Uploader(context.Background(), cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 uploader: %w", err)
	}

	authService := auth.NewService(
		userRepo,
		tokenService,
		mailDispatcher,
		uploader,
		userCache,
		logger,
		cfg.Auth.ResetTokenDuration,
	)

	authHandler := auth.NewHandler(authService, rateLimiter, logger)
	authMiddleware := auth.NewMiddleware(tokenService)
	contactHandler := contact.NewHandler(contactRepo, logger)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, contactHandler, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		cfg.Server.ShutdownTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// initTokenService picks the configured token backend
func initTokenService(cfg config.AuthConfig) (token.Service, error) {
	switch cfg.TokenBackend {
	case config.TokenBackendPaseto:
		return token.NewPasetoService(cfg.PasetoKey, cfg.AccessTokenDuration, cfg.RefreshTokenDuration)
	default:
		return token.NewJWTService(cfg.SecretKey, cfg.AccessTokenDuration, cfg.RefreshTokenDuration)
	}
}
