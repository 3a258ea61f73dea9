package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photoshare-backend/internal/config"
	"photoshare-backend/internal/handlers"
	"photoshare-backend/internal/middleware"
	"photoshare-backend/internal/repository"
	"photoshare-backend/internal/services"
	"photoshare-backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := repository.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	if err := repository.Migrate(cfg.Database.MigrateURL()); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	imageRepo := repository.NewImageRepository(db)
	shareRepo := repository.NewShareRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	assets, uploads, err := setupStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up image storage")
	}

	// Realtime fan-out
	wsHub := services.NewWSHub()
	var broadcaster services.Broadcaster = wsHub
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		relay := services.NewRedisRelay(client, cfg.Redis.Channel, wsHub)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("Notification relay stopped")
			}
		}()
		broadcaster = relay
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis notification relay enabled")
	}

	var pusher services.Pusher
	if cfg.APNs.KeyPath != "" {
		apns, err := services.NewAPNsPusher(services.APNsConfig{
			KeyPath:    cfg.APNs.KeyPath,
			KeyID:      cfg.APNs.KeyID,
			TeamID:     cfg.APNs.TeamID,
			Topic:      cfg.APNs.Topic,
			Production: cfg.APNs.Production,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs client")
		}
		pusher = apns
	}

	// Initialize services
	access := services.NewAccessResolver(imageRepo, shareRepo, groupRepo)
	views := services.NewViewAssembler(userRepo, imageRepo, shareRepo, groupRepo)
	dispatcher := services.NewDispatcher(notificationRepo, userRepo, groupRepo, views, broadcaster, pusher)

	userService := services.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL())
	imageService := services.NewImageService(imageRepo, shareRepo, userRepo, groupRepo, access, views, dispatcher, assets, cfg.Upload.MaxBytes)
	friendService := services.NewFriendService(friendshipRepo, userRepo, views, dispatcher)
	groupService := services.NewGroupService(groupRepo, userRepo, imageRepo, access, views, dispatcher)
	notificationService := services.NewNotificationService(notificationRepo, views)

	authLimiter := middleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst)
	authLimiter.StartCleanup(time.Minute, ctx.Done())

	// Setup router
	router := handlers.NewRouter(handlers.Handlers{
		Auth:          handlers.NewAuthHandler(userService, cfg.Session.CookieName, cfg.Session.Secure),
		Users:         handlers.NewUserHandler(userService),
		Images:        handlers.NewImageHandler(imageService, cfg.Upload.MaxBytes),
		Friends:       handlers.NewFriendHandler(friendService),
		Groups:        handlers.NewGroupHandler(groupService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		WebSocket:     handlers.NewWebSocketHandler(wsHub, userService, cfg.Session.CookieName, cfg.Server.CORSOrigins),
	}, handlers.RouterConfig{
		Sessions:    userService,
		CookieName:  cfg.Session.CookieName,
		CORSOrigins: cfg.Server.CORSOrigins,
		AuthLimiter: authLimiter,
		Health:      handlers.HealthHandler(db),
		Uploads:     uploads,
		TrustProxy:  cfg.Server.TrustProxy,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("storage", cfg.Storage.Driver).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	wsHub.CloseAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config.yaml"
}

// setupStorage returns the image store and, for local storage, the handler serving its files
func setupStorage(ctx context.Context, cfg *config.Config) (storage.Store, http.Handler, error) {
	if cfg.Storage.Driver == config.StorageS3 {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:    cfg.AWS.Region,
			Bucket:    cfg.AWS.S3Bucket,
			AccessKey: cfg.AWS.AccessKey,
			SecretKey: cfg.AWS.SecretKey,
			Endpoint:  cfg.AWS.Endpoint,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}

	store, err := storage.NewLocalStore(cfg.Storage.LocalDir)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Handler(), nil
}

// setupLogger configures zerolog logger
func setupLogger(level, format string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
