package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"gatherly/config"
	"gatherly/internal/adapters/auth"
	"gatherly/internal/adapters/cache"
	"gatherly/internal/adapters/email"
	"gatherly/internal/adapters/media"
	httpdelivery "gatherly/internal/delivery/http"
	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
	"gatherly/internal/repository/postgres"
	"gatherly/internal/services"
	"gatherly/migrations"
)

// @title Gatherly API
// @version 1.0
// @description Capacity-bounded event RSVP service.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		logger.Error("failed to reach database", "err", err)
		os.Exit(1)
	}
	if err := migrations.Apply(ctx, db); err != nil {
		cancel()
		logger.Error("failed to apply migrations", "err", err)
		os.Exit(1)
	}
	cancel()

	var eventCache domain.EventCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "err", err)
			os.Exit(1)
		}
		eventCache = cache.NewRedisEventCache(redis.NewClient(opts))
		logger.Info("event cache enabled")
	}

	var mediaStore domain.MediaStore
	if cfg.Media.Bucket != "" {
		mediaStore = media.NewS3Store(media.S3Config{
			Bucket:          cfg.Media.Bucket,
			Region:          cfg.Media.Region,
			AccessKeyID:     cfg.Media.AccessKeyID,
			SecretAccessKey: cfg.Media.SecretAccessKey,
		})
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.Region,
			AccessKeyID:     cfg.Email.AccessKeyID,
			SecretAccessKey: cfg.Email.SecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	attendanceRepo := postgres.NewAttendanceRepository(db)

	reservationService := services.NewReservationService(eventRepo, attendanceRepo, eventCache, mailer, logger)
	eventService := services.NewEventService(eventRepo, mediaStore, eventCache, logger)
	queryService := services.NewEventQueryService(eventRepo, attendanceRepo, eventCache, logger)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	mux := httpdelivery.NewRouter(
		verifier,
		controllers.NewHealthController(logger, db),
		controllers.NewEventController(logger, eventService, queryService),
		controllers.NewAttendanceController(logger, reservationService, queryService),
	)

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
