package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/carelink/carelink-api/internal/config"
	"github.com/carelink/carelink-api/internal/email"
	"github.com/carelink/carelink-api/internal/handler"
	accountHandler "github.com/carelink/carelink-api/internal/handler/account"
	appointmentHandler "github.com/carelink/carelink-api/internal/handler/appointment"
	healthrecordHandler "github.com/carelink/carelink-api/internal/handler/healthrecord"
	hospitalHandler "github.com/carelink/carelink-api/internal/handler/hospital"
	"github.com/carelink/carelink-api/internal/middleware"
	"github.com/carelink/carelink-api/internal/repository/postgres"
	"github.com/carelink/carelink-api/internal/router"
	accountService "github.com/carelink/carelink-api/internal/service/account"
	healthrecordService "github.com/carelink/carelink-api/internal/service/healthrecord"
	hospitalService "github.com/carelink/carelink-api/internal/service/hospital"
	notificationService "github.com/carelink/carelink-api/internal/service/notification"
	schedulingService "github.com/carelink/carelink-api/internal/service/scheduling"
	"github.com/carelink/carelink-api/pkg/auth"
	messagingredis "github.com/carelink/carelink-api/pkg/messaging/redis"
	"github.com/carelink/carelink-api/pkg/metrics"
	"github.com/carelink/carelink-api/pkg/security"
	"github.com/carelink/carelink-api/pkg/validator"
)

func main() {
	validator.RegisterCustomValidators()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("carelink")

	brokerLogger := log.Logger
	broker, err := messagingredis.NewRedisBroker(messagingredis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &brokerLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	hospitalRepo := postgres.NewHospitalRepository(db)
	userRepo := postgres.NewUserRepository(db)
	healthRecordRepo := postgres.NewHealthRecordRepository(db)

	// Services
	emailSvc := email.NewSMTPService(cfg.SMTP)
	notificationSvc := notificationService.NewService(emailSvc, broker, m, log.Logger)
	schedulingSvc := schedulingService.NewService(
		appointmentRepo, hospitalRepo, notificationSvc, m, cfg.Scheduling, log.Logger)
	hospitalSvc := hospitalService.NewService(hospitalRepo, m)
	hasher := security.NewBcryptHasher(0)
	accountSvc := accountService.NewService(userRepo, appointmentRepo, healthRecordRepo, hasher, log.Logger)
	healthRecordSvc := healthrecordService.NewService(healthRecordRepo)

	// Middleware and handlers
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.NewRouter(authMiddleware, healthH, router.Config{
		RateLimit:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:      cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     middleware.DefaultCORSConfig(),
		MetricsPrefix:  "carelink",
	})

	r.Setup(
		[]router.Handler{
			hospitalHandler.NewHandler(hospitalSvc, schedulingSvc),
		},
		[]router.Handler{
			appointmentHandler.NewHandler(schedulingSvc),
			accountHandler.NewHandler(accountSvc),
			healthrecordHandler.NewHandler(healthRecordSvc),
		},
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
