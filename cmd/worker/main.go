package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/carelink/carelink-api/internal/config"
	"github.com/carelink/carelink-api/internal/repository/postgres"
	"github.com/carelink/carelink-api/internal/worker"
	"github.com/carelink/carelink-api/pkg/logger"
	messagingredis "github.com/carelink/carelink-api/pkg/messaging/redis"
	"github.com/carelink/carelink-api/pkg/metrics"
)

// workerConfig is read from the environment; the worker runs headless
// and ships without a config file.
type workerConfig struct {
	DatabaseHost     string        `envconfig:"DB_HOST" default:"localhost"`
	DatabasePort     int           `envconfig:"DB_PORT" default:"5432"`
	DatabaseUser     string        `envconfig:"DB_USER" default:"postgres"`
	DatabasePassword string        `envconfig:"DB_PASSWORD" required:"true"`
	DatabaseName     string        `envconfig:"DB_NAME" default:"carelink"`
	DatabaseSSLMode  string        `envconfig:"DB_SSLMODE" default:"disable"`
	RedisURL         string        `envconfig:"REDIS_URL" default:"redis://localhost:6379"`
	BatchSize        int           `envconfig:"REMINDER_BATCH_SIZE" default:"100"`
	PollInterval     time.Duration `envconfig:"REMINDER_POLL_INTERVAL" default:"30s"`
}

func main() {
	var cfg workerConfig
	if err := envconfig.Process("carelink", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Name:     cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	brokerLogger := log.Logger
	broker, err := messagingredis.NewRedisBroker(messagingredis.Config{URL: cfg.RedisURL}, &brokerLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	dispatcher := worker.NewReminderDispatcher(
		postgres.NewAppointmentRepository(db),
		broker,
		worker.ReminderDispatcherConfig{
			BatchSize:    cfg.BatchSize,
			PollInterval: cfg.PollInterval,
		},
		logger.NewLogger(nil),
		metrics.NewMetrics("carelink_worker"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go dispatcher.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")
	cancel()
}
