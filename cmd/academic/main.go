// Package main is the entry point of the academic records service.
//
// The process connects to PostgreSQL, applies migrations, wires the
// command and query handlers, runs the background scheduler and serves the
// health endpoints until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epis-academic/academic-records/config"
	"github.com/epis-academic/academic-records/internal/application"
	"github.com/epis-academic/academic-records/internal/application/command"
	"github.com/epis-academic/academic-records/internal/domain/sysconfig"
	"github.com/epis-academic/academic-records/internal/infrastructure/messaging"
	"github.com/epis-academic/academic-records/internal/infrastructure/persistence/postgres"
	"github.com/epis-academic/academic-records/internal/infrastructure/persistence/redis"
	"github.com/epis-academic/academic-records/internal/infrastructure/scheduler"
	"github.com/epis-academic/academic-records/internal/infrastructure/scheduler/jobs"
	httpiface "github.com/epis-academic/academic-records/internal/interface/http"
	"github.com/epis-academic/academic-records/pkg/retry"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting academic records service",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. DATABASE
	// ─────────────────────────────────────────────────────────────────────────
	startup := retry.StartupRetrier(cfg.Database.ConnectAttempts, func(attempt int, err error, delay time.Duration) {
		log.Warn("database not ready, retrying", "attempt", attempt, "delay", delay.String(), "error", err)
	})

	var dbConn *postgres.Connection
	err = startup.Do(ctx, func(ctx context.Context) error {
		conn, err := connectDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		dbConn = conn
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		dbConn.Close()
	}()
	log.Info("database connection established")

	if cfg.Database.RunMigrations {
		migrator := postgres.NewMigrator(dbConn)
		if err := startup.Do(ctx, migrator.Migrate); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. EVENT BUS AND SETTINGS
	// ─────────────────────────────────────────────────────────────────────────
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busConfig)
	defer func() {
		_ = eventBus.Close()
	}()

	var settings sysconfig.Store = postgres.NewSystemConfigRepository(dbConn)

	health := httpiface.NewHealthChecker(cfg.App.Version)
	health.AddCheck("postgres", httpiface.PingCheck(dbConn))

	if !cfg.Redis.Disabled {
		cache, err := redis.NewCache(redisConfig(cfg.Redis))
		if err != nil {
			log.Warn("redis unavailable, settings cache and event relay disabled", "error", err)
		} else {
			defer cache.Close()
			settings = redis.NewSettingsStore(cache, settings, log)

			relay := messaging.NewRedisRelay(cache, redis.PubSubChannel, cfg.App.InstanceID, log)
			if err := eventBus.SubscribeAll(relay.Handle); err != nil {
				return fmt.Errorf("failed to subscribe event relay: %w", err)
			}
			health.AddCheck("redis", httpiface.PingCheck(cache))
			log.Info("redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. USE CASES
	// ─────────────────────────────────────────────────────────────────────────
	handlers := application.NewHandlers(application.Dependencies{
		TxManager:      postgres.NewTxManager(dbConn, log),
		Repositories:   postgres.NewRepositories(dbConn),
		Settings:       settings,
		EventPublisher: eventBus,
		ReservationPolicy: command.ReservationPolicy{
			MaxPerWeek:   cfg.Academic.ReservationMaxPerWeek,
			MaxDaysAhead: cfg.Academic.ReservationWindowDays,
		},
		Logger: log,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 5. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{Logger: log, Timezone: time.UTC})
	if cfg.Academic.SchedulerEnabled {
		job := jobs.NewCompleteReservationsJob(handlers.Commands.CompleteElapsedReservations, log)
		daily := scheduler.NewDailySchedule(cfg.Academic.CompleteReservationsHour, cfg.Academic.CompleteReservationsMinute)
		if err := sched.Register(job, daily); err != nil {
			return fmt.Errorf("failed to register job: %w", err)
		}
		// Catch up on reservations that elapsed while the service was down.
		if _, err := sched.RunNow(ctx, job.Name()); err != nil {
			log.Warn("initial reservation completion failed", "error", err)
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			_ = sched.Stop()
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. HTTP
	// ─────────────────────────────────────────────────────────────────────────
	var serverErr <-chan error
	var server *httpiface.Server
	if cfg.HTTP.Enabled {
		server = httpiface.NewServer(httpiface.Config{
			Host:           cfg.HTTP.Host,
			Port:           cfg.HTTP.Port,
			ReadTimeout:    cfg.HTTP.ReadTimeout,
			WriteTimeout:   cfg.HTTP.WriteTimeout,
			IdleTimeout:    60 * time.Second,
			RequestTimeout: cfg.HTTP.RequestTimeout,
		}, httpiface.Dependencies{
			Health: health,
			Jobs:   sched,
			Events: eventBus,
			Logger: log,
		})
		serverErr = server.StartAsync()
	}

	log.Info("academic records service is running")

	// ─────────────────────────────────────────────────────────────────────────
	// 7. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		log.Info("received shutdown signal")
	case err, ok := <-serverErr:
		if ok && err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if server != nil {
		httpCtx, httpCancel := context.WithTimeout(shutdownCtx, cfg.HTTP.ShutdownTimeout)
		defer httpCancel()
		if err := server.Shutdown(httpCtx); err != nil {
			log.Error("http shutdown failed", "error", err)
		}
	}

	log.Info("shutdown completed")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*postgres.Connection, error) {
	if cfg.URL != "" {
		return postgres.NewConnectionFromURL(ctx, cfg.URL)
	}

	pgCfg := postgres.DefaultConfig()
	pgCfg.Host = cfg.Host
	pgCfg.Port = cfg.Port
	pgCfg.Database = cfg.Name
	pgCfg.User = cfg.User
	pgCfg.Password = cfg.Password
	pgCfg.SSLMode = cfg.SSLMode
	pgCfg.MaxConns = int32(cfg.MaxConns)
	pgCfg.MinConns = int32(cfg.MinConns)
	pgCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	return postgres.NewConnection(ctx, pgCfg)
}

func redisConfig(cfg config.RedisConfig) redis.Config {
	rc := redis.DefaultConfig()
	rc.Host = cfg.Host
	rc.Port = cfg.Port
	rc.Password = cfg.Password
	rc.DB = cfg.DB
	rc.PoolSize = cfg.PoolSize
	rc.MinIdleConns = cfg.MinIdleConns
	rc.DialTimeout = cfg.DialTimeout
	rc.ReadTimeout = cfg.ReadTimeout
	rc.WriteTimeout = cfg.WriteTimeout
	return rc
}

func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch cfg.Log.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
