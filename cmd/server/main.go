// Command server runs the cricket prediction API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/aimd54/cricket-predictor/internal/app"
	"github.com/aimd54/cricket-predictor/internal/cache"
	"github.com/aimd54/cricket-predictor/internal/config"
	"github.com/aimd54/cricket-predictor/internal/mattermost"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "could not load .env file: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	if cfg.Database.Postgres.AutoMigrate {
		if err := repository.Migrate(cfg.Database.Postgres.URL(), log.Component("migrate")); err != nil {
			return err
		}
	}

	db, err := repository.NewDB(&cfg.Database.Postgres, log.Component("database"))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	var redisCache *cache.Cache
	if cfg.Database.Redis.Host != "" {
		redisCache, err = cache.New(&cfg.Database.Redis)
		if err != nil {
			// The sweep throttle is optional; run without it.
			log.Warn().Err(err).Str("addr", cfg.Database.Redis.Addr()).Msg("Redis unavailable, sweep throttle disabled")
			redisCache = nil
		} else {
			defer func() { _ = redisCache.Close() }()
		}
	}

	var announcer *mattermost.Client
	if cfg.Mattermost.Enabled {
		announcer = mattermost.NewClient(&cfg.Mattermost, log.Component("mattermost"))
	}

	deps := app.Deps{
		Config:    cfg,
		DB:        db,
		Cache:     redisCache,
		Announcer: announcer,
		Clock:     clockwork.NewRealClock(),
		Log:       log,
	}
	router := app.NewRouter(deps)

	jobs := app.NewScheduler(deps)
	if err := jobs.Start(); err != nil {
		return err
	}
	defer jobs.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("environment", cfg.Server.Environment).
			Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
