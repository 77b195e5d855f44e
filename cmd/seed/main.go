// Command seed loads users, tournaments and matches from a YAML fixture file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/aimd54/cricket-predictor/internal/config"
	"github.com/aimd54/cricket-predictor/internal/fixtures"
	"github.com/aimd54/cricket-predictor/internal/repository"
	"github.com/aimd54/cricket-predictor/internal/service/tournaments"
	"github.com/aimd54/cricket-predictor/internal/service/users"
	"github.com/aimd54/cricket-predictor/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	file := flag.String("file", "", "path to the fixture file")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -file fixtures.yaml [-config config.yaml]")
		os.Exit(2)
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *file, log); err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Seeding failed")
	}
}

func run(ctx context.Context, cfg *config.Config, path string, log *logger.Logger) error {
	f, err := fixtures.LoadFile(path)
	if err != nil {
		return err
	}

	if cfg.Database.Postgres.AutoMigrate {
		if err := repository.Migrate(cfg.Database.Postgres.URL(), log.Component("migrate")); err != nil {
			return err
		}
	}

	db, err := repository.NewDB(&cfg.Database.Postgres, log.Component("database"))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	userSvc := users.NewService(repository.NewUserRepository(db), cfg.Bootstrap, log)
	tournamentSvc := tournaments.NewService(repository.NewTournamentRepository(db), repository.NewMatchRepository(db), log)

	summary, err := fixtures.Apply(ctx, f, userSvc, tournamentSvc, log)
	if err != nil {
		return err
	}

	log.Info().
		Int("users", summary.Users).
		Int("skipped_users", summary.SkippedUsers).
		Int("tournaments", summary.Tournaments).
		Int("matches", summary.Matches).
		Msg("Seeding complete")
	return nil
}
