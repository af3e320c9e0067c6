package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"anemo-backend/internal/agent"
	"anemo-backend/internal/analysis"
	"anemo-backend/internal/chat"
	"anemo-backend/internal/clinic"
	"anemo-backend/internal/config"
	"anemo-backend/internal/interview"
	"anemo-backend/internal/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "anemo",
		Short: "Anemia screening API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cfg, newLogger(cfg))
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run report history migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrate.Migrate) error {
				if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("migration up failed: %w", err)
				}
				fmt.Println("Migrations applied successfully.")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrate.Migrate) error {
				if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("migration down failed: %w", err)
				}
				fmt.Println("Rolled back one migration.")
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(fn func(m *migrate.Migrate) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.HasDatabase() {
		return errors.New("DATABASE_URL is required for migrations")
	}

	m, err := migrate.New(cfg.MigrationsPath, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration init failed: %w", err)
	}
	defer m.Close()

	return fn(m)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.LogPretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY is not set, model calls will fail")
	}

	// Clients
	ai := agent.NewGeminiClient(cfg.GeminiAPIKey,
		agent.WithBaseURL(cfg.GeminiBaseURL),
		agent.WithModel(cfg.GeminiModel),
		agent.WithTimeout(cfg.ModelTimeout),
	)

	// Report history
	repo, closeDB, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	// Services
	api := server.NewWebAPI(logger, server.Config{
		Addr:            ":" + cfg.Port,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Analysis:  analysis.NewService(ai),
			Interview: interview.NewService(ai, repo, cfg.InterviewMaxTurns),
			Chat:      chat.NewService(ai),
			Clinic:    clinic.NewService(ai, clinic.DefaultDirectory()),
		},
	})

	if err := api.Start(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// openRepository connects to Postgres and applies migrations when a
// database is configured; otherwise history lives in memory.
func openRepository(cfg *config.Config, logger zerolog.Logger) (interview.Repository, func(), error) {
	if !cfg.HasDatabase() {
		logger.Warn().Msg("DATABASE_URL is not set, report history is kept in memory")
		return interview.NewMemoryRepository(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info().Msg("connected to database")

	m, err := migrate.New(cfg.MigrationsPath, cfg.DatabaseURL)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migration init failed: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, nil, fmt.Errorf("migration up failed: %w", err)
	}
	logger.Info().Msg("migrations applied")

	return interview.NewRepository(db), func() { db.Close() }, nil
}
