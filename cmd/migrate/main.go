package main

import (
	"database/sql"
	"fmt"
	"os"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/innoviahub/meeting-transcription/internal/infrastructure/database"
	"github.com/innoviahub/meeting-transcription/pkg/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the meeting transcription database schema",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newUpCmd())
	rootCmd.AddCommand(newDownCmd())
	rootCmd.AddCommand(newStatusCmd())

	return rootCmd
}

func newUpCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(sqlDB *sql.DB, logger *zap.Logger) error {
				n, err := database.Migrate(sqlDB, migrate.Up, limit)
				if err != nil {
					return err
				}
				logger.Info("migrations applied", zap.Int("count", n))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "max", 0, "apply at most this many migrations (0 = all)")
	return cmd
}

func newDownCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return withDB(func(sqlDB *sql.DB, logger *zap.Logger) error {
				n, err := database.Migrate(sqlDB, migrate.Down, steps)
				if err != nil {
					return err
				}
				logger.Info("migrations rolled back", zap.Int("count", n))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(sqlDB *sql.DB, _ *zap.Logger) error {
				return printStatus(cmd, sqlDB)
			})
		},
	}
}

func printStatus(cmd *cobra.Command, sqlDB *sql.DB) error {
	known, err := database.MigrationSource().FindMigrations()
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	records, err := migrate.GetMigrationRecords(sqlDB, "postgres")
	if err != nil {
		return fmt.Errorf("failed to read migration records: %w", err)
	}

	applied := make(map[string]string, len(records))
	for _, r := range records {
		applied[r.Id] = r.AppliedAt.UTC().Format("2006-01-02 15:04:05")
	}

	out := cmd.OutOrStdout()
	for _, m := range known {
		if at, ok := applied[m.Id]; ok {
			fmt.Fprintf(out, "%-45s applied %s\n", m.Id, at)
		} else {
			fmt.Fprintf(out, "%-45s pending\n", m.Id)
		}
	}
	return nil
}

func withDB(fn func(*sql.DB, *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return fn(sqlDB, logger)
}
