package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"quizboard/internal/config"
	"quizboard/internal/infra/bunstore"
	"quizboard/internal/infra/bunstore/migrations"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return migrate(ctx, db)
}

func openDatabase(cfg config.Config) (*bun.DB, error) {
	switch driver := cfg.DatabaseDriver(); driver {
	case config.DriverPostgres:
		return bunstore.Open(bunstore.DriverPostgres, cfg.Postgres.URL)
	case config.DriverSQLite:
		return bunstore.Open(bunstore.DriverSQLite, cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("database driver %q has no migrations", driver)
	}
}

func migrate(ctx context.Context, db *bun.DB) error {
	applied, err := migrations.Apply(ctx, db)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		log.Printf("database schema up to date")
		return nil
	}
	log.Printf("migrations applied: %v", applied)
	return nil
}
