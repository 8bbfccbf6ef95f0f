package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"globent-quiz-service/internal/config"
	mongostore "globent-quiz-service/internal/infra/mongo"
	pgmigrations "globent-quiz-service/internal/infra/postgres/migrations"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd applies Postgres migrations or (re)creates Mongo indexes,
// depending on the configured storage driver.
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
	log := newLogger(cfg)
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		return runMigrationsWithConfig(ctx, cfg, log)
	case config.DriverMongo:
		return ensureMongoIndexes(ctx, cfg, log)
	default:
		log.Info("memory storage needs no migrations")
		return nil
	}
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("database already up to date")
		return nil
	}
	log.Info("migrations applied", "group", group.String())
	return nil
}

func ensureMongoIndexes(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	client, err := mongostore.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	if err := mongostore.EnsureIndexes(ctx, client.Database(cfg.Mongo.Database)); err != nil {
		return err
	}
	log.Info("mongo indexes ensured", "database", cfg.Mongo.Database)
	return nil
}
