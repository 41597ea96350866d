package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/config"
	"github.com/Ramsey-B/kitchin/db"
	"github.com/Ramsey-B/kitchin/internal/repositories/commongroceryitem"
	"github.com/Ramsey-B/kitchin/internal/services/catalog"
	"github.com/Ramsey-B/kitchin/pkg/database"
)

// Migrate brings the schema to the configured version and exits.
func Migrate(ctx context.Context, cfg *config.Config, logger ectologger.Logger) error {
	conn, err := database.Connect(ctx, databaseConfig(cfg), logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	return database.NewMigrationService(logger, db.Files, migrationConfig(cfg)).Migrate(cfg.DatabaseName, conn)
}

// Seed upserts the quick-add catalog. An empty path uses the embedded default catalog.
func Seed(ctx context.Context, cfg *config.Config, logger ectologger.Logger, path string) (int, error) {
	conn, err := database.Connect(ctx, databaseConfig(cfg), logger)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if err := database.NewMigrationService(logger, db.Files, migrationConfig(cfg)).Migrate(cfg.DatabaseName, conn); err != nil {
		return 0, err
	}

	service := catalog.NewService(commongroceryitem.NewRepository(conn, logger), logger)
	if path == "" {
		return service.Seed(ctx, db.Files, db.CatalogSeed)
	}
	return service.Seed(ctx, os.DirFS(filepath.Dir(path)), filepath.Base(path))
}
