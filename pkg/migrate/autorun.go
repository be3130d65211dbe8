package migrate

import (
	"context"

	"github.com/ceramicarte/preventivi-backend/pkg/config"
	"github.com/ceramicarte/preventivi-backend/pkg/db"
	"github.com/ceramicarte/preventivi-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations at startup when the auto
// migrate flag is on. Meant for local development only; production
// deployments run the migrate binary explicitly.
func MaybeRunDev(ctx context.Context, log *logger.Logger, client *db.Client, cfg *config.Config) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if !cfg.App.IsDev() {
		log.Warn(ctx, "auto migrate flag ignored outside development")
		return nil
	}

	sqlDB, err := client.DB.DB()
	if err != nil {
		return err
	}

	dialect := "postgres"
	if cfg.FeatureFlags.UseSQLite {
		dialect = "sqlite3"
	}

	log.Info(ctx, "running startup migrations")
	return Up(ctx, sqlDB, dialect)
}
