package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"issuetracker/internal/bootstrap/config"
	"issuetracker/internal/bootstrap/logging"
	"issuetracker/internal/errs"
	"issuetracker/internal/infrastructure/persistence/sqlite/meta"
	"issuetracker/internal/infrastructure/persistence/sqlite/model"
)

type App struct {
	Config config.Config
	DB     *gorm.DB
	Logger *slog.Logger
}

// InitSchema creates or migrates every table. It is safe to run on an existing database.
func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "start schema migration")

	if err := a.DB.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	store := meta.NewStore(a.DB)
	if err := store.Set(ctx, meta.KeySchemaVersion, model.SchemaVersion); err != nil {
		return errs.Wrap(err, "record schema version")
	}
	if err := store.Set(ctx, meta.KeySchemaMigratedAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return errs.Wrap(err, "record migration time")
	}

	logging.Info(logCtx, "schema migration completed", slog.String("schema_version", model.SchemaVersion))
	return nil
}

// SchemaVersion returns the version recorded by the last InitSchema, if any.
func (a *App) SchemaVersion(ctx context.Context) (string, bool, error) {
	return meta.NewStore(a.DB).Get(ctx, meta.KeySchemaVersion)
}
