package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"issuetracker/internal/bootstrap/config"
	"issuetracker/internal/bootstrap/database"
	"issuetracker/internal/bootstrap/logging"
	"issuetracker/internal/errs"
	"issuetracker/internal/infrastructure/messaging"
	sqliterepo "issuetracker/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "issuetracker/internal/infrastructure/persistence/sqlite/uow"
	"issuetracker/internal/ports"
	"issuetracker/internal/usecase/issues"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideLogger),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewIssueRepository,
			fx.As(new(ports.IssueRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(provideAuditPublisher),
	fx.Provide(issues.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideLogger(lc fx.Lifecycle, cfg config.Config) (*slog.Logger, error) {
	logger, closer, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, errs.Wrap(err, "build logger")
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return closer.Close()
		},
	})
	return logger, nil
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config, logger *slog.Logger) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(logging.WithLogger(ctx, logger), slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB, logger *slog.Logger) *App {
	return &App{
		Config: cfg,
		DB:     db,
		Logger: logger,
	}
}

// provideAuditPublisher falls back to a no-op publisher when no broker is configured or
// reachable.
func provideAuditPublisher(lc fx.Lifecycle, ctx context.Context, cfg config.Config, logger *slog.Logger) ports.AuditPublisher {
	if cfg.Events.NATSURL == "" {
		return messaging.NoopAuditPublisher{}
	}

	logCtx := logging.WithAttrs(logging.WithLogger(ctx, logger), slog.String("component", "bootstrap.fx"))
	publisher, err := messaging.NewNATSAuditPublisher(cfg.Events.NATSURL, cfg.Events.Subject)
	if err != nil {
		logging.Warn(logCtx, "audit publisher disabled", slog.Any("err", errs.Loggable(err)))
		return messaging.NoopAuditPublisher{}
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})
	logging.Info(logCtx, "audit publisher connected", slog.String("subject", publisher.Subject()))
	return publisher
}
