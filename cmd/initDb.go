/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"issuetracker/internal/bootstrap"
	"issuetracker/internal/bootstrap/logging"
	"issuetracker/internal/errs"
	"issuetracker/internal/usecase/issues"
)

// initDbCmd represents the initDb command
var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize database schema",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ *issues.Service) error {
		ctx := cmd.Context()
		logging.Info(ctx, "start init-db")

		if err := app.InitSchema(ctx); err != nil {
			logging.Error(ctx, "initialize schema failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize schema")
		}

		version, _, err := app.SchemaVersion(ctx)
		if err != nil {
			return errs.Wrap(err, "read schema version")
		}

		logging.Info(ctx, "init-db finished", slog.String("database_dsn", app.Config.Database.DSN))
		newUI(cmd).Success("database schema v%s initialized: %s", version, app.Config.Database.DSN)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)
}
