package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"issuetracker/internal/bootstrap"
	"issuetracker/internal/bootstrap/logging"
	"issuetracker/internal/errs"
	"issuetracker/internal/usecase/issues"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create labels and users from a TOML catalog",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *issues.Service) error {
		ctx := cmd.Context()

		file, _ := cmd.Flags().GetString("file")
		catalog, err := issues.LoadCatalog(file)
		if err != nil {
			return errs.Wrap(err, "load catalog")
		}

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		result, err := svc.SeedCatalog(ctx, catalog)
		if err != nil {
			logging.Error(ctx, "seed catalog failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "seed catalog")
		}

		ui := newUI(cmd)
		if structured() {
			return ui.Structured(outputFormat, result)
		}
		ui.Success("catalog seeded: %d labels, %d users", len(result.Labels), len(result.Users))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("file", "configs/catalog.toml", "Path to catalog.toml")
}
