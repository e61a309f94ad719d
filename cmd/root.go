/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"issuetracker/internal/bootstrap/logging"
	"issuetracker/internal/errs"
	"issuetracker/internal/output"
)

var (
	cfgFile      string
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "issuetracker",
	Short:        "Issue tracker with optimistic locking and audit trail",
	Long:         "Issue tracker CLI and HTTP API powered by Cobra + Viper + GORM(SQLite no-cgo).",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	logger := slog.New(slog.NewTextHandler(rootCmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	ctx = logging.WithLogger(ctx, logger)
	ctx = logging.WithAttrs(ctx, slog.String("app", "issuetracker"))

	rootCmd.SetContext(ctx)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error(ctx, "command execution failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "execute root command")
	}

	return nil
}

func newUI(cmd *cobra.Command) *output.UI {
	return output.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// structured reports whether the user asked for json or yaml instead of a table.
func structured() bool {
	return outputFormat == "json" || outputFormat == "yaml" || outputFormat == "yml"
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table|json|yaml)")
}
