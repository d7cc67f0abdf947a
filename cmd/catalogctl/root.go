package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalogimport/internal/logging"
)

type rootOptions struct {
	dbURL     string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "catalogctl",
		Short:        "Import product, category and review files into the catalog",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
		},
	}

	defaultDB := os.Getenv("DATABASE_URL")
	if defaultDB == "" {
		defaultDB = os.Getenv("DB_URL")
	}

	cmd.PersistentFlags().StringVar(&opts.dbURL, "db", defaultDB, "Database URL (postgres://... or sqlite:<path>), defaults to $DATABASE_URL")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	cmd.AddCommand(
		newImportCmd(opts),
		newTemplateCmd(),
		newSchemaCmd(opts),
		newStatsCmd(opts),
	)
	return cmd
}
