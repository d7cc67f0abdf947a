package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalogimport/internal/database"
)

func newSchemaCmd(root *rootOptions) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the catalog tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if printOnly {
				_, err := fmt.Fprint(cmd.OutOrStdout(), database.Schema())
				return err
			}

			store, closeStore, err := openStore(cmd.Context(), root.dbURL)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the PostgreSQL schema instead of applying it")
	return cmd
}

func newStatsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print catalog row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(cmd.Context(), root.dbURL)
			if err != nil {
				return err
			}
			defer closeStore()

			counts, err := store.CountCatalog(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), counts)
		},
	}
}
