package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalogimport/internal/core"
)

var errNothingImported = errors.New("no rows imported")

func newImportCmd(root *rootOptions) *cobra.Command {
	var (
		contentType  string
		ensureSchema bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV or Excel file in one transaction",
		Long: `Import reads a CSV or Excel file whose header names the columns
product_name, category_name, price, customer_name and rating (required) and
product_description, category_description and review_text (optional).

Valid rows are committed together; invalid rows are reported in the result.
The result is printed as JSON. The command fails when nothing was imported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, closeStore, err := openStore(ctx, root.dbURL)
			if err != nil {
				return err
			}
			defer closeStore()

			if ensureSchema {
				if err := store.EnsureSchema(ctx); err != nil {
					return err
				}
			}

			src := core.FileSource{Path: args[0], MIMEType: contentType}
			result, err := core.NewImporter(store).Import(ctx, src)
			if err != nil {
				return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
			}

			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if result.ReviewsAdded == 0 {
				return fmt.Errorf("%w: %d row errors", errNothingImported, len(result.RowErrors))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contentType, "content-type", "", "MIME type of the file when the extension is not .csv or .xlsx")
	cmd.Flags().BoolVar(&ensureSchema, "ensure-schema", true, "Create missing catalog tables before importing")
	return cmd
}
