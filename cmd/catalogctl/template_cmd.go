package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalogimport/internal/core"
)

func newTemplateCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an import template with sample rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			var write func(io.Writer) error
			switch format {
			case "csv":
				write = core.WriteTemplateCSV
			case "xlsx":
				write = core.WriteTemplateXLSX
			case "json":
				write = func(w io.Writer) error { return writeJSON(w, core.ImportTemplate()) }
			default:
				return fmt.Errorf("unknown template format %q (want csv, xlsx or json)", format)
			}

			if output == "" || output == "-" {
				return write(cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := write(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Template format: csv, xlsx or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}
