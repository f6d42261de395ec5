package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mind-engage/edueval/internal/config"
	"github.com/mind-engage/edueval/internal/exam"
)

func exportCMD(cfgPath *string) *cobra.Command {
	var output string
	var export = &cobra.Command{
		Use:   "export",
		Short: "Write stored results as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			dbh, catalog, err := openCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			defer dbh.Close()

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return runExport(ctx, catalog, w)
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return export
}

func runExport(ctx context.Context, store exam.Store, w io.Writer) error {
	results, err := store.ListResults(ctx)
	if err != nil {
		return err
	}
	return exam.WriteResultsCSV(w, results)
}
