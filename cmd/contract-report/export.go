package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCommand(opts *globalOptions) *cobra.Command {
	var (
		outDir   string
		workbook bool
	)

	cmd := &cobra.Command{
		Use:     "export <file>",
		Short:   "Write the CSV downloads (and optionally a workbook) to a directory",
		Example: `  contract-report export contracts.xlsx --out reports --xlsx`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analyze, err := opts.analyzeOptions()
			if err != nil {
				return err
			}
			service, _, err := opts.reportService(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			report, err := service.AnalyzeFile(cmd.Context(), args[0], analyze)
			if err != nil {
				return err
			}
			written, err := service.ExportAll(cmd.Context(), report, outDir, workbook)
			if err != nil {
				return err
			}

			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&workbook, "xlsx", false, "also write contract_report.xlsx")

	return cmd
}
