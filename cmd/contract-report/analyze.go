package main

import (
	"github.com/spf13/cobra"

	"contractreport/internal/render"
)

func newAnalyzeCommand(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Print every report section for one export",
		Example: `  # Styled tables in a terminal
  contract-report analyze contracts.xlsx

  # Markdown for a ticket, ranking only two menus
  contract-report analyze contracts.csv --format markdown --menu "Approval DD" --menu "Approval RM"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
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
			return render.New(cmd.OutOrStdout(), f).Report(report)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table|markdown|csv|json)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "markdown", "csv", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}
