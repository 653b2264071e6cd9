package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"contractreport/internal/config"
	"contractreport/internal/infrastructure"
	"contractreport/internal/services"
	"contractreport/pkg/contracts"
)

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	configPath string
	logLevel   string
	top        int
	menus      []string
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "contract-report",
		Short: "Contract report - multi-menu detection, pivots and branch rankings",
		Long: `contract-report loads a contract export (.csv or .xlsx) and reports
contracts recorded under more than one menu, two menu by product pivots
and the top branches of each target menu.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(contracts.GetFullVersionString() + "\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: ./config.yaml if present)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	flags.IntVar(&opts.top, "top", 0, "branches listed per menu (default from config)")
	flags.StringArrayVar(&opts.menus, "menu", nil, "target menu for the branch ranking, repeatable")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newAnalyzeCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))

	return rootCmd
}

// loadConfig reads the configuration and applies the flag overrides
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(o.logLevel)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	return cfg, nil
}

// analyzeOptions turns --top and --menu into per-run overrides
func (o *globalOptions) analyzeOptions() (services.AnalyzeOptions, error) {
	if o.top < 0 {
		return services.AnalyzeOptions{}, fmt.Errorf("--top must be positive, got %d", o.top)
	}
	return services.AnalyzeOptions{TopN: o.top, TargetMenus: o.menus}, nil
}

// reportService builds a report service that logs to logOut
func (o *globalOptions) reportService(logOut io.Writer) (*services.ReportService, *slog.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := infrastructure.NewLogger(cfg.Logging, logOut)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return services.NewReportService(cfg.Report, nil, nil, logger), logger, nil
}
