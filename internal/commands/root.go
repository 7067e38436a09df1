package commands

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"churnctl/internal/config"
	"churnctl/internal/infrastructure"
)

// Version is stamped at build time.
var Version = "dev"

type rootOptions struct {
	configFile string
}

// NewRootCommand builds the churnctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "churnctl",
		Short: "Customer churn data-quality and risk pipeline",
		Long: `churnctl repairs messy customer batches, derives model features
from training-set statistics and scores each customer for churn risk.

The run command expects a CSV or XLSX batch with the canonical fifteen
columns and writes the cleaned dataset, repair report, fitted
statistics, model coefficients and per-customer assessments to the
output directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path (YAML)")

	cmd.AddCommand(newGenerateCommand(opts))
	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("churnctl version %s\n", Version)
		},
	})

	return cmd
}

// setup loads the environment, the configuration and the logger shared
// by the subcommands.
func (o *rootOptions) setup() (*config.Config, *slog.Logger, error) {
	// A local .env is optional; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, logger, nil
}
