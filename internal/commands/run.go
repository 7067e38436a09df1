package commands

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"churnctl/internal/exporter"
	"churnctl/internal/infrastructure"
	"churnctl/internal/ingest"
	"churnctl/internal/pipeline"
)

// Artifact file names under the output directory.
const (
	artifactCleanDataset = "clean_customers.csv"
	artifactAssessments  = "risk_assessments.csv"
	artifactCoefficients = "model_coefficients.csv"
	artifactRepairReport = "repair_report.json"
	artifactFittedStats  = "fitted_statistics.yaml"
	artifactRunSummary   = "run_summary.json"
)

func newRunCommand(root *rootOptions) *cobra.Command {
	var (
		input  string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Repair, derive features and score a customer batch",
		Long: `Run reads a CSV or XLSX batch, repairs data-quality defects in a
fixed rule order, treats numeric outliers, fits feature statistics on
a stratified training split, trains the reference model and writes a
risk assessment for every recoverable customer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.setup()
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.Paths.OutputDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx = infrastructure.WithTraceID(ctx, "")

			raw, err := ingest.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read input batch: %w", err)
			}
			logger.InfoContext(ctx, "batch loaded",
				slog.String("path", input),
				slog.Int("records", len(raw)))

			p, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}

			result, runErr := p.Run(ctx, raw)
			if result != nil && result.State != nil {
				// Persist the summary even for failed runs.
				writer := exporter.NewCSVWriter(outDir, logger)
				if werr := writer.WriteJSON(artifactRunSummary, result.State); werr != nil {
					logger.ErrorContext(ctx, "write run summary",
						slog.String("error", werr.Error()))
				}
			}
			if runErr != nil {
				return runErr
			}

			if err := exportArtifacts(outDir, logger, result); err != nil {
				return err
			}

			logger.InfoContext(ctx, "run artifacts written",
				slog.String("output_dir", outDir),
				slog.Int("assessed", len(result.Assessments)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input batch file (.csv or .xlsx)")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "artifact directory (default from configuration)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func exportArtifacts(outDir string, logger *slog.Logger, result *pipeline.Result) error {
	writer := exporter.NewCSVWriter(outDir, logger)

	if err := writer.WriteCleanDataset(artifactCleanDataset, result.Clean); err != nil {
		return fmt.Errorf("export clean dataset: %w", err)
	}
	if err := writer.WriteRepairReport(artifactRepairReport, result.Report); err != nil {
		return fmt.Errorf("export repair report: %w", err)
	}
	if err := writer.WriteFittedStats(artifactFittedStats, result.Stats); err != nil {
		return fmt.Errorf("export fitted statistics: %w", err)
	}
	if err := writer.WriteCoefficients(artifactCoefficients, result.Coefficients); err != nil {
		return fmt.Errorf("export model coefficients: %w", err)
	}
	if err := writer.WriteAssessments(artifactAssessments, result.Assessments); err != nil {
		return fmt.Errorf("export assessments: %w", err)
	}
	return nil
}
