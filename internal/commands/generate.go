package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"churnctl/internal/exporter"
	"churnctl/internal/generate"
)

func newGenerateCommand(root *rootOptions) *cobra.Command {
	var (
		count int
		out   string
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a seeded synthetic customer batch",
		Long: `Generate writes a synthetic batch with the canonical columns and a
controlled dose of real-world defects: messy categorical spellings,
missing values, negative numerics, duplicate identifiers and a few
unlabeled or unidentified rows. The same seed always yields the same
file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.setup()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Pipeline.Seed
			}
			if count <= 0 {
				return fmt.Errorf("record count must be positive, got %d", count)
			}
			if out == "" {
				out = filepath.Join(cfg.Paths.DataDir, "customers.csv")
			}

			gen := generate.New(generate.DefaultConfig(seed))
			records := gen.Generate(count)

			writer := exporter.NewCSVWriter(filepath.Dir(out), logger)
			if err := writer.WriteRawDataset(filepath.Base(out), records); err != nil {
				return fmt.Errorf("write synthetic batch: %w", err)
			}

			logger.Info("synthetic batch written",
				slog.String("path", out),
				slog.Int("records", len(records)),
				slog.Int64("seed", seed))
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 5000, "number of records to generate")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file path (default <data_dir>/customers.csv)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed (default from configuration)")

	return cmd
}
