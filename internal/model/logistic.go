package model

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"churnctl/pkg/contracts/domain"
)

// LogisticConfig tunes the reference trainer. The defaults converge well
// on standardized features at this dataset scale.
type LogisticConfig struct {
	LearningRate float64
	Epochs       int
	L2           float64
}

// DefaultLogisticConfig returns the default training configuration.
func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{
		LearningRate: 0.1,
		Epochs:       400,
		L2:           0.001,
	}
}

// LogisticTrainer fits an L2-regularized logistic regression with full
// batch gradient descent on standardized features. Training is fully
// deterministic: no random initialization, no sampling.
type LogisticTrainer struct {
	cfg    LogisticConfig
	logger *slog.Logger
}

// NewLogisticTrainer creates a trainer; zero-valued config fields take
// their defaults.
func NewLogisticTrainer(cfg LogisticConfig, logger *slog.Logger) *LogisticTrainer {
	def := DefaultLogisticConfig()
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = def.Epochs
	}
	if cfg.L2 < 0 {
		cfg.L2 = def.L2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LogisticTrainer{cfg: cfg, logger: logger}
}

// Train implements Trainer.
func (t *LogisticTrainer) Train(ctx context.Context, columns []string, x [][]float64, y []float64) (Scorer, error) {
	start := time.Now()
	n := len(x)
	if n == 0 {
		return nil, fmt.Errorf("train: empty matrix")
	}
	if len(y) != n {
		return nil, fmt.Errorf("train: %d rows but %d labels", n, len(y))
	}
	d := len(columns)
	for i, row := range x {
		if len(row) != d {
			return nil, fmt.Errorf("train: row %d has %d values, want %d", i, len(row), d)
		}
	}

	means, stds := columnMoments(x, d)

	weights := make([]float64, d)
	bias := 0.0
	grad := make([]float64, d)
	std := make([]float64, d)

	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("train aborted at epoch %d: %w", epoch, err)
		}

		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0

		for i, row := range x {
			standardizeInto(std, row, means, stds)
			p := sigmoid(floats.Dot(weights, std) + bias)
			err := p - y[i]
			for j := range std {
				grad[j] += err * std[j]
			}
			gradBias += err
		}

		scale := t.cfg.LearningRate / float64(n)
		for j := range weights {
			weights[j] -= scale * (grad[j] + t.cfg.L2*weights[j])
		}
		bias -= scale * gradBias
	}

	t.logger.InfoContext(ctx, "trained logistic model",
		"rows", n,
		"columns", d,
		"epochs", t.cfg.Epochs,
		"duration", time.Since(start),
	)

	return &logisticScorer{
		columns: append([]string(nil), columns...),
		weights: weights,
		bias:    bias,
		means:   means,
		stds:    stds,
	}, nil
}

type logisticScorer struct {
	columns []string
	weights []float64
	bias    float64
	means   []float64
	stds    []float64
}

// Score implements Scorer. Each attribution is the weighted standardized
// feature value, the additive contribution to the decision logit.
func (s *logisticScorer) Score(values []float64) (float64, []domain.Attribution) {
	std := make([]float64, len(s.weights))
	standardizeInto(std, values, s.means, s.stds)

	logit := s.bias
	attrs := make([]domain.Attribution, len(s.columns))
	for j := range s.weights {
		contribution := s.weights[j] * std[j]
		logit += contribution
		attrs[j] = domain.Attribution{
			Feature:    s.columns[j],
			Magnitude:  math.Abs(contribution),
			RaisesRisk: contribution > 0,
		}
	}

	return sigmoid(logit), attrs
}

// Coefficients implements Scorer.
func (s *logisticScorer) Coefficients() map[string]float64 {
	out := make(map[string]float64, len(s.columns))
	for j, name := range s.columns {
		out[name] = s.weights[j]
	}
	return out
}

func columnMoments(x [][]float64, d int) (means, stds []float64) {
	means = make([]float64, d)
	stds = make([]float64, d)
	column := make([]float64, len(x))
	for j := 0; j < d; j++ {
		for i := range x {
			column[i] = x[i][j]
		}
		mean, sd := stat.MeanStdDev(column, nil)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1 // constant column, leave it centered only
		}
		means[j], stds[j] = mean, sd
	}
	return means, stds
}

func standardizeInto(dst, row, means, stds []float64) {
	for j := range dst {
		dst[j] = (row[j] - means[j]) / stds[j]
	}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
