package model

import (
	"context"

	"churnctl/pkg/contracts/domain"
)

// Trainer fits a scoring function on a feature-name-ordered matrix and a
// binary label vector.
type Trainer interface {
	// Train fits on X (row-major, one row per record, columns ordered as
	// named) and labels y (0 or 1). It returns a Scorer bound to the same
	// column order.
	Train(ctx context.Context, columns []string, x [][]float64, y []float64) (Scorer, error)
}

// Scorer maps one feature vector to a churn probability with per-feature
// attributions.
type Scorer interface {
	// Score returns a probability in [0,1] and the contribution of each
	// feature to it. Attribution magnitudes are non-negative; the sign is
	// carried separately.
	Score(values []float64) (float64, []domain.Attribution)

	// Coefficients exposes the fitted per-feature weights for reporting.
	Coefficients() map[string]float64
}
