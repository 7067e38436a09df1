// Package risk maps scored churn probabilities to discrete tiers,
// ranked driver explanations and recommended retention actions.
package risk

import (
	"fmt"
	"sort"

	"churnctl/pkg/contracts/domain"
)

// Default tier boundaries; the business recalibrates these per
// deployment through configuration, they are not structural constants.
const (
	DefaultHighThreshold   = 0.50
	DefaultMediumThreshold = 0.35
	DefaultTopDrivers      = 6
)

// Thresholds are the tier boundaries: HIGH at or above High, MEDIUM at
// or above Medium, LOW below.
type Thresholds struct {
	High   float64 `yaml:"high" envconfig:"HIGH" default:"0.50"`
	Medium float64 `yaml:"medium" envconfig:"MEDIUM" default:"0.35"`
}

// Validate rejects threshold sets that cannot order the tiers.
func (t Thresholds) Validate() error {
	if t.High <= 0 || t.High >= 1 {
		return fmt.Errorf("high threshold must be in (0,1), got %v", t.High)
	}
	if t.Medium <= 0 || t.Medium >= 1 {
		return fmt.Errorf("medium threshold must be in (0,1), got %v", t.Medium)
	}
	if t.Medium >= t.High {
		return fmt.Errorf("medium threshold %v must be below high threshold %v", t.Medium, t.High)
	}
	return nil
}

// Classifier produces RiskAssessments from scorer output.
type Classifier struct {
	thresholds Thresholds
	topN       int
}

// NewClassifier creates a classifier; invalid thresholds are a
// construction-time error, never a per-record one.
func NewClassifier(thresholds Thresholds, topN int) (*Classifier, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("risk classifier: %w", err)
	}
	if topN <= 0 {
		topN = DefaultTopDrivers
	}
	return &Classifier{thresholds: thresholds, topN: topN}, nil
}

// Tier maps a probability to its tier.
func (c *Classifier) Tier(probability float64) domain.RiskTier {
	switch {
	case probability >= c.thresholds.High:
		return domain.RiskHigh
	case probability >= c.thresholds.Medium:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// Classify builds the assessment for one scored record: tier, the top
// drivers ordered by absolute attribution, and the retention actions.
func (c *Classifier) Classify(record domain.CleanRecord, probability float64, attributions []domain.Attribution) domain.RiskAssessment {
	drivers := append([]domain.Attribution(nil), attributions...)
	sort.SliceStable(drivers, func(i, j int) bool {
		return drivers[i].Magnitude > drivers[j].Magnitude
	})
	if len(drivers) > c.topN {
		drivers = drivers[:c.topN]
	}

	return domain.RiskAssessment{
		CustomerID:      record.CustomerID,
		Probability:     probability,
		Tier:            c.Tier(probability),
		TopDrivers:      drivers,
		Recommendations: recommend(record, probability, c.thresholds),
	}
}
