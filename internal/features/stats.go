package features

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"churnctl/pkg/contracts/domain"
)

// DefaultCorrelationThreshold is the absolute Pearson correlation above
// which the later of two candidate features is excluded.
const DefaultCorrelationThreshold = 0.95

// FittedStatistics holds every quantity feature derivation needs that is
// estimated from data. It is fitted once on the training partition and
// then treated as read-only; the evaluation partition reuses it verbatim.
type FittedStatistics struct {
	MedianChargesByTier map[domain.ServiceTier]float64 `json:"median_charges_by_tier" yaml:"median_charges_by_tier"`
	MedianUsageByTier   map[domain.ServiceTier]float64 `json:"median_usage_by_tier" yaml:"median_usage_by_tier"`
	MonthlyChargesP75   float64                        `json:"monthly_charges_p75" yaml:"monthly_charges_p75"`
	DataUsageP25        float64                        `json:"data_usage_p25" yaml:"data_usage_p25"`

	// Columns is the feature order fixed at fit time, after exclusions.
	Columns  []string `json:"columns" yaml:"columns"`
	Excluded []string `json:"excluded,omitempty" yaml:"excluded,omitempty"`

	TrainingRecords int `json:"training_records" yaml:"training_records"`
}

// FitOptions tunes statistics fitting.
type FitOptions struct {
	CorrelationThreshold float64
}

// Fit estimates FittedStatistics from the training partition only. The
// label is never read.
func Fit(ctx context.Context, train []domain.CleanRecord, opts FitOptions, logger *slog.Logger) (*FittedStatistics, error) {
	if len(train) == 0 {
		return nil, fmt.Errorf("fit statistics: empty training partition")
	}
	if logger == nil {
		logger = slog.Default()
	}
	threshold := opts.CorrelationThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultCorrelationThreshold
	}

	fs := &FittedStatistics{
		MedianChargesByTier: make(map[domain.ServiceTier]float64),
		MedianUsageByTier:   make(map[domain.ServiceTier]float64),
		TrainingRecords:     len(train),
	}

	chargesByTier := make(map[domain.ServiceTier][]float64)
	usageByTier := make(map[domain.ServiceTier][]float64)
	var allCharges, allUsage []float64
	for _, r := range train {
		chargesByTier[r.ServiceType] = append(chargesByTier[r.ServiceType], r.MonthlyCharges)
		usageByTier[r.ServiceType] = append(usageByTier[r.ServiceType], r.DataUsageGB)
		allCharges = append(allCharges, r.MonthlyCharges)
		allUsage = append(allUsage, r.DataUsageGB)
	}
	for tier, values := range chargesByTier {
		fs.MedianChargesByTier[tier] = quantile(values, 0.5)
	}
	for tier, values := range usageByTier {
		fs.MedianUsageByTier[tier] = quantile(values, 0.5)
	}
	fs.MonthlyChargesP75 = quantile(allCharges, 0.75)
	fs.DataUsageP25 = quantile(allUsage, 0.25)

	fs.Columns, fs.Excluded = pruneCollinear(train, fs, threshold)

	logger.InfoContext(ctx, "fitted feature statistics",
		"training_records", fs.TrainingRecords,
		"columns", len(fs.Columns),
		"excluded", fs.Excluded,
		"monthly_charges_p75", fs.MonthlyChargesP75,
		"data_usage_p25", fs.DataUsageP25,
	)

	return fs, nil
}

// pruneCollinear derives the candidate features over the training
// partition and drops the later feature of every pair whose absolute
// Pearson correlation reaches the threshold. Constant columns keep
// their place; correlation against them is undefined and skipped.
func pruneCollinear(train []domain.CleanRecord, fs *FittedStatistics, threshold float64) (columns, excluded []string) {
	names := CandidateNames()
	series := make(map[string][]float64, len(names))
	for _, name := range names {
		series[name] = make([]float64, len(train))
	}
	for i, r := range train {
		vec := deriveCandidates(r, fs)
		for _, name := range names {
			series[name][i] = vec[name]
		}
	}

	dropped := make(map[string]bool)
	for i, a := range names {
		if dropped[a] {
			continue
		}
		for _, b := range names[i+1:] {
			if dropped[b] {
				continue
			}
			r := stat.Correlation(series[a], series[b], nil)
			if !math.IsNaN(r) && math.Abs(r) >= threshold {
				dropped[b] = true
			}
		}
	}

	for _, name := range names {
		if dropped[name] {
			excluded = append(excluded, name)
			continue
		}
		columns = append(columns, name)
	}
	return columns, excluded
}

// Artifact flattens the statistics into the named-statistic mapping the
// pipeline persists so evaluation-time derivation can be reproduced
// exactly.
func (fs *FittedStatistics) Artifact() map[string]interface{} {
	chargesByTier := make(map[string]float64, len(fs.MedianChargesByTier))
	for tier, v := range fs.MedianChargesByTier {
		chargesByTier[string(tier)] = v
	}
	usageByTier := make(map[string]float64, len(fs.MedianUsageByTier))
	for tier, v := range fs.MedianUsageByTier {
		usageByTier[string(tier)] = v
	}
	return map[string]interface{}{
		"median_charge_by_tier": chargesByTier,
		"median_usage_by_tier":  usageByTier,
		"monthly_charges_p75":   fs.MonthlyChargesP75,
		"data_usage_p25":        fs.DataUsageP25,
		"columns":               append([]string(nil), fs.Columns...),
		"excluded":              append([]string(nil), fs.Excluded...),
		"training_records":      fs.TrainingRecords,
	}
}

func quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}
