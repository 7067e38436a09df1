package domain

import (
	"time"
)

// RepairAction identifies what the repair pipeline did to a defective value.
type RepairAction string

const (
	ActionImputed      RepairAction = "imputed"
	ActionStandardized RepairAction = "standardized"
	ActionWinsorized   RepairAction = "winsorized"
	ActionDeduplicated RepairAction = "deduplicated"
	ActionExcluded     RepairAction = "excluded"
)

// ImputationStats holds the statistics the Repairer used to fill missing
// values, kept for auditability. Keys of the per-stratum maps are service
// tiers; the global entries are the fallbacks when a stratum is empty.
type ImputationStats struct {
	MedianByTier       map[ServiceTier]map[string]float64 `json:"median_by_tier" yaml:"median_by_tier"`
	GlobalMedian       map[string]float64                 `json:"global_median" yaml:"global_median"`
	ModeByTier         map[ServiceTier]map[string]string  `json:"mode_by_tier" yaml:"mode_by_tier"`
	GlobalMode         map[string]string                  `json:"global_mode" yaml:"global_mode"`
	StratumFallbacks   int                                `json:"stratum_fallbacks" yaml:"stratum_fallbacks"`
	ObservedPopulation int                                `json:"observed_population" yaml:"observed_population"`
}

// WinsorBounds records the Tukey fences applied to one numeric field.
type WinsorBounds struct {
	Field string  `json:"field" yaml:"field"`
	Q1    float64 `json:"q1" yaml:"q1"`
	Q3    float64 `json:"q3" yaml:"q3"`
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// RepairReport accumulates per-run counts of defects detected and actions
// taken. It is an audit artifact; nothing downstream reads it.
type RepairReport struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	InputRecords    int `json:"input_records"`
	RetainedRecords int `json:"retained_records"`

	DuplicateDropped      int `json:"duplicate_dropped"`
	InvalidCorrected      int `json:"invalid_corrected"`
	InconsistentCorrected int `json:"inconsistent_corrected"`
	MissingImputed        int `json:"missing_imputed"`
	Standardized          int `json:"standardized"`
	Winsorized            int `json:"winsorized"`
	ExcludedUnrecoverable int `json:"excluded_unrecoverable"`

	Imputation   *ImputationStats `json:"imputation,omitempty"`
	WinsorFences []WinsorBounds   `json:"winsor_fences,omitempty"`
}

// TotalRepairs returns the number of individual repair actions applied.
func (r RepairReport) TotalRepairs() int {
	return r.DuplicateDropped + r.InvalidCorrected + r.InconsistentCorrected +
		r.MissingImputed + r.Standardized + r.Winsorized + r.ExcludedUnrecoverable
}

// IsClean reports whether the run found nothing to repair, the condition
// an already-clean dataset must satisfy on a second pass.
func (r RepairReport) IsClean() bool {
	return r.TotalRepairs() == 0
}
