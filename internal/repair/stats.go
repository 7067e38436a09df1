package repair

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"churnctl/pkg/contracts/domain"
)

// Canonical field names shared by the repair report, the fitted-statistics
// artifact and the exported datasets.
const (
	fieldTenure         = "tenure_months"
	fieldContractType   = "contract_type"
	fieldServiceType    = "service_type"
	fieldMonthlyCharges = "monthly_charges"
	fieldTotalCharges   = "total_charges"
	fieldPaymentMethod  = "payment_method"
	fieldLocationType   = "location_type"
	fieldNumServices    = "num_services"
	fieldDataUsage      = "data_usage_gb"
	fieldSupportCalls   = "support_calls"
	fieldAutopay        = "autopay_enabled"
	fieldLatePayments   = "late_payment_count"
	fieldReferrals      = "referral_count"
)

// fallbackLabels supplies the imputation value for a categorical field
// with no observed value anywhere in the batch, so imputation can never
// produce a label outside the closed enumerations.
var fallbackLabels = map[string]string{
	fieldContractType:  string(domain.ContractMonthToMonth),
	fieldServiceType:   string(domain.TierStandard),
	fieldPaymentMethod: string(domain.PayMPesa),
	fieldLocationType:  string(domain.LocationUrban),
	fieldAutopay:       string(domain.AutopayNo),
}

// NumericFields lists the numeric record fields in export column order.
func NumericFields() []string {
	return []string{
		fieldTenure, fieldMonthlyCharges, fieldTotalCharges, fieldNumServices,
		fieldDataUsage, fieldSupportCalls, fieldLatePayments, fieldReferrals,
	}
}

// fitImputationStats computes the imputation statistics once from the
// repaired-so-far population: per-tier medians and modes over observed
// values, plus global fallbacks for empty strata.
func fitImputationStats(work []workRecord) *domain.ImputationStats {
	stats := &domain.ImputationStats{
		MedianByTier:       make(map[domain.ServiceTier]map[string]float64),
		GlobalMedian:       make(map[string]float64),
		ModeByTier:         make(map[domain.ServiceTier]map[string]string),
		GlobalMode:         make(map[string]string),
		ObservedPopulation: len(work),
	}

	numValues := make(map[domain.ServiceTier]map[string][]float64)
	globalNum := make(map[string][]float64)
	catCounts := make(map[domain.ServiceTier]map[string]map[string]int)
	globalCat := make(map[string]map[string]int)

	for i := range work {
		w := &work[i]
		tier := w.clean.ServiceType

		for field, v := range numericByField(&w.clean) {
			if domain.Missing(v) {
				continue
			}
			if tier != domain.TierUnknown {
				if numValues[tier] == nil {
					numValues[tier] = make(map[string][]float64)
				}
				numValues[tier][field] = append(numValues[tier][field], v)
			}
			globalNum[field] = append(globalNum[field], v)
		}

		for field, v := range categoricalByField(w) {
			if v == "" {
				continue
			}
			if tier != domain.TierUnknown {
				if catCounts[tier] == nil {
					catCounts[tier] = make(map[string]map[string]int)
				}
				if catCounts[tier][field] == nil {
					catCounts[tier][field] = make(map[string]int)
				}
				catCounts[tier][field][v]++
			}
			if globalCat[field] == nil {
				globalCat[field] = make(map[string]int)
			}
			globalCat[field][v]++
		}
	}

	for tier, fields := range numValues {
		stats.MedianByTier[tier] = make(map[string]float64, len(fields))
		for field, values := range fields {
			stats.MedianByTier[tier][field] = median(values)
		}
	}
	for field, values := range globalNum {
		stats.GlobalMedian[field] = median(values)
	}
	for tier, fields := range catCounts {
		stats.ModeByTier[tier] = make(map[string]string, len(fields))
		for field, counts := range fields {
			stats.ModeByTier[tier][field] = modeOf(counts)
		}
	}
	for field, counts := range globalCat {
		stats.GlobalMode[field] = modeOf(counts)
	}

	return stats
}

func numericByField(c *domain.CleanRecord) map[string]float64 {
	return map[string]float64{
		fieldTenure:         c.TenureMonths,
		fieldMonthlyCharges: c.MonthlyCharges,
		fieldTotalCharges:   c.TotalCharges,
		fieldNumServices:    c.NumServices,
		fieldDataUsage:      c.DataUsageGB,
		fieldSupportCalls:   c.SupportCalls,
		fieldLatePayments:   c.LatePaymentCount,
		fieldReferrals:      c.ReferralCount,
	}
}

// categoricalByField returns observed canonical labels, with the Unknown
// sentinel mapped to the empty string so it never votes for a mode.
func categoricalByField(w *workRecord) map[string]string {
	observed := func(v, unknown string) string {
		if v == unknown {
			return ""
		}
		return v
	}
	return map[string]string{
		fieldContractType:  observed(string(w.clean.ContractType), string(domain.ContractUnknown)),
		fieldServiceType:   observed(string(w.clean.ServiceType), string(domain.TierUnknown)),
		fieldPaymentMethod: observed(string(w.clean.PaymentMethod), string(domain.PayUnknown)),
		fieldLocationType:  observed(string(w.clean.LocationType), string(domain.LocationUnknown)),
		fieldAutopay:       observed(string(w.rawAutopay), string(domain.AutopayUnknown)),
	}
}

// median returns the empirical median of values. Input is copied, not
// reordered in place.
func median(values []float64) float64 {
	if len(values) == 0 {
		return domain.MissingValue()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// modeOf picks the most frequent label; ties break lexicographically so
// the result is stable across runs.
func modeOf(counts map[string]int) string {
	best, bestCount := "", -1
	for label, count := range counts {
		if count > bestCount || (count == bestCount && label < best) {
			best, bestCount = label, count
		}
	}
	return best
}
