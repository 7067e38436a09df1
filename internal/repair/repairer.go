package repair

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"churnctl/internal/canonical"
	"churnctl/pkg/contracts/domain"
)

// Repairer applies the ordered repair rules to a raw record set.
type Repairer struct {
	canon  *canonical.Canonicalizer
	logger *slog.Logger
}

// NewRepairer creates a repairer.
func NewRepairer(logger *slog.Logger) *Repairer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repairer{
		canon:  canonical.New(),
		logger: logger,
	}
}

// workRecord carries per-record repair state between rule passes.
type workRecord struct {
	clean      domain.CleanRecord
	raw        domain.RawRecord
	rawAutopay domain.AutopayFlag

	chargesTouched bool // monthly or total imputed, re-check consistency
	inconsistent   bool // consistency already counted for this record
}

// Repair converts raw records into clean records and a repair report.
// Input order is preserved for retained records; the first occurrence
// wins among duplicate identifiers.
func (rp *Repairer) Repair(ctx context.Context, raw []domain.RawRecord) ([]domain.CleanRecord, *domain.RepairReport, error) {
	start := time.Now()
	report := &domain.RepairReport{
		RunID:        uuid.NewString(),
		GeneratedAt:  time.Now().UTC(),
		InputRecords: len(raw),
	}

	rp.logger.InfoContext(ctx, "starting record repair",
		"run_id", report.RunID,
		"input_records", len(raw),
	)

	work := rp.admitRecords(raw, report)
	for i := range work {
		rp.standardize(&work[i], report)
		rp.correctInvalid(&work[i], report)
		rp.correctInconsistent(&work[i], report)
	}

	stats := fitImputationStats(work)
	report.Imputation = stats
	for i := range work {
		rp.impute(&work[i], stats, report)
		// Imputed charges can re-expose the impossible total < monthly
		// combination the pre-imputation pass could not see.
		if work[i].chargesTouched {
			rp.correctInconsistent(&work[i], report)
		}
	}

	clean := make([]domain.CleanRecord, len(work))
	for i := range work {
		clean[i] = work[i].clean
	}
	report.RetainedRecords = len(clean)

	rp.logger.InfoContext(ctx, "record repair completed",
		"run_id", report.RunID,
		"retained", report.RetainedRecords,
		"excluded_unrecoverable", report.ExcludedUnrecoverable,
		"duplicate_dropped", report.DuplicateDropped,
		"total_repairs", report.TotalRepairs(),
		"duration", time.Since(start),
	)

	return clean, report, nil
}

// admitRecords drops unrecoverable records and duplicate identifiers,
// keeping the first occurrence in input order.
func (rp *Repairer) admitRecords(raw []domain.RawRecord, report *domain.RepairReport) []workRecord {
	seen := make(map[string]struct{}, len(raw))
	work := make([]workRecord, 0, len(raw))

	for _, r := range raw {
		if r.CustomerID == "" || !r.HasLabel() {
			report.ExcludedUnrecoverable++
			continue
		}
		if _, dup := seen[r.CustomerID]; dup {
			report.DuplicateDropped++
			continue
		}
		seen[r.CustomerID] = struct{}{}

		work = append(work, workRecord{
			raw: r,
			clean: domain.CleanRecord{
				CustomerID:       r.CustomerID,
				TenureMonths:     r.TenureMonths,
				ContractType:     rp.canon.Contract(r.ContractType),
				ServiceType:      rp.canon.Tier(r.ServiceType),
				MonthlyCharges:   r.MonthlyCharges,
				TotalCharges:     r.TotalCharges,
				PaymentMethod:    rp.canon.Payment(r.PaymentMethod),
				LocationType:     rp.canon.Location(r.LocationType),
				NumServices:      r.NumServices,
				DataUsageGB:      r.DataUsageGB,
				SupportCalls:     r.SupportCalls,
				LatePaymentCount: r.LatePaymentCount,
				ReferralCount:    r.ReferralCount,
				Churned:          int(r.Churned),
			},
			rawAutopay: rp.canon.Autopay(r.AutopayEnabled),
		})
	}
	return work
}

// standardize counts categorical values the canonicalizer rewrote into a
// different label. Unknown sentinels are counted later, as imputations.
func (rp *Repairer) standardize(w *workRecord, report *domain.RepairReport) {
	rewritten := []struct {
		raw       string
		canonical string
		unknown   string
	}{
		{w.raw.ContractType, string(w.clean.ContractType), string(domain.ContractUnknown)},
		{w.raw.ServiceType, string(w.clean.ServiceType), string(domain.TierUnknown)},
		{w.raw.PaymentMethod, string(w.clean.PaymentMethod), string(domain.PayUnknown)},
		{w.raw.LocationType, string(w.clean.LocationType), string(domain.LocationUnknown)},
		{w.raw.AutopayEnabled, string(w.rawAutopay), string(domain.AutopayUnknown)},
	}
	for _, f := range rewritten {
		if f.canonical != f.unknown && f.raw != f.canonical {
			report.Standardized++
		}
	}
}

// correctInvalid clamps numeric values below their domain floor to the
// floor. Negative tenure or counts cannot happen on a real account, so
// the floor is the safe reconstruction.
func (rp *Repairer) correctInvalid(w *workRecord, report *domain.RepairReport) {
	for _, f := range []*float64{
		&w.clean.TenureMonths,
		&w.clean.MonthlyCharges,
		&w.clean.TotalCharges,
		&w.clean.NumServices,
		&w.clean.DataUsageGB,
		&w.clean.SupportCalls,
		&w.clean.LatePaymentCount,
		&w.clean.ReferralCount,
	} {
		if !domain.Missing(*f) && *f < 0 {
			*f = 0
			report.InvalidCorrected++
		}
	}
}

// correctInconsistent recomputes a total charge that is physically
// impossible against the monthly charge. Counted once per record.
func (rp *Repairer) correctInconsistent(w *workRecord, report *domain.RepairReport) {
	monthly, total := w.clean.MonthlyCharges, w.clean.TotalCharges
	if domain.Missing(monthly) || domain.Missing(total) {
		return
	}
	if total >= monthly {
		return
	}
	tenure := w.clean.TenureMonths
	if domain.Missing(tenure) || tenure < 1 {
		tenure = 1
	}
	w.clean.TotalCharges = monthly * tenure
	w.clean.ChargesAnomaly = true
	if !w.inconsistent {
		report.InconsistentCorrected++
		w.inconsistent = true
	}
}

// impute fills missing numeric fields with the stratum median and Unknown
// categoricals with the stratum mode, falling back to the global
// statistic when the stratum has nothing observed.
func (rp *Repairer) impute(w *workRecord, stats *domain.ImputationStats, report *domain.RepairReport) {
	// The service tier is the stratum key, so it resolves first, from the
	// global mode alone.
	if w.clean.ServiceType == domain.TierUnknown {
		tierMode := stats.GlobalMode[fieldServiceType]
		if tierMode == "" {
			tierMode = fallbackLabels[fieldServiceType]
		}
		w.clean.ServiceType = domain.ServiceTier(tierMode)
		report.MissingImputed++
	}
	tier := w.clean.ServiceType

	lookup := func(field string) float64 {
		if byTier, ok := stats.MedianByTier[tier]; ok {
			if v, ok := byTier[field]; ok && !domain.Missing(v) {
				return v
			}
		}
		stats.StratumFallbacks++
		if v, ok := stats.GlobalMedian[field]; ok && !domain.Missing(v) {
			return v
		}
		// No record observed this field at all; the domain floor keeps
		// the value inside the schema.
		return 0
	}
	mode := func(field string) string {
		if byTier, ok := stats.ModeByTier[tier]; ok {
			if v, ok := byTier[field]; ok && v != "" {
				return v
			}
		}
		stats.StratumFallbacks++
		if v := stats.GlobalMode[field]; v != "" {
			return v
		}
		return fallbackLabels[field]
	}

	numerics := []struct {
		field string
		ptr   *float64
	}{
		{fieldTenure, &w.clean.TenureMonths},
		{fieldMonthlyCharges, &w.clean.MonthlyCharges},
		{fieldTotalCharges, &w.clean.TotalCharges},
		{fieldNumServices, &w.clean.NumServices},
		{fieldDataUsage, &w.clean.DataUsageGB},
		{fieldSupportCalls, &w.clean.SupportCalls},
		{fieldLatePayments, &w.clean.LatePaymentCount},
		{fieldReferrals, &w.clean.ReferralCount},
	}
	for _, n := range numerics {
		if domain.Missing(*n.ptr) {
			*n.ptr = lookup(n.field)
			report.MissingImputed++
			if n.field == fieldMonthlyCharges || n.field == fieldTotalCharges {
				w.chargesTouched = true
			}
		}
	}

	if w.clean.ContractType == domain.ContractUnknown {
		w.clean.ContractType = domain.ContractType(mode(fieldContractType))
		report.MissingImputed++
	}
	if w.clean.PaymentMethod == domain.PayUnknown {
		w.clean.PaymentMethod = domain.PaymentMethod(mode(fieldPaymentMethod))
		report.MissingImputed++
	}
	if w.clean.LocationType == domain.LocationUnknown {
		w.clean.LocationType = domain.LocationType(mode(fieldLocationType))
		report.MissingImputed++
	}
	if w.rawAutopay == domain.AutopayUnknown {
		w.rawAutopay = domain.AutopayFlag(mode(fieldAutopay))
		report.MissingImputed++
	}
	w.clean.AutopayEnabled = w.rawAutopay == domain.AutopayYes
}
