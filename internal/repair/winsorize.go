package repair

import (
	"context"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"churnctl/pkg/contracts/domain"
)

// DefaultIQRMultiplier is the Tukey fence multiplier.
const DefaultIQRMultiplier = 1.5

// Winsorizer bounds extreme numeric values without discarding records.
// Fences are computed per field on the repaired population; values
// outside them are clamped to the fence exactly. Re-applying to already
// clamped data changes nothing.
type Winsorizer struct {
	multiplier float64
	logger     *slog.Logger
}

// NewWinsorizer creates a winsorizer with the given IQR multiplier; a
// non-positive multiplier falls back to the default.
func NewWinsorizer(multiplier float64, logger *slog.Logger) *Winsorizer {
	if multiplier <= 0 {
		multiplier = DefaultIQRMultiplier
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Winsorizer{multiplier: multiplier, logger: logger}
}

// Treat returns a new record set with every numeric field clamped to its
// Tukey fences, recording the fences and the clamp count in the report.
func (w *Winsorizer) Treat(ctx context.Context, records []domain.CleanRecord, report *domain.RepairReport) []domain.CleanRecord {
	out := append([]domain.CleanRecord(nil), records...)
	if len(out) == 0 {
		return out
	}

	for _, field := range NumericFields() {
		values := make([]float64, len(out))
		for i := range out {
			values[i] = *numericPtr(&out[i], field)
		}

		bounds, ok := fences(field, values, w.multiplier)
		if !ok {
			continue
		}
		report.WinsorFences = append(report.WinsorFences, bounds)

		clamped := 0
		for i := range out {
			p := numericPtr(&out[i], field)
			switch {
			case *p < bounds.Lower:
				*p = bounds.Lower
				clamped++
			case *p > bounds.Upper:
				*p = bounds.Upper
				clamped++
			}
		}
		report.Winsorized += clamped

		if clamped > 0 {
			w.logger.DebugContext(ctx, "winsorized field",
				"field", field,
				"clamped", clamped,
				"lower", bounds.Lower,
				"upper", bounds.Upper,
			)
		}
	}

	return out
}

// fences computes the Tukey fences for one field. Empirical quantiles are
// order statistics, which is what keeps a second pass a no-op: clamping
// tail values to a fence never moves the Q1 or Q3 element.
func fences(field string, values []float64, multiplier float64) (domain.WinsorBounds, bool) {
	if len(values) < 4 {
		return domain.WinsorBounds{}, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	iqr := q3 - q1

	return domain.WinsorBounds{
		Field: field,
		Q1:    q1,
		Q3:    q3,
		Lower: q1 - multiplier*iqr,
		Upper: q3 + multiplier*iqr,
	}, true
}

func numericPtr(c *domain.CleanRecord, field string) *float64 {
	switch field {
	case fieldTenure:
		return &c.TenureMonths
	case fieldMonthlyCharges:
		return &c.MonthlyCharges
	case fieldTotalCharges:
		return &c.TotalCharges
	case fieldNumServices:
		return &c.NumServices
	case fieldDataUsage:
		return &c.DataUsageGB
	case fieldSupportCalls:
		return &c.SupportCalls
	case fieldLatePayments:
		return &c.LatePaymentCount
	case fieldReferrals:
		return &c.ReferralCount
	default:
		return nil
	}
}
