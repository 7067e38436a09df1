package repair

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnctl/pkg/contracts/domain"
)

func cleanBatch(n int) []domain.CleanRecord {
	out := make([]domain.CleanRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.CleanRecord{
			CustomerID:       idFor(i),
			TenureMonths:     24,
			ContractType:     domain.ContractOneYear,
			ServiceType:      domain.TierStandard,
			MonthlyCharges:   3000 + float64(i%20),
			TotalCharges:     72000,
			PaymentMethod:    domain.PayMPesa,
			LocationType:     domain.LocationUrban,
			NumServices:      3,
			DataUsageGB:      20,
			SupportCalls:     1,
			AutopayEnabled:   true,
			LatePaymentCount: 0,
			ReferralCount:    1,
			Churned:          0,
		})
	}
	return out
}

func TestTreatClampsOutliersToFence(t *testing.T) {
	w := NewWinsorizer(DefaultIQRMultiplier, nil)

	records := cleanBatch(40)
	records[0].MonthlyCharges = 90000 // wild outlier

	report := &domain.RepairReport{}
	out := w.Treat(context.Background(), records, report)

	var fence *domain.WinsorBounds
	for i := range report.WinsorFences {
		if report.WinsorFences[i].Field == fieldMonthlyCharges {
			fence = &report.WinsorFences[i]
		}
	}
	require.NotNil(t, fence, "fences recorded for monthly charges")

	assert.Equal(t, fence.Upper, out[0].MonthlyCharges, "outlier lands exactly on the fence")
	assert.Positive(t, report.Winsorized)

	// In-range values are untouched.
	for i := 1; i < len(out); i++ {
		assert.Equal(t, records[i].MonthlyCharges, out[i].MonthlyCharges)
	}
}

func TestTreatClampsLowOutlierToLowerFence(t *testing.T) {
	w := NewWinsorizer(DefaultIQRMultiplier, nil)

	records := cleanBatch(40)
	records[0].MonthlyCharges = 100

	report := &domain.RepairReport{}
	out := w.Treat(context.Background(), records, report)

	var fence *domain.WinsorBounds
	for i := range report.WinsorFences {
		if report.WinsorFences[i].Field == fieldMonthlyCharges {
			fence = &report.WinsorFences[i]
		}
	}
	require.NotNil(t, fence, "fences recorded for monthly charges")
	require.Less(t, fence.Lower, 3000.0)

	assert.Equal(t, fence.Lower, out[0].MonthlyCharges, "low outlier lands exactly on the lower fence")
	assert.Positive(t, report.Winsorized)
}

// Every numeric field gets fenced, and after treatment no value of any
// field sits outside its fences.
func TestTreatBoundsEveryNumericField(t *testing.T) {
	w := NewWinsorizer(DefaultIQRMultiplier, nil)

	records := cleanBatch(40)
	for i := range records {
		// Spread each field so every fence has a non-degenerate IQR.
		records[i].TenureMonths = float64(1 + i%30)
		records[i].TotalCharges = 50000 + float64(i%25)*1000
		records[i].NumServices = float64(1 + i%5)
		records[i].DataUsageGB = float64(5 + i%40)
		records[i].SupportCalls = float64(i % 6)
		records[i].LatePaymentCount = float64(i % 4)
		records[i].ReferralCount = float64(i % 3)
	}
	records[0].TenureMonths = 900
	records[1].MonthlyCharges = 90000
	records[2].TotalCharges = 9e6
	records[3].NumServices = 50
	records[4].DataUsageGB = 4000
	records[5].SupportCalls = 200
	records[6].LatePaymentCount = 80
	records[7].ReferralCount = 60

	report := &domain.RepairReport{}
	out := w.Treat(context.Background(), records, report)

	require.Len(t, report.WinsorFences, len(NumericFields()))
	for _, b := range report.WinsorFences {
		for i := range out {
			v := *numericPtr(&out[i], b.Field)
			assert.GreaterOrEqual(t, v, b.Lower, "%s record %d", b.Field, i)
			assert.LessOrEqual(t, v, b.Upper, "%s record %d", b.Field, i)
		}
	}
}

func TestTreatDoesNotMutateInput(t *testing.T) {
	w := NewWinsorizer(DefaultIQRMultiplier, nil)

	records := cleanBatch(40)
	records[0].MonthlyCharges = 90000
	before := records[0].MonthlyCharges

	_ = w.Treat(context.Background(), records, &domain.RepairReport{})
	assert.Equal(t, before, records[0].MonthlyCharges)
}

func TestTreatIsIdempotent(t *testing.T) {
	w := NewWinsorizer(DefaultIQRMultiplier, nil)

	records := cleanBatch(40)
	records[0].MonthlyCharges = 90000
	records[1].DataUsageGB = 5000
	records[2].SupportCalls = 300

	first := w.Treat(context.Background(), records, &domain.RepairReport{})

	secondReport := &domain.RepairReport{}
	second := w.Treat(context.Background(), first, secondReport)

	assert.Zero(t, secondReport.Winsorized, "second pass must clamp nothing")
	assert.Equal(t, first, second)
}

func TestTreatSkipsTinyPopulations(t *testing.T) {
	w := NewWinsorizer(DefaultIQRMultiplier, nil)

	report := &domain.RepairReport{}
	out := w.Treat(context.Background(), cleanBatch(3), report)

	assert.Len(t, out, 3)
	assert.Empty(t, report.WinsorFences)
	assert.Zero(t, report.Winsorized)
}

func TestNewWinsorizerDefaultsMultiplier(t *testing.T) {
	w := NewWinsorizer(-1, nil)
	assert.Equal(t, DefaultIQRMultiplier, w.multiplier)
}
