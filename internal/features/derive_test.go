package features

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnctl/pkg/contracts/domain"
)

func fittedForTest(t *testing.T) *FittedStatistics {
	t.Helper()
	train := []domain.CleanRecord{
		record("A", domain.TierBasic, 1500, 8),
		record("B", domain.TierStandard, 2500, 22),
		record("C", domain.TierStandard, 2600, 25),
		record("D", domain.TierPremium, 6000, 48),
	}
	fs, err := Fit(context.Background(), train, FitOptions{}, nil)
	require.NoError(t, err)
	return fs
}

func TestDeriveKnownValues(t *testing.T) {
	// Hand-built statistics keep the expected values independent of
	// quantile mechanics and collinearity pruning.
	fs := &FittedStatistics{
		MedianChargesByTier: map[domain.ServiceTier]float64{
			domain.TierStandard: 2500,
		},
		MedianUsageByTier: map[domain.ServiceTier]float64{
			domain.TierStandard: 20,
		},
		MonthlyChargesP75: 2600,
		DataUsageP25:      8,
		Columns:           CandidateNames(),
	}

	r := domain.CleanRecord{
		CustomerID:       "CUST000099",
		TenureMonths:     3,
		ContractType:     domain.ContractMonthToMonth,
		ServiceType:      domain.TierStandard,
		MonthlyCharges:   5000,
		TotalCharges:     15000,
		PaymentMethod:    domain.PayCash,
		LocationType:     domain.LocationRural,
		NumServices:      1,
		DataUsageGB:      10,
		SupportCalls:     6,
		AutopayEnabled:   false,
		LatePaymentCount: 3,
		ReferralCount:    0,
		Churned:          1,
	}
	got := deriveCandidates(r, fs)

	assert.Equal(t, 0.0, got[FeatTenureBin])
	assert.Equal(t, 1.0, got[FeatIsNewCustomer])
	assert.Equal(t, 0.0, got[FeatIsEstablished])
	assert.InDelta(t, math.Log1p(3), got[FeatTenureLog], 1e-12)
	assert.Equal(t, 5000.0, got[FeatAvgMonthlyRevenue])
	assert.Equal(t, 1.0, got[FeatIsHighValue], "5000 exceeds the fitted p75")
	assert.InDelta(t, 5000.0/2500.0, got[FeatPriceSensitivity], 1e-12)
	assert.Equal(t, 1.0, got[FeatIsHeavySupport])
	assert.Equal(t, 2.0, got[FeatSupportIntensity])
	assert.Equal(t, 1.0, got[FeatLatePaymentFlag])
	assert.Equal(t, 2.0, got[FeatFinancialStress])
	assert.Equal(t, 5.0, got[FeatUsageEfficiency])
	assert.Equal(t, 0.0, got[FeatAutopayBinary])
	assert.Equal(t, 0.0, got[FeatLoyaltyScore])
	assert.Equal(t, 2.0, got[FeatContractRisk])
	assert.Equal(t, 0.0, got[FeatContractTenureMismatch])
	assert.Equal(t, 1.0, got[FeatPaymentFriction], "cash without autopay")
	assert.Equal(t, 1.0, got[FeatHighValueMTM])
	assert.Equal(t, 1.0, got[FeatNewNoAutopay])
	assert.Equal(t, 1.0, got[FeatSupportLateCombo])
	assert.Equal(t, 1.0, got[FeatServiceEncoded])
	assert.Equal(t, 1.0, got[FeatPayCash])
	assert.Equal(t, 1.0, got[FeatLocRural])
	assert.Equal(t, 0.0, got[FeatLocSuburban])
	assert.Equal(t, 1.0, got[FeatNumServices])

	assert.Len(t, got, len(CandidateNames()))
}

func TestDeriveIsDeterministic(t *testing.T) {
	fs := fittedForTest(t)
	d, err := NewDeriver(fs, 1)
	require.NoError(t, err)

	r := record("X", domain.TierPremium, 5800, 30)
	assert.Equal(t, d.Derive(r), d.Derive(r))
}

func TestDeriveRatioFallsBackForUnseenTier(t *testing.T) {
	// Fit without any premium-tier records.
	train := []domain.CleanRecord{
		record("A", domain.TierBasic, 1500, 8),
		record("B", domain.TierBasic, 1600, 9),
		record("C", domain.TierStandard, 2500, 22),
		record("D", domain.TierStandard, 2600, 25),
	}
	fs, err := Fit(context.Background(), train, FitOptions{}, nil)
	require.NoError(t, err)
	d, err := NewDeriver(fs, 1)
	require.NoError(t, err)

	vec := d.Derive(record("Z", domain.TierPremium, 9999, 77))
	assert.Equal(t, 1.0, featureValue(t, d, vec, FeatPriceSensitivity))
	assert.Equal(t, 1.0, featureValue(t, d, vec, FeatUsageTierRatio))
}

func TestDeriveAllMatchesSequentialDerive(t *testing.T) {
	fs := fittedForTest(t)
	d, err := NewDeriver(fs, 4)
	require.NoError(t, err)

	records := make([]domain.CleanRecord, 0, 100)
	for i := 0; i < 100; i++ {
		records = append(records, record(string(rune('A'+i%26)), domain.TierStandard, 2000+float64(i), 20))
	}

	got, err := d.DeriveAll(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, got, len(records))

	for i, r := range records {
		assert.Equal(t, d.Derive(r), got[i])
	}
}

func TestDeriveAllHonorsCancelledContext(t *testing.T) {
	fs := fittedForTest(t)
	d, err := NewDeriver(fs, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = d.DeriveAll(ctx, []domain.CleanRecord{record("A", domain.TierBasic, 1500, 8)})
	assert.Error(t, err)
}

func TestMatrixShape(t *testing.T) {
	fs := fittedForTest(t)
	d, err := NewDeriver(fs, 1)
	require.NoError(t, err)

	records := []domain.CleanRecord{
		record("A", domain.TierBasic, 1500, 8),
		record("B", domain.TierStandard, 2500, 22),
	}
	records[1].Churned = 1

	vectors, err := d.DeriveAll(context.Background(), records)
	require.NoError(t, err)

	x, y, err := Matrix(vectors, records)
	require.NoError(t, err)
	assert.Len(t, x, 2)
	assert.Len(t, x[0], len(fs.Columns))
	assert.Equal(t, []float64{0, 1}, y)

	_, _, err = Matrix(vectors[:1], records)
	assert.Error(t, err)
}

func TestNewDeriverRequiresStats(t *testing.T) {
	_, err := NewDeriver(nil, 1)
	assert.Error(t, err)
}
