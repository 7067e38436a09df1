package features

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnctl/pkg/contracts/domain"
)

func record(id string, tier domain.ServiceTier, monthly, usage float64) domain.CleanRecord {
	return domain.CleanRecord{
		CustomerID:     id,
		TenureMonths:   24,
		ContractType:   domain.ContractOneYear,
		ServiceType:    tier,
		MonthlyCharges: monthly,
		TotalCharges:   monthly * 24,
		PaymentMethod:  domain.PayMPesa,
		LocationType:   domain.LocationUrban,
		NumServices:    3,
		DataUsageGB:    usage,
		SupportCalls:   1,
		ReferralCount:  1,
	}
}

func TestFitRejectsEmptyTraining(t *testing.T) {
	_, err := Fit(context.Background(), nil, FitOptions{}, nil)
	assert.Error(t, err)
}

func TestFitComputesTierMediansAndCutPoints(t *testing.T) {
	train := []domain.CleanRecord{
		record("A", domain.TierBasic, 1000, 5),
		record("B", domain.TierBasic, 2000, 10),
		record("C", domain.TierPremium, 3000, 40),
		record("D", domain.TierPremium, 4000, 50),
	}

	fs, err := Fit(context.Background(), train, FitOptions{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, fs.TrainingRecords)
	assert.Equal(t, 1000.0, fs.MedianChargesByTier[domain.TierBasic])
	assert.Equal(t, 3000.0, fs.MedianChargesByTier[domain.TierPremium])
	assert.Equal(t, 5.0, fs.MedianUsageByTier[domain.TierBasic])
	assert.Equal(t, 40.0, fs.MedianUsageByTier[domain.TierPremium])

	// Empirical quantiles are order statistics of the training values.
	assert.Equal(t, 3000.0, fs.MonthlyChargesP75)
	assert.Equal(t, 5.0, fs.DataUsageP25)
}

// Statistics come from the training partition only, so an evaluation
// record is always measured against training medians, not its own.
func TestFitNeverSeesEvaluationRecords(t *testing.T) {
	train := []domain.CleanRecord{
		record("A", domain.TierStandard, 2000, 20),
		record("B", domain.TierStandard, 2000, 20),
		record("C", domain.TierStandard, 2000, 20),
		record("D", domain.TierStandard, 2000, 20),
	}

	fs, err := Fit(context.Background(), train, FitOptions{}, nil)
	require.NoError(t, err)

	d, err := NewDeriver(fs, 1)
	require.NoError(t, err)

	// An eval record twice as expensive as the training median.
	eval := record("Z", domain.TierStandard, 4000, 20)
	vec := d.Derive(eval)

	assert.Equal(t, 2.0, featureValue(t, d, vec, FeatPriceSensitivity))
}

func TestFitDropsCollinearFeatures(t *testing.T) {
	var train []domain.CleanRecord
	for i := 0; i < 20; i++ {
		r := record(string(rune('A'+i)), domain.TierStandard, 2000+float64(i)*7, 20+float64(i))
		// Referrals move in lockstep with autopay, making referral_flag
		// and loyalty_score linear images of autopay_binary.
		if i%2 == 0 {
			r.AutopayEnabled = true
			r.ReferralCount = 1
		} else {
			r.AutopayEnabled = false
			r.ReferralCount = 0
		}
		train = append(train, r)
	}

	fs, err := Fit(context.Background(), train, FitOptions{CorrelationThreshold: 0.95}, nil)
	require.NoError(t, err)

	assert.Contains(t, fs.Columns, FeatAutopayBinary, "earlier feature of the pair survives")
	assert.Contains(t, fs.Excluded, FeatReferralFlag)
	assert.Contains(t, fs.Excluded, FeatLoyaltyScore)
	assert.NotContains(t, fs.Columns, FeatReferralFlag)

	assert.Equal(t, len(CandidateNames()), len(fs.Columns)+len(fs.Excluded))
}

func TestFitColumnsKeepDeclarationOrder(t *testing.T) {
	train := []domain.CleanRecord{
		record("A", domain.TierBasic, 1000, 5),
		record("B", domain.TierStandard, 2000, 20),
		record("C", domain.TierPremium, 4000, 45),
		record("D", domain.TierPremium, 4100, 60),
	}

	fs, err := Fit(context.Background(), train, FitOptions{}, nil)
	require.NoError(t, err)

	pos := make(map[string]int, len(CandidateNames()))
	for i, name := range CandidateNames() {
		pos[name] = i
	}
	for i := 1; i < len(fs.Columns); i++ {
		assert.Less(t, pos[fs.Columns[i-1]], pos[fs.Columns[i]])
	}
}

func TestArtifactRoundTripsColumns(t *testing.T) {
	train := []domain.CleanRecord{
		record("A", domain.TierBasic, 1000, 5),
		record("B", domain.TierStandard, 2000, 20),
		record("C", domain.TierPremium, 4000, 45),
		record("D", domain.TierPremium, 4100, 60),
	}
	fs, err := Fit(context.Background(), train, FitOptions{}, nil)
	require.NoError(t, err)

	artifact := fs.Artifact()
	assert.Equal(t, fs.Columns, artifact["columns"])
	assert.Equal(t, fs.MonthlyChargesP75, artifact["monthly_charges_p75"])
	assert.Equal(t, fs.TrainingRecords, artifact["training_records"])
}

// featureValue looks up one feature by name in a derived vector.
func featureValue(t *testing.T, d *Deriver, vec Vector, name string) float64 {
	t.Helper()
	for i, col := range d.Columns() {
		if col == name {
			return vec.Values[i]
		}
	}
	t.Fatalf("feature %s not in fitted columns", name)
	return 0
}
