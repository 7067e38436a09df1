package features

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"churnctl/pkg/contracts/domain"
)

// Vector is one record's derived features in the fitted column order.
type Vector struct {
	CustomerID string
	Values     []float64
}

// Deriver computes feature vectors against one FittedStatistics value.
type Deriver struct {
	stats   *FittedStatistics
	workers int
}

// NewDeriver creates a deriver. Workers caps stage-internal parallelism;
// zero means GOMAXPROCS.
func NewDeriver(stats *FittedStatistics, workers int) (*Deriver, error) {
	if stats == nil || len(stats.Columns) == 0 {
		return nil, fmt.Errorf("deriver requires fitted statistics")
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Deriver{stats: stats, workers: workers}, nil
}

// Columns returns the fitted feature order.
func (d *Deriver) Columns() []string {
	return append([]string(nil), d.stats.Columns...)
}

// Derive computes the feature vector for one record. Identical input
// always yields the identical vector.
func (d *Deriver) Derive(r domain.CleanRecord) Vector {
	candidates := deriveCandidates(r, d.stats)
	values := make([]float64, len(d.stats.Columns))
	for i, name := range d.stats.Columns {
		values[i] = candidates[name]
	}
	return Vector{CustomerID: r.CustomerID, Values: values}
}

// DeriveAll computes vectors for every record, sharded across workers.
// The statistics are shared read-only; workers write disjoint slices.
func (d *Deriver) DeriveAll(ctx context.Context, records []domain.CleanRecord) ([]Vector, error) {
	out := make([]Vector, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	shard := (len(records) + d.workers - 1) / d.workers
	if shard < 1 {
		shard = 1
	}
	for lo := 0; lo < len(records); lo += shard {
		lo, hi := lo, lo+shard
		if hi > len(records) {
			hi = len(records)
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				out[i] = d.Derive(records[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("derive features: %w", err)
	}
	return out, nil
}

// Matrix assembles vectors into a row-major matrix plus the label vector,
// the shape the trainer boundary accepts.
func Matrix(vectors []Vector, records []domain.CleanRecord) ([][]float64, []float64, error) {
	if len(vectors) != len(records) {
		return nil, nil, fmt.Errorf("matrix: %d vectors for %d records", len(vectors), len(records))
	}
	rows := make([][]float64, len(vectors))
	labels := make([]float64, len(records))
	for i := range vectors {
		rows[i] = vectors[i].Values
		labels[i] = float64(records[i].Churned)
	}
	return rows, labels, nil
}

// deriveCandidates computes every candidate feature for one record. The
// churn label is deliberately never consulted.
func deriveCandidates(r domain.CleanRecord, fs *FittedStatistics) map[string]float64 {
	tenure := r.TenureMonths
	tenureFloor := math.Max(tenure, 1)

	isNew := boolToF(tenure < 6)
	isEstablished := boolToF(tenure > 24)
	autopay := boolToF(r.AutopayEnabled)
	isHighValue := boolToF(r.MonthlyCharges > fs.MonthlyChargesP75)
	mtm := boolToF(r.ContractType == domain.ContractMonthToMonth)

	// Stratum ratios fall back to a neutral 1.0 when the fitted tier
	// median is absent, mirroring the fitted-transformer behavior.
	priceSensitivity := 1.0
	if m, ok := fs.MedianChargesByTier[r.ServiceType]; ok && m > 0 {
		priceSensitivity = r.MonthlyCharges / m
	}
	usageTierRatio := 1.0
	if m, ok := fs.MedianUsageByTier[r.ServiceType]; ok && m > 0 {
		usageTierRatio = r.DataUsageGB / m
	}

	return map[string]float64{
		FeatTenureBin:     tenureBin(tenure),
		FeatIsNewCustomer: isNew,
		FeatIsEstablished: isEstablished,
		FeatTenureLog:     math.Log1p(tenure),

		FeatAvgMonthlyRevenue: r.TotalCharges / tenureFloor,
		FeatIsHighValue:       isHighValue,
		FeatPriceSensitivity:  priceSensitivity,
		FeatMonthlyChargesLog: math.Log(math.Max(r.MonthlyCharges, 1)),

		FeatSupportIntensity: r.SupportCalls / tenureFloor,
		FeatIsHeavySupport:   boolToF(r.SupportCalls > 5),
		FeatLatePaymentFlag:  boolToF(r.LatePaymentCount > 0),
		FeatFinancialStress:  financialStressBin(r.LatePaymentCount),
		FeatUsageEfficiency:  r.DataUsageGB / (r.NumServices + 1),
		FeatUsageTierRatio:   usageTierRatio,

		FeatAutopayBinary: autopay,
		FeatReferralFlag:  boolToF(r.ReferralCount > 0),
		// Engagement composite: unit weights on referrals, established
		// tenure and autopay enrollment.
		FeatLoyaltyScore: r.ReferralCount + isEstablished + autopay,

		FeatContractRisk:           contractRisk(r.ContractType),
		FeatContractTenureMismatch: mtm * boolToF(tenure > 12),
		FeatPaymentFriction:        boolToF(r.PaymentMethod == domain.PayCash && !r.AutopayEnabled),
		FeatIsMPesa:                boolToF(r.PaymentMethod == domain.PayMPesa),

		FeatHighValueMTM:     isHighValue * mtm,
		FeatNewNoAutopay:     isNew * boolToF(!r.AutopayEnabled),
		FeatSupportLateCombo: boolToF(r.SupportCalls > 3 && r.LatePaymentCount > 1),
		FeatPremiumLowUsage:  boolToF(r.ServiceType == domain.TierPremium && r.DataUsageGB < fs.DataUsageP25),
		FeatBundledLoyal:     boolToF(r.NumServices >= 3 && tenure > 12),

		FeatServiceEncoded: serviceEncoded(r.ServiceType),
		FeatPayBank:        boolToF(r.PaymentMethod == domain.PayBankTransfer),
		FeatPayCredit:      boolToF(r.PaymentMethod == domain.PayCreditCard),
		FeatPayDebit:       boolToF(r.PaymentMethod == domain.PayDebitCard),
		FeatPayCash:        boolToF(r.PaymentMethod == domain.PayCash),
		FeatLocSuburban:    boolToF(r.LocationType == domain.LocationSuburban),
		FeatLocRural:       boolToF(r.LocationType == domain.LocationRural),

		FeatNumServices:        r.NumServices,
		FeatChargesAnomalyFlag: boolToF(r.ChargesAnomaly),
	}
}

// tenureBin buckets tenure at 5, 12 and 24 months.
func tenureBin(tenure float64) float64 {
	switch {
	case tenure <= 5:
		return 0
	case tenure <= 12:
		return 1
	case tenure <= 24:
		return 2
	default:
		return 3
	}
}

// financialStressBin buckets late payments at 0 and 2.
func financialStressBin(late float64) float64 {
	switch {
	case late <= 0:
		return 0
	case late <= 2:
		return 1
	default:
		return 2
	}
}

// contractRisk is the ordinal commitment encoding: month-to-month
// carries the most churn risk, two-year the least.
func contractRisk(ct domain.ContractType) float64 {
	switch ct {
	case domain.ContractMonthToMonth:
		return 2
	case domain.ContractOneYear:
		return 1
	default:
		return 0
	}
}

func serviceEncoded(t domain.ServiceTier) float64 {
	switch t {
	case domain.TierBasic:
		return 0
	case domain.TierPremium:
		return 2
	default:
		return 1
	}
}

func boolToF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
