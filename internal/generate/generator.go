// Package generate produces synthetic raw customer records with
// intentionally injected defects, for fixtures and demo datasets.
//
// The generator sits entirely outside the cleaning core: the core's
// tests depend only on the defect types it can inject, never on its
// distributions. Identical seed and size always produce the identical
// record set.
package generate

import (
	"fmt"
	"math"
	"math/rand"

	"churnctl/pkg/contracts/domain"
)

// Config controls generation. Rates are per-record probabilities of
// injecting the corresponding defect class.
type Config struct {
	Seed int64

	MissingRate       float64 // blank out one numeric field
	MessySpellingRate float64 // use a free-form categorical spelling
	NegativeRate      float64 // flip one count field negative
	DuplicateRate     float64 // repeat a previously emitted identifier
	MissingLabelRate  float64 // drop the churn label
	MissingIDRate     float64 // drop the identifier
}

// DefaultConfig returns defect rates that leave most records clean while
// exercising every repair rule on a reasonably sized set.
func DefaultConfig(seed int64) Config {
	return Config{
		Seed:              seed,
		MissingRate:       0.06,
		MessySpellingRate: 0.20,
		NegativeRate:      0.03,
		DuplicateRate:     0.02,
		MissingLabelRate:  0.01,
		MissingIDRate:     0.005,
	}
}

// Generator produces seeded synthetic raw records.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a generator for the given configuration.
func New(cfg Config) *Generator {
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

var (
	contractSpellings = map[domain.ContractType][]string{
		domain.ContractMonthToMonth: {"Month-to-Month", "month-to-month", "MTM", "Monthly", "Month to Month"},
		domain.ContractOneYear:      {"One Year", "one year", "1 Year", "1-Year", "12 Months"},
		domain.ContractTwoYear:      {"Two Year", "two year", "2 Year", "2-Year", "24 Months"},
	}
	paymentSpellings = map[domain.PaymentMethod][]string{
		domain.PayMPesa:        {"M-Pesa", "MPESA", "mpesa", "Mpesa"},
		domain.PayBankTransfer: {"Bank Transfer", "bank transfer", "Bank_Transfer"},
		domain.PayCreditCard:   {"Credit Card", "credit card"},
		domain.PayDebitCard:    {"Debit Card", "debit card"},
		domain.PayCash:         {"Cash", "cash", "CASH"},
	}
	tierSpellings = map[domain.ServiceTier][]string{
		domain.TierBasic:    {"Basic", "basic"},
		domain.TierStandard: {"Standard", "standard"},
		domain.TierPremium:  {"Premium", "premium"},
	}
	locationSpellings = map[domain.LocationType][]string{
		domain.LocationUrban:    {"Urban", "urban"},
		domain.LocationSuburban: {"Suburban", "suburban"},
		domain.LocationRural:    {"Rural", "rural"},
	}
	autopaySpellings = map[bool][]string{
		true:  {"Yes", "yes", "Y", "true", "1"},
		false: {"No", "no", "N", "false", "0"},
	}
)

// Generate emits n raw records with seeded defects.
func (g *Generator) Generate(n int) []domain.RawRecord {
	records := make([]domain.RawRecord, 0, n)
	for i := 0; i < n; i++ {
		r := g.nextRecord(i)

		if len(records) > 0 && g.rng.Float64() < g.cfg.DuplicateRate {
			r.CustomerID = records[g.rng.Intn(len(records))].CustomerID
		}
		if g.rng.Float64() < g.cfg.MissingIDRate {
			r.CustomerID = ""
		}
		if g.rng.Float64() < g.cfg.MissingLabelRate {
			r.Churned = domain.MissingValue()
		}
		if g.rng.Float64() < g.cfg.MissingRate {
			g.blankNumeric(&r)
		}
		if g.rng.Float64() < g.cfg.NegativeRate {
			g.flipNegative(&r)
		}

		records = append(records, r)
	}
	return records
}

func (g *Generator) nextRecord(i int) domain.RawRecord {
	tier := g.pickTier()
	contract := g.pickContract()
	payment := g.pickPayment()
	location := g.pickLocation()
	autopay := g.rng.Float64() < 0.55

	tenure := float64(g.rng.Intn(72)) + 1
	monthly := g.monthlyCharge(tier)
	total := monthly * tenure * (0.9 + 0.2*g.rng.Float64())
	usage := g.dataUsage(tier)
	services := float64(1 + g.rng.Intn(5))
	support := float64(g.poissonish(2))
	late := float64(g.poissonish(1))
	referrals := float64(g.poissonish(1))

	return domain.RawRecord{
		CustomerID:       fmt.Sprintf("CUST%06d", i+1),
		TenureMonths:     tenure,
		ContractType:     g.spelling(contractSpellings[contract]),
		ServiceType:      g.spelling(tierSpellings[tier]),
		MonthlyCharges:   monthly,
		TotalCharges:     total,
		PaymentMethod:    g.spelling(paymentSpellings[payment]),
		LocationType:     g.spelling(locationSpellings[location]),
		NumServices:      services,
		DataUsageGB:      usage,
		SupportCalls:     support,
		AutopayEnabled:   g.spelling(autopaySpellings[autopay]),
		LatePaymentCount: late,
		ReferralCount:    referrals,
		Churned:          g.churnLabel(contract, tenure, support, late, autopay),
	}
}

// churnLabel draws the label from a logistic-shaped propensity so the
// generated data carries the relationships the scorer is expected to
// recover: short tenure, month-to-month contracts, heavy support use and
// late payments raise churn; autopay lowers it.
func (g *Generator) churnLabel(contract domain.ContractType, tenure, support, late float64, autopay bool) float64 {
	z := -1.2
	if contract == domain.ContractMonthToMonth {
		z += 1.4
	}
	if tenure < 6 {
		z += 0.8
	}
	if tenure > 24 {
		z -= 0.6
	}
	z += 0.15 * support
	z += 0.25 * late
	if autopay {
		z -= 0.4
	}
	p := 1 / (1 + math.Exp(-z))
	if g.rng.Float64() < p {
		return 1
	}
	return 0
}

func (g *Generator) monthlyCharge(tier domain.ServiceTier) float64 {
	base := map[domain.ServiceTier]float64{
		domain.TierBasic:    2500,
		domain.TierStandard: 5000,
		domain.TierPremium:  8500,
	}[tier]
	return math.Round(base * (0.7 + 0.6*g.rng.Float64()))
}

func (g *Generator) dataUsage(tier domain.ServiceTier) float64 {
	base := map[domain.ServiceTier]float64{
		domain.TierBasic:    30,
		domain.TierStandard: 70,
		domain.TierPremium:  140,
	}[tier]
	return math.Round(base*(0.5+g.rng.Float64())*10) / 10
}

func (g *Generator) pickTier() domain.ServiceTier {
	switch r := g.rng.Float64(); {
	case r < 0.3:
		return domain.TierBasic
	case r < 0.75:
		return domain.TierStandard
	default:
		return domain.TierPremium
	}
}

func (g *Generator) pickContract() domain.ContractType {
	switch r := g.rng.Float64(); {
	case r < 0.5:
		return domain.ContractMonthToMonth
	case r < 0.8:
		return domain.ContractOneYear
	default:
		return domain.ContractTwoYear
	}
}

func (g *Generator) pickPayment() domain.PaymentMethod {
	switch r := g.rng.Float64(); {
	case r < 0.45:
		return domain.PayMPesa
	case r < 0.65:
		return domain.PayBankTransfer
	case r < 0.8:
		return domain.PayCreditCard
	case r < 0.92:
		return domain.PayDebitCard
	default:
		return domain.PayCash
	}
}

func (g *Generator) pickLocation() domain.LocationType {
	switch r := g.rng.Float64(); {
	case r < 0.5:
		return domain.LocationUrban
	case r < 0.8:
		return domain.LocationSuburban
	default:
		return domain.LocationRural
	}
}

// spelling picks a free-form variant at the messy rate, otherwise the
// first (tidy) spelling.
func (g *Generator) spelling(variants []string) string {
	if g.rng.Float64() < g.cfg.MessySpellingRate {
		return variants[g.rng.Intn(len(variants))]
	}
	return variants[0]
}

func (g *Generator) poissonish(mean int) int {
	n := 0
	for i := 0; i < mean*3; i++ {
		if g.rng.Float64() < 1.0/3.0 {
			n++
		}
	}
	return n
}

func (g *Generator) blankNumeric(r *domain.RawRecord) {
	switch g.rng.Intn(4) {
	case 0:
		r.MonthlyCharges = domain.MissingValue()
	case 1:
		r.TotalCharges = domain.MissingValue()
	case 2:
		r.DataUsageGB = domain.MissingValue()
	default:
		r.SupportCalls = domain.MissingValue()
	}
}

func (g *Generator) flipNegative(r *domain.RawRecord) {
	switch g.rng.Intn(3) {
	case 0:
		if !domain.Missing(r.TenureMonths) {
			r.TenureMonths = -r.TenureMonths
		}
	case 1:
		if !domain.Missing(r.SupportCalls) {
			r.SupportCalls = -(r.SupportCalls + 1)
		}
	default:
		if !domain.Missing(r.LatePaymentCount) {
			r.LatePaymentCount = -(r.LatePaymentCount + 1)
		}
	}
}
