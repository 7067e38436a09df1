package canonical

import (
	"strings"
	"unicode"

	"churnctl/pkg/contracts/domain"
)

// synonymGroup maps a set of normalized spellings to one canonical label.
type synonymGroup struct {
	label    string
	synonyms []string
}

// The tables are ordered: the first group containing the normalized input
// wins. Spellings come from the raw feeds seen in production exports
// (MTM, "Month to Month", "1-Year", "Bank_Transfer", ...).
var (
	contractGroups = []synonymGroup{
		{string(domain.ContractMonthToMonth), []string{"monthtomonth", "mtm", "monthly"}},
		{string(domain.ContractOneYear), []string{"oneyear", "1year", "12months", "annual"}},
		{string(domain.ContractTwoYear), []string{"twoyear", "2year", "24months", "biennial"}},
	}

	tierGroups = []synonymGroup{
		{string(domain.TierBasic), []string{"basic"}},
		{string(domain.TierStandard), []string{"standard", "std"}},
		{string(domain.TierPremium), []string{"premium", "prem"}},
	}

	paymentGroups = []synonymGroup{
		{string(domain.PayMPesa), []string{"mpesa"}},
		{string(domain.PayBankTransfer), []string{"banktransfer", "bank"}},
		{string(domain.PayCreditCard), []string{"creditcard", "credit"}},
		{string(domain.PayDebitCard), []string{"debitcard", "debit"}},
		{string(domain.PayCash), []string{"cash"}},
	}

	locationGroups = []synonymGroup{
		{string(domain.LocationSuburban), []string{"suburban", "suburb"}},
		{string(domain.LocationUrban), []string{"urban", "city"}},
		{string(domain.LocationRural), []string{"rural", "countryside"}},
	}

	autopayGroups = []synonymGroup{
		{string(domain.AutopayYes), []string{"yes", "y", "true", "1", "enabled", "on"}},
		{string(domain.AutopayNo), []string{"no", "n", "false", "0", "disabled", "off"}},
	}
)

// Canonicalizer resolves free-form categorical values against the closed
// vocabularies. The zero value is ready to use.
type Canonicalizer struct{}

// New returns a Canonicalizer.
func New() *Canonicalizer {
	return &Canonicalizer{}
}

// Contract maps a free-form contract type to its canonical label.
func (c *Canonicalizer) Contract(s string) domain.ContractType {
	return domain.ContractType(match(s, contractGroups, string(domain.ContractUnknown)))
}

// Tier maps a free-form service tier to its canonical label.
func (c *Canonicalizer) Tier(s string) domain.ServiceTier {
	return domain.ServiceTier(match(s, tierGroups, string(domain.TierUnknown)))
}

// Payment maps a free-form payment method to its canonical label.
func (c *Canonicalizer) Payment(s string) domain.PaymentMethod {
	return domain.PaymentMethod(match(s, paymentGroups, string(domain.PayUnknown)))
}

// Location maps a free-form location type to its canonical label.
func (c *Canonicalizer) Location(s string) domain.LocationType {
	return domain.LocationType(match(s, locationGroups, string(domain.LocationUnknown)))
}

// Autopay maps a free-form autopay flag to its canonical label.
func (c *Canonicalizer) Autopay(s string) domain.AutopayFlag {
	return domain.AutopayFlag(match(s, autopayGroups, string(domain.AutopayUnknown)))
}

func match(s string, groups []synonymGroup, unknown string) string {
	key := Normalize(s)
	if key == "" {
		return unknown
	}
	for _, g := range groups {
		// A canonical label always maps to itself, which is what makes
		// re-canonicalization a no-op.
		if key == Normalize(g.label) {
			return g.label
		}
		for _, syn := range g.synonyms {
			if key == syn {
				return g.label
			}
		}
	}
	return unknown
}

// Normalize folds case and strips whitespace and punctuation, reducing a
// spelling to the form the synonym tables are keyed by.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
