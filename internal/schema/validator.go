package schema

import (
	"fmt"

	"churnctl/pkg/contracts/domain"
)

// FieldKind distinguishes how a field is validated.
type FieldKind int

const (
	KindIdentifier FieldKind = iota
	KindNumeric
	KindCategorical
	KindLabel
)

// FieldSpec declares the contract for a single record field.
type FieldSpec struct {
	Name    string
	Kind    FieldKind
	Min     float64  // numeric floor, inclusive
	Max     float64  // numeric ceiling, inclusive; 0 means unbounded
	Allowed []string // closed vocabulary for categorical fields
}

// Violation tags a single schema defect on a record field.
type Violation struct {
	Field string
	Tag   string
}

func (v Violation) String() string {
	return v.Tag
}

// Spec returns the field specification for the fifteen customer record
// fields. Numeric floors are domain floors: no real account can have a
// negative tenure, charge, or count.
func Spec() []FieldSpec {
	return []FieldSpec{
		{Name: "customer_id", Kind: KindIdentifier},
		{Name: "tenure_months", Kind: KindNumeric, Min: 0},
		{Name: "contract_type", Kind: KindCategorical, Allowed: contractVocab},
		{Name: "service_type", Kind: KindCategorical, Allowed: tierVocab},
		{Name: "monthly_charges", Kind: KindNumeric, Min: 0},
		{Name: "total_charges", Kind: KindNumeric, Min: 0},
		{Name: "payment_method", Kind: KindCategorical, Allowed: paymentVocab},
		{Name: "location_type", Kind: KindCategorical, Allowed: locationVocab},
		{Name: "num_services", Kind: KindNumeric, Min: 0},
		{Name: "data_usage_gb", Kind: KindNumeric, Min: 0},
		{Name: "support_calls", Kind: KindNumeric, Min: 0},
		{Name: "autopay_enabled", Kind: KindCategorical, Allowed: autopayVocab},
		{Name: "late_payment_count", Kind: KindNumeric, Min: 0},
		{Name: "referral_count", Kind: KindNumeric, Min: 0},
		{Name: "churned", Kind: KindLabel},
	}
}

var (
	contractVocab = []string{
		string(domain.ContractMonthToMonth),
		string(domain.ContractOneYear),
		string(domain.ContractTwoYear),
	}
	tierVocab = []string{
		string(domain.TierBasic),
		string(domain.TierStandard),
		string(domain.TierPremium),
	}
	paymentVocab = []string{
		string(domain.PayMPesa),
		string(domain.PayBankTransfer),
		string(domain.PayCreditCard),
		string(domain.PayDebitCard),
		string(domain.PayCash),
	}
	locationVocab = []string{
		string(domain.LocationUrban),
		string(domain.LocationSuburban),
		string(domain.LocationRural),
	}
	autopayVocab = []string{
		string(domain.AutopayYes),
		string(domain.AutopayNo),
	}
)

// Validator checks raw records against the field specification.
type Validator struct {
	specs []FieldSpec
}

// NewValidator builds a validator over the standard field specification.
func NewValidator() *Validator {
	return &Validator{specs: Spec()}
}

// Validate returns the set of violation tags for a raw record. A record
// with an empty result is schema-valid.
func (v *Validator) Validate(r domain.RawRecord) []Violation {
	var out []Violation

	for _, spec := range v.specs {
		switch spec.Kind {
		case KindIdentifier:
			if r.CustomerID == "" {
				out = append(out, Violation{Field: spec.Name, Tag: spec.Name + "_missing"})
			}
		case KindLabel:
			if domain.Missing(r.Churned) {
				out = append(out, Violation{Field: spec.Name, Tag: "label_missing"})
			} else if r.Churned != 0 && r.Churned != 1 {
				out = append(out, Violation{Field: spec.Name, Tag: "label_invalid"})
			}
		case KindNumeric:
			out = append(out, v.checkNumeric(spec, numericValue(r, spec.Name))...)
		case KindCategorical:
			out = append(out, v.checkCategorical(spec, categoricalValue(r, spec.Name))...)
		}
	}

	return out
}

// IsValid reports whether the record has zero violations.
func (v *Validator) IsValid(r domain.RawRecord) bool {
	return len(v.Validate(r)) == 0
}

func (v *Validator) checkNumeric(spec FieldSpec, value float64) []Violation {
	if domain.Missing(value) {
		return []Violation{{Field: spec.Name, Tag: spec.Name + "_missing"}}
	}
	if value < spec.Min {
		return []Violation{{Field: spec.Name, Tag: spec.Name + "_negative"}}
	}
	if spec.Max > 0 && value > spec.Max {
		return []Violation{{Field: spec.Name, Tag: spec.Name + "_out_of_range"}}
	}
	return nil
}

func (v *Validator) checkCategorical(spec FieldSpec, value string) []Violation {
	if value == "" {
		return []Violation{{Field: spec.Name, Tag: spec.Name + "_missing"}}
	}
	for _, allowed := range spec.Allowed {
		if value == allowed {
			return nil
		}
	}
	return []Violation{{Field: spec.Name, Tag: spec.Name + "_unrecognized"}}
}

func numericValue(r domain.RawRecord, field string) float64 {
	switch field {
	case "tenure_months":
		return r.TenureMonths
	case "monthly_charges":
		return r.MonthlyCharges
	case "total_charges":
		return r.TotalCharges
	case "num_services":
		return r.NumServices
	case "data_usage_gb":
		return r.DataUsageGB
	case "support_calls":
		return r.SupportCalls
	case "late_payment_count":
		return r.LatePaymentCount
	case "referral_count":
		return r.ReferralCount
	default:
		panic(fmt.Sprintf("schema: unknown numeric field %q", field))
	}
}

func categoricalValue(r domain.RawRecord, field string) string {
	switch field {
	case "contract_type":
		return r.ContractType
	case "service_type":
		return r.ServiceType
	case "payment_method":
		return r.PaymentMethod
	case "location_type":
		return r.LocationType
	case "autopay_enabled":
		return r.AutopayEnabled
	default:
		panic(fmt.Sprintf("schema: unknown categorical field %q", field))
	}
}
