package domain

import (
	"math"
)

// ContractType is the closed enumeration for contract_type.
type ContractType string

const (
	ContractMonthToMonth ContractType = "MONTH_TO_MONTH"
	ContractOneYear      ContractType = "ONE_YEAR"
	ContractTwoYear      ContractType = "TWO_YEAR"
	ContractUnknown      ContractType = "UNKNOWN"
)

// ServiceTier is the closed enumeration for service_type.
type ServiceTier string

const (
	TierBasic    ServiceTier = "BASIC"
	TierStandard ServiceTier = "STANDARD"
	TierPremium  ServiceTier = "PREMIUM"
	TierUnknown  ServiceTier = "UNKNOWN"
)

// PaymentMethod is the closed enumeration for payment_method.
type PaymentMethod string

const (
	PayMPesa        PaymentMethod = "MPESA"
	PayBankTransfer PaymentMethod = "BANK_TRANSFER"
	PayCreditCard   PaymentMethod = "CREDIT_CARD"
	PayDebitCard    PaymentMethod = "DEBIT_CARD"
	PayCash         PaymentMethod = "CASH"
	PayUnknown      PaymentMethod = "UNKNOWN"
)

// LocationType is the closed enumeration for location_type.
type LocationType string

const (
	LocationUrban    LocationType = "URBAN"
	LocationSuburban LocationType = "SUBURBAN"
	LocationRural    LocationType = "RURAL"
	LocationUnknown  LocationType = "UNKNOWN"
)

// AutopayFlag is the closed enumeration for autopay_enabled.
type AutopayFlag string

const (
	AutopayYes     AutopayFlag = "YES"
	AutopayNo      AutopayFlag = "NO"
	AutopayUnknown AutopayFlag = "UNKNOWN"
)

// RawRecord is one customer observation as ingested. Numeric fields use
// NaN as the missing marker; categorical fields keep their free-form
// spelling until canonicalization. Immutable once captured.
type RawRecord struct {
	CustomerID       string  `json:"customer_id" csv:"customer_id"`
	TenureMonths     float64 `json:"tenure_months" csv:"tenure_months"`
	ContractType     string  `json:"contract_type" csv:"contract_type"`
	ServiceType      string  `json:"service_type" csv:"service_type"`
	MonthlyCharges   float64 `json:"monthly_charges" csv:"monthly_charges"`
	TotalCharges     float64 `json:"total_charges" csv:"total_charges"`
	PaymentMethod    string  `json:"payment_method" csv:"payment_method"`
	LocationType     string  `json:"location_type" csv:"location_type"`
	NumServices      float64 `json:"num_services" csv:"num_services"`
	DataUsageGB      float64 `json:"data_usage_gb" csv:"data_usage_gb"`
	SupportCalls     float64 `json:"support_calls" csv:"support_calls"`
	AutopayEnabled   string  `json:"autopay_enabled" csv:"autopay_enabled"`
	LatePaymentCount float64 `json:"late_payment_count" csv:"late_payment_count"`
	ReferralCount    float64 `json:"referral_count" csv:"referral_count"`
	Churned          float64 `json:"churned" csv:"churned"` // 0/1, NaN when missing
}

// HasLabel reports whether the churn label is present and binary.
func (r RawRecord) HasLabel() bool {
	return r.Churned == 0 || r.Churned == 1
}

// CleanRecord is a RawRecord after repair: every numeric field inside its
// declared range or explicitly imputed, every categorical mapped into its
// closed enumeration, identifier unique within the run. Never mutated
// after creation.
type CleanRecord struct {
	CustomerID       string        `json:"customer_id" csv:"customer_id"`
	TenureMonths     float64       `json:"tenure_months" csv:"tenure_months"`
	ContractType     ContractType  `json:"contract_type" csv:"contract_type"`
	ServiceType      ServiceTier   `json:"service_type" csv:"service_type"`
	MonthlyCharges   float64       `json:"monthly_charges" csv:"monthly_charges"`
	TotalCharges     float64       `json:"total_charges" csv:"total_charges"`
	PaymentMethod    PaymentMethod `json:"payment_method" csv:"payment_method"`
	LocationType     LocationType  `json:"location_type" csv:"location_type"`
	NumServices      float64       `json:"num_services" csv:"num_services"`
	DataUsageGB      float64       `json:"data_usage_gb" csv:"data_usage_gb"`
	SupportCalls     float64       `json:"support_calls" csv:"support_calls"`
	AutopayEnabled   bool          `json:"autopay_enabled" csv:"autopay_enabled"`
	LatePaymentCount float64       `json:"late_payment_count" csv:"late_payment_count"`
	ReferralCount    float64       `json:"referral_count" csv:"referral_count"`
	Churned          int           `json:"churned" csv:"churned"`

	// ChargesAnomaly marks records whose total/monthly charges were
	// inconsistent before repair; it feeds the charges_anomaly_flag feature.
	ChargesAnomaly bool `json:"charges_anomaly,omitempty" csv:"-"`
}

// Raw converts a CleanRecord back to its raw representation, used when
// re-running the repair stages to assert idempotence and when exporting
// the cleaned dataset with the original column set.
func (c CleanRecord) Raw() RawRecord {
	autopay := string(AutopayNo)
	if c.AutopayEnabled {
		autopay = string(AutopayYes)
	}
	return RawRecord{
		CustomerID:       c.CustomerID,
		TenureMonths:     c.TenureMonths,
		ContractType:     string(c.ContractType),
		ServiceType:      string(c.ServiceType),
		MonthlyCharges:   c.MonthlyCharges,
		TotalCharges:     c.TotalCharges,
		PaymentMethod:    string(c.PaymentMethod),
		LocationType:     string(c.LocationType),
		NumServices:      c.NumServices,
		DataUsageGB:      c.DataUsageGB,
		SupportCalls:     c.SupportCalls,
		AutopayEnabled:   autopay,
		LatePaymentCount: c.LatePaymentCount,
		ReferralCount:    c.ReferralCount,
		Churned:          float64(c.Churned),
	}
}

// Missing reports whether a numeric field value carries the missing marker.
func Missing(v float64) bool {
	return math.IsNaN(v)
}

// MissingValue returns the numeric missing marker.
func MissingValue() float64 {
	return math.NaN()
}
