package features

// Feature names, grouped by rationale. The declaration order here is the
// candidate column order; the fitted column order is this list minus the
// collinearity exclusions chosen at fit time.
const (
	// Tenure
	FeatTenureBin     = "tenure_bin"
	FeatIsNewCustomer = "is_new_customer"
	FeatIsEstablished = "is_established"
	FeatTenureLog     = "tenure_log"

	// Financial
	FeatAvgMonthlyRevenue = "avg_monthly_revenue"
	FeatIsHighValue       = "is_high_value"
	FeatPriceSensitivity  = "price_sensitivity"
	FeatMonthlyChargesLog = "monthly_charges_log"

	// Behavioral
	FeatSupportIntensity = "support_intensity"
	FeatIsHeavySupport   = "is_heavy_support"
	FeatLatePaymentFlag  = "late_payment_flag"
	FeatFinancialStress  = "financial_stress"
	FeatUsageEfficiency  = "usage_efficiency"
	FeatUsageTierRatio   = "usage_tier_ratio"

	// Engagement
	FeatAutopayBinary = "autopay_binary"
	FeatReferralFlag  = "referral_flag"
	FeatLoyaltyScore  = "loyalty_score"

	// Contract
	FeatContractRisk           = "contract_risk"
	FeatContractTenureMismatch = "contract_tenure_mismatch"
	FeatPaymentFriction        = "payment_friction"
	FeatIsMPesa                = "is_mpesa"

	// Interactions
	FeatHighValueMTM     = "high_value_mtm"
	FeatNewNoAutopay     = "new_no_autopay"
	FeatSupportLateCombo = "support_late_combo"
	FeatPremiumLowUsage  = "premium_low_usage"
	FeatBundledLoyal     = "bundled_loyal"

	// Encodings
	FeatServiceEncoded = "service_encoded"
	FeatPayBank        = "pay_bank"
	FeatPayCredit      = "pay_credit"
	FeatPayDebit       = "pay_debit"
	FeatPayCash        = "pay_cash"
	FeatLocSuburban    = "loc_suburban"
	FeatLocRural       = "loc_rural"

	// Pass-through
	FeatNumServices        = "num_services"
	FeatChargesAnomalyFlag = "charges_anomaly_flag"
)

// CandidateNames returns every derivable feature name in declaration
// order.
func CandidateNames() []string {
	return []string{
		FeatTenureBin, FeatIsNewCustomer, FeatIsEstablished, FeatTenureLog,
		FeatAvgMonthlyRevenue, FeatIsHighValue, FeatPriceSensitivity, FeatMonthlyChargesLog,
		FeatSupportIntensity, FeatIsHeavySupport, FeatLatePaymentFlag, FeatFinancialStress,
		FeatUsageEfficiency, FeatUsageTierRatio,
		FeatAutopayBinary, FeatReferralFlag, FeatLoyaltyScore,
		FeatContractRisk, FeatContractTenureMismatch, FeatPaymentFriction, FeatIsMPesa,
		FeatHighValueMTM, FeatNewNoAutopay, FeatSupportLateCombo, FeatPremiumLowUsage, FeatBundledLoyal,
		FeatServiceEncoded, FeatPayBank, FeatPayCredit, FeatPayDebit, FeatPayCash,
		FeatLocSuburban, FeatLocRural,
		FeatNumServices, FeatChargesAnomalyFlag,
	}
}
