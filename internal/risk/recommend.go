package risk

import (
	"churnctl/pkg/contracts/domain"
)

// highValueCharge is the monthly charge above which a customer gets the
// VIP retention treatment, in the same currency unit as the dataset.
const highValueCharge = 6200

// recommend applies the retention playbook to one customer. Rules fire
// independently; the list is ordered by rule priority.
func recommend(r domain.CleanRecord, probability float64, t Thresholds) []domain.Recommendation {
	var recs []domain.Recommendation

	if probability >= t.High {
		recs = append(recs, domain.Recommendation{
			Priority: "URGENT",
			Action:   "Schedule immediate retention call",
			Impact:   "Direct intervention for high-risk customer",
		})
	}
	if r.ContractType == domain.ContractMonthToMonth {
		recs = append(recs, domain.Recommendation{
			Priority: "HIGH",
			Action:   "Offer 12-month contract with 15% discount",
			Impact:   "Reduces churn odds by ~75%",
		})
	}
	if r.TenureMonths < 6 {
		recs = append(recs, domain.Recommendation{
			Priority: "HIGH",
			Action:   "Assign dedicated onboarding specialist",
			Impact:   "New customers carry +25% churn risk",
		})
	}
	if r.SupportCalls > 3 {
		recs = append(recs, domain.Recommendation{
			Priority: "HIGH",
			Action:   "Escalate to customer success manager",
			Impact:   "Heavy support users carry +15% churn risk",
		})
	}
	if r.MonthlyCharges > highValueCharge {
		recs = append(recs, domain.Recommendation{
			Priority: "HIGH",
			Action:   "VIP retention call and loyalty reward program",
			Impact:   "High-value customers need special attention",
		})
	}
	if !r.AutopayEnabled {
		recs = append(recs, domain.Recommendation{
			Priority: "MEDIUM",
			Action:   "Enable autopay with bill credit incentive",
			Impact:   "Reduces churn odds by ~8%",
		})
	}
	if r.LatePaymentCount > 2 {
		recs = append(recs, domain.Recommendation{
			Priority: "MEDIUM",
			Action:   "Offer flexible payment plan",
			Impact:   "Financial stress increases churn risk",
		})
	}

	return recs
}
