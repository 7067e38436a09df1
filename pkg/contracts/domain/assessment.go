package domain

// RiskTier is the discretized churn-risk band used for retention triage.
type RiskTier string

const (
	RiskHigh   RiskTier = "HIGH"
	RiskMedium RiskTier = "MEDIUM"
	RiskLow    RiskTier = "LOW"
)

// Attribution is one feature's contribution to a scored probability.
// Magnitude is always non-negative; RaisesRisk carries the sign so a
// human-readable explanation never has to re-derive it.
type Attribution struct {
	Feature    string  `json:"feature"`
	Magnitude  float64 `json:"magnitude"`
	RaisesRisk bool    `json:"raises_risk"`
}

// Recommendation is one retention action suggested for a customer.
type Recommendation struct {
	Priority string `json:"priority"` // URGENT, HIGH, MEDIUM
	Action   string `json:"action"`
	Impact   string `json:"impact"`
}

// RiskAssessment is the per-customer output of the scoring pipeline.
type RiskAssessment struct {
	CustomerID      string           `json:"customer_id"`
	Probability     float64          `json:"probability"`
	Tier            RiskTier         `json:"tier"`
	TopDrivers      []Attribution    `json:"top_drivers"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}
