package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"churnctl/pkg/contracts/domain"
)

func validRecord() domain.RawRecord {
	return domain.RawRecord{
		CustomerID:       "CUST000001",
		TenureMonths:     24,
		ContractType:     string(domain.ContractOneYear),
		ServiceType:      string(domain.TierStandard),
		MonthlyCharges:   3200,
		TotalCharges:     76800,
		PaymentMethod:    string(domain.PayMPesa),
		LocationType:     string(domain.LocationUrban),
		NumServices:      3,
		DataUsageGB:      18.5,
		SupportCalls:     1,
		AutopayEnabled:   string(domain.AutopayYes),
		LatePaymentCount: 0,
		ReferralCount:    2,
		Churned:          0,
	}
}

func TestValidateCleanRecordHasNoViolations(t *testing.T) {
	v := NewValidator()
	assert.Empty(t, v.Validate(validRecord()))
	assert.True(t, v.IsValid(validRecord()))
}

func TestValidateTags(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		mutate  func(*domain.RawRecord)
		wantTag string
	}{
		{
			name:    "missing identifier",
			mutate:  func(r *domain.RawRecord) { r.CustomerID = "" },
			wantTag: "customer_id_missing",
		},
		{
			name:    "negative tenure",
			mutate:  func(r *domain.RawRecord) { r.TenureMonths = -3 },
			wantTag: "tenure_months_negative",
		},
		{
			name:    "missing monthly charges",
			mutate:  func(r *domain.RawRecord) { r.MonthlyCharges = domain.MissingValue() },
			wantTag: "monthly_charges_missing",
		},
		{
			name:    "messy contract spelling",
			mutate:  func(r *domain.RawRecord) { r.ContractType = "month-to-month" },
			wantTag: "contract_type_unrecognized",
		},
		{
			name:    "blank payment method",
			mutate:  func(r *domain.RawRecord) { r.PaymentMethod = "" },
			wantTag: "payment_method_missing",
		},
		{
			name:    "raw autopay flag",
			mutate:  func(r *domain.RawRecord) { r.AutopayEnabled = "true" },
			wantTag: "autopay_enabled_unrecognized",
		},
		{
			name:    "missing label",
			mutate:  func(r *domain.RawRecord) { r.Churned = domain.MissingValue() },
			wantTag: "label_missing",
		},
		{
			name:    "non-binary label",
			mutate:  func(r *domain.RawRecord) { r.Churned = 2 },
			wantTag: "label_invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)
			violations := v.Validate(r)
			tags := make([]string, 0, len(violations))
			for _, viol := range violations {
				tags = append(tags, viol.Tag)
			}
			assert.Contains(t, tags, tt.wantTag)
		})
	}
}

func TestValidateAccumulatesMultipleViolations(t *testing.T) {
	v := NewValidator()

	r := validRecord()
	r.TenureMonths = -1
	r.ContractType = "quarterly"
	r.Churned = domain.MissingValue()

	violations := v.Validate(r)
	assert.Len(t, violations, 3)
}

func TestSpecCoversAllFifteenFields(t *testing.T) {
	assert.Len(t, Spec(), 15)
}
