package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasLabel(t *testing.T) {
	assert.True(t, RawRecord{Churned: 0}.HasLabel())
	assert.True(t, RawRecord{Churned: 1}.HasLabel())
	assert.False(t, RawRecord{Churned: MissingValue()}.HasLabel())
	assert.False(t, RawRecord{Churned: 2}.HasLabel())
}

func TestMissingMarker(t *testing.T) {
	assert.True(t, Missing(MissingValue()))
	assert.False(t, Missing(0))
	assert.False(t, Missing(-1))
}

func TestCleanRecordRawEmitsCanonicalSpellings(t *testing.T) {
	c := CleanRecord{
		CustomerID:     "CUST1",
		ContractType:   ContractMonthToMonth,
		ServiceType:    TierPremium,
		PaymentMethod:  PayBankTransfer,
		LocationType:   LocationSuburban,
		AutopayEnabled: true,
		Churned:        1,
	}
	r := c.Raw()

	assert.Equal(t, "MONTH_TO_MONTH", r.ContractType)
	assert.Equal(t, "PREMIUM", r.ServiceType)
	assert.Equal(t, "BANK_TRANSFER", r.PaymentMethod)
	assert.Equal(t, "SUBURBAN", r.LocationType)
	assert.Equal(t, "YES", r.AutopayEnabled)
	assert.Equal(t, 1.0, r.Churned)

	c.AutopayEnabled = false
	assert.Equal(t, "NO", c.Raw().AutopayEnabled)
}

func TestRepairReportTotals(t *testing.T) {
	r := RepairReport{
		DuplicateDropped:      2,
		InvalidCorrected:      3,
		MissingImputed:        5,
		Standardized:          7,
		ExcludedUnrecoverable: 1,
	}
	assert.Equal(t, 18, r.TotalRepairs())
	assert.False(t, r.IsClean())
	assert.True(t, RepairReport{}.IsClean())
}
