package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommissionRule_Validation(t *testing.T) {
	orgID := uuid.New()
	from := month(2026, time.January)

	_, err := NewCommissionRule(uuid.Nil, nil, RuleBillingTypeAll, CommissionTypePercentage, decimal.NewFromInt(5), from, nil)
	assert.Error(t, err)

	_, err = NewCommissionRule(orgID, nil, "BOGUS", CommissionTypePercentage, decimal.NewFromInt(5), from, nil)
	assert.Error(t, err)

	_, err = NewCommissionRule(orgID, nil, RuleBillingTypeAll, "BOGUS", decimal.NewFromInt(5), from, nil)
	assert.Error(t, err)

	_, err = NewCommissionRule(orgID, nil, RuleBillingTypeAll, CommissionTypePercentage, decimal.NewFromInt(-5), from, nil)
	assert.Error(t, err)

	to := month(2025, time.June)
	_, err = NewCommissionRule(orgID, nil, RuleBillingTypeAll, CommissionTypePercentage, decimal.NewFromInt(5), from, &to)
	assert.Error(t, err)
}

func TestCommissionRule_IsEffectiveFor(t *testing.T) {
	orgID := uuid.New()
	to := month(2026, time.June)
	r, err := NewCommissionRule(orgID, nil, RuleBillingTypeMetered, CommissionTypePercentage,
		decimal.NewFromInt(5), month(2026, time.March), &to)
	require.NoError(t, err)

	assert.False(t, r.IsEffectiveFor(month(2026, time.February)))
	assert.True(t, r.IsEffectiveFor(month(2026, time.March)))
	assert.True(t, r.IsEffectiveFor(month(2026, time.June)))
	assert.False(t, r.IsEffectiveFor(month(2026, time.July)))

	r.Deactivate()
	assert.False(t, r.IsEffectiveFor(month(2026, time.April)))
}

func TestCommissionRule_IsManagementFee(t *testing.T) {
	orgID := uuid.New()
	collectorID := uuid.New()
	from := month(2026, time.January)

	fee, err := NewCommissionRule(orgID, nil, RuleBillingTypeOther, CommissionTypeFixedAmount, decimal.NewFromInt(30000), from, nil)
	require.NoError(t, err)
	assert.True(t, fee.IsManagementFee())

	scoped, err := NewCommissionRule(orgID, &collectorID, RuleBillingTypeOther, CommissionTypeFixedAmount, decimal.NewFromInt(30000), from, nil)
	require.NoError(t, err)
	assert.False(t, scoped.IsManagementFee())

	metered, err := NewCommissionRule(orgID, nil, RuleBillingTypeMetered, CommissionTypePercentage, decimal.NewFromInt(5), from, nil)
	require.NoError(t, err)
	assert.False(t, metered.IsManagementFee())
}
