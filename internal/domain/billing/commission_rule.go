package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wastebill/backend/internal/domain/shared"
)

// RuleBillingType is the billing-type scope of a commission rule
type RuleBillingType string

const (
	RuleBillingTypeAll     RuleBillingType = "ALL"
	RuleBillingTypeFixed   RuleBillingType = "FIXED"
	RuleBillingTypeMetered RuleBillingType = "METERED"
	RuleBillingTypeOther   RuleBillingType = "OTHER"
)

// IsValid checks if the rule billing type is valid
func (t RuleBillingType) IsValid() bool {
	switch t {
	case RuleBillingTypeAll, RuleBillingTypeFixed, RuleBillingTypeMetered, RuleBillingTypeOther:
		return true
	}
	return false
}

// CommissionType determines how a rule's value is applied
type CommissionType string

const (
	CommissionTypePercentage  CommissionType = "PERCENTAGE"   // value is a percentage of the scoped base
	CommissionTypeFixedAmount CommissionType = "FIXED_AMOUNT" // value is a flat yen amount
)

// IsValid checks if the commission type is valid
func (t CommissionType) IsValid() bool {
	return t == CommissionTypePercentage || t == CommissionTypeFixedAmount
}

// CommissionRule is a policy computing the tenant operator's cut atop a
// collector's billed amount. A nil CollectorID scopes the rule to every
// collector of the organization.
type CommissionRule struct {
	shared.BaseAggregateRoot
	OrgID           uuid.UUID
	CollectorID     *uuid.UUID
	BillingType     RuleBillingType
	CommissionType  CommissionType
	CommissionValue decimal.Decimal
	IsActive        bool
	EffectiveFrom   time.Time
	EffectiveTo     *time.Time
}

// NewCommissionRule creates a new active commission rule
func NewCommissionRule(orgID uuid.UUID, collectorID *uuid.UUID, billingType RuleBillingType, commissionType CommissionType, value decimal.Decimal, effectiveFrom time.Time, effectiveTo *time.Time) (*CommissionRule, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Organization ID is required")
	}
	if !billingType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid rule billing type")
	}
	if !commissionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid commission type")
	}
	if value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Commission value cannot be negative")
	}
	if effectiveTo != nil && effectiveTo.Before(effectiveFrom) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Effective-to date precedes effective-from date")
	}

	return &CommissionRule{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrgID:             orgID,
		CollectorID:       collectorID,
		BillingType:       billingType,
		CommissionType:    commissionType,
		CommissionValue:   value,
		IsActive:          true,
		EffectiveFrom:     NormalizeMonth(effectiveFrom),
		EffectiveTo:       effectiveTo,
	}, nil
}

// IsEffectiveFor reports whether the rule is active for the given billing month
func (r *CommissionRule) IsEffectiveFor(month time.Time) bool {
	if !r.IsActive {
		return false
	}
	m := NormalizeMonth(month)
	if r.EffectiveFrom.After(m) {
		return false
	}
	if r.EffectiveTo != nil && r.EffectiveTo.Before(m) {
		return false
	}
	return true
}

// AppliesToCollector reports whether the rule is scoped to the collector.
// Rules with no collector apply to all collectors.
func (r *CommissionRule) AppliesToCollector(collectorID uuid.UUID) bool {
	return r.CollectorID == nil || *r.CollectorID == collectorID
}

// IsManagementFee identifies the distinguished management-fee rule: scoped to
// no collector and typed OTHER. It is applied exactly once per invoice, never
// per collector summary.
func (r *CommissionRule) IsManagementFee() bool {
	return r.CollectorID == nil && r.BillingType == RuleBillingTypeOther
}

// Deactivate marks the rule inactive
func (r *CommissionRule) Deactivate() {
	r.IsActive = false
}
