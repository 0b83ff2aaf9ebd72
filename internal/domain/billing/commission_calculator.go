package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionResult is the outcome of evaluating commission rules against one
// billing summary. A zero result means no commission line is emitted.
type CommissionResult struct {
	CommissionAmount decimal.Decimal
	TaxAmount        decimal.Decimal
	TotalAmount      decimal.Decimal
	MatchedRuleIDs   []string
}

// IsZero reports whether the result carries no billable commission
func (r CommissionResult) IsZero() bool {
	return !r.CommissionAmount.IsPositive()
}

// CommissionCalculator evaluates commission rules. It is a pure domain
// service: no I/O, deterministic for a given summary and rule set.
type CommissionCalculator struct{}

// NewCommissionCalculator creates a new CommissionCalculator
func NewCommissionCalculator() *CommissionCalculator {
	return &CommissionCalculator{}
}

var oneHundred = decimal.NewFromInt(100)

// Calculate accumulates every matching rule additively against the summary.
// Multiple matching rules stack; there is no highest-priority-wins selection.
// Management-fee rules are excluded here: they bind once per invoice, not per
// collector summary.
//
// Percentage rules scope their base by billing type; ALL applies to the
// summary subtotal. Flat rules contribute their value unscaled.
func (c *CommissionCalculator) Calculate(summary *BillingSummary, rules []CommissionRule, taxRate decimal.Decimal) CommissionResult {
	amount := decimal.Zero
	var matched []string

	for i := range rules {
		rule := &rules[i]
		if rule.IsManagementFee() {
			continue
		}
		if !rule.IsEffectiveFor(summary.BillingMonth) {
			continue
		}
		if !rule.AppliesToCollector(summary.CollectorID) {
			continue
		}

		var contribution decimal.Decimal
		switch rule.CommissionType {
		case CommissionTypeFixedAmount:
			contribution = rule.CommissionValue
		case CommissionTypePercentage:
			var base decimal.Decimal
			switch rule.BillingType {
			case RuleBillingTypeMetered:
				base = summary.TotalMeteredAmount
			case RuleBillingTypeFixed:
				base = summary.TotalFixedAmount
			case RuleBillingTypeOther:
				base = summary.TotalOtherAmount
			case RuleBillingTypeAll:
				base = summary.SubtotalAmount
			default:
				continue
			}
			contribution = base.Mul(rule.CommissionValue).Div(oneHundred)
		default:
			continue
		}

		amount = amount.Add(contribution)
		matched = append(matched, rule.ID.String())
	}

	if !amount.IsPositive() {
		return CommissionResult{
			CommissionAmount: decimal.Zero,
			TaxAmount:        decimal.Zero,
			TotalAmount:      decimal.Zero,
		}
	}

	tax := TruncateTax(amount, taxRate)
	return CommissionResult{
		CommissionAmount: amount,
		TaxAmount:        tax,
		TotalAmount:      amount.Add(tax),
		MatchedRuleIDs:   matched,
	}
}

// ManagementFee evaluates the distinguished management-fee rules for one
// billing month. Each matching rule contributes its value as a flat amount;
// nothing is scaled by collector summaries.
func (c *CommissionCalculator) ManagementFee(rules []CommissionRule, month time.Time, taxRate decimal.Decimal) CommissionResult {
	amount := decimal.Zero
	var matched []string

	for i := range rules {
		rule := &rules[i]
		if !rule.IsManagementFee() {
			continue
		}
		if !rule.IsEffectiveFor(month) {
			continue
		}
		amount = amount.Add(rule.CommissionValue)
		matched = append(matched, rule.ID.String())
	}

	if !amount.IsPositive() {
		return CommissionResult{
			CommissionAmount: decimal.Zero,
			TaxAmount:        decimal.Zero,
			TotalAmount:      decimal.Zero,
		}
	}

	tax := TruncateTax(amount, taxRate)
	return CommissionResult{
		CommissionAmount: amount,
		TaxAmount:        tax,
		TotalAmount:      amount.Add(tax),
		MatchedRuleIDs:   matched,
	}
}
