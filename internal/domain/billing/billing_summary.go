package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wastebill/backend/internal/domain/shared"
)

// SummaryStatus represents the workflow status of a billing summary
type SummaryStatus string

const (
	SummaryStatusDraft     SummaryStatus = "DRAFT"
	SummaryStatusSubmitted SummaryStatus = "SUBMITTED"
	SummaryStatusApproved  SummaryStatus = "APPROVED"
	SummaryStatusRejected  SummaryStatus = "REJECTED"
	SummaryStatusFinalized SummaryStatus = "FINALIZED"
	SummaryStatusCancelled SummaryStatus = "CANCELLED"
)

// IsValid checks if the status is a valid SummaryStatus
func (s SummaryStatus) IsValid() bool {
	switch s {
	case SummaryStatusDraft, SummaryStatusSubmitted, SummaryStatusApproved,
		SummaryStatusRejected, SummaryStatusFinalized, SummaryStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SummaryStatus
func (s SummaryStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the summary is in a terminal state
func (s SummaryStatus) IsTerminal() bool {
	return s == SummaryStatusFinalized || s == SummaryStatusCancelled
}

// TruncateTax computes tax on an amount, truncated toward zero to the nearest
// yen. Amounts in this domain are non-negative, so truncation equals floor.
func TruncateTax(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Truncate(0)
}

// BillingSummary aggregates a collector's approved billing items for one month.
// Exactly one summary exists per (org, collector, month); the uniqueness
// constraint at the storage layer is the authoritative guard.
type BillingSummary struct {
	shared.BaseAggregateRoot
	OrgID        uuid.UUID
	CollectorID  uuid.UUID
	BillingMonth time.Time

	TotalFixedAmount   decimal.Decimal
	TotalMeteredAmount decimal.Decimal
	TotalOtherAmount   decimal.Decimal

	FixedItemsCount   int
	MeteredItemsCount int
	OtherItemsCount   int
	TotalItemsCount   int

	SubtotalAmount decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal

	Status SummaryStatus
}

// NewSummaryFromItems aggregates approved items into a new draft summary.
// Items that fail the aggregation predicate or belong to a different collector
// or month are ignored, so callers can pass the raw query result.
func NewSummaryFromItems(orgID, collectorID uuid.UUID, month time.Time, items []BillingItem, taxRate decimal.Decimal) (*BillingSummary, error) {
	if orgID == uuid.Nil || collectorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Organization and collector IDs are required")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.ErrInvalidTaxRate
	}

	s := &BillingSummary{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrgID:             orgID,
		CollectorID:       collectorID,
		BillingMonth:      NormalizeMonth(month),
		TaxRate:           taxRate,
		Status:            SummaryStatusDraft,
	}
	s.Recompute(items)
	return s, nil
}

// Recompute replaces all totals with a from-scratch aggregation over items.
// Regeneration uses the same path as initial creation so repeated runs over
// the same item set are deterministic.
func (s *BillingSummary) Recompute(items []BillingItem) {
	s.TotalFixedAmount = decimal.Zero
	s.TotalMeteredAmount = decimal.Zero
	s.TotalOtherAmount = decimal.Zero
	s.FixedItemsCount = 0
	s.MeteredItemsCount = 0
	s.OtherItemsCount = 0

	for i := range items {
		item := &items[i]
		if !item.IsAggregatable() {
			continue
		}
		if item.CollectorID != s.CollectorID || !item.BillingMonth.Equal(s.BillingMonth) {
			continue
		}
		switch item.BillingType {
		case BillingTypeFixed:
			s.TotalFixedAmount = s.TotalFixedAmount.Add(item.Amount)
			s.FixedItemsCount++
		case BillingTypeMetered:
			s.TotalMeteredAmount = s.TotalMeteredAmount.Add(item.Amount)
			s.MeteredItemsCount++
		case BillingTypeOther:
			s.TotalOtherAmount = s.TotalOtherAmount.Add(item.Amount)
			s.OtherItemsCount++
		}
	}

	s.TotalItemsCount = s.FixedItemsCount + s.MeteredItemsCount + s.OtherItemsCount
	s.SubtotalAmount = s.TotalFixedAmount.Add(s.TotalMeteredAmount).Add(s.TotalOtherAmount)
	s.TaxAmount = TruncateTax(s.SubtotalAmount, s.TaxRate)
	s.TotalAmount = s.SubtotalAmount.Add(s.TaxAmount)
}

// Regenerate recomputes all totals from items at the given tax rate and
// returns the summary to DRAFT. A summary whose numbers changed must pass
// approval again before it can be invoiced.
func (s *BillingSummary) Regenerate(items []BillingItem, taxRate decimal.Decimal) {
	s.TaxRate = taxRate
	s.Recompute(items)
	s.Status = SummaryStatusDraft
}

// Submit transitions the summary to SUBMITTED
func (s *BillingSummary) Submit() error {
	if s.Status != SummaryStatusDraft && s.Status != SummaryStatusRejected {
		return shared.ErrInvalidState
	}
	s.Status = SummaryStatusSubmitted
	return nil
}

// Approve transitions the summary to APPROVED, making it eligible for
// invoice composition
func (s *BillingSummary) Approve() error {
	if s.Status != SummaryStatusSubmitted && s.Status != SummaryStatusDraft {
		return shared.ErrInvalidState
	}
	s.Status = SummaryStatusApproved
	return nil
}

// Reject transitions the summary to REJECTED
func (s *BillingSummary) Reject() error {
	if s.Status != SummaryStatusSubmitted {
		return shared.ErrInvalidState
	}
	s.Status = SummaryStatusRejected
	return nil
}

// Finalize locks the summary after its invoice has been generated
func (s *BillingSummary) Finalize() error {
	if s.Status != SummaryStatusApproved {
		return shared.ErrInvalidState
	}
	s.Status = SummaryStatusFinalized
	return nil
}

// Cancel transitions the summary to CANCELLED
func (s *BillingSummary) Cancel() error {
	if s.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	s.Status = SummaryStatusCancelled
	return nil
}

// CanRegenerate reports whether the aggregator may overwrite this summary.
// Approved and finalized summaries are regenerable only before invoicing;
// the aggregator refuses to touch finalized ones.
func (s *BillingSummary) CanRegenerate() bool {
	return s.Status != SummaryStatusFinalized
}
