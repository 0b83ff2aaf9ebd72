package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wastebill/backend/internal/domain/shared"
)

// BillingType classifies a billing line item
type BillingType string

const (
	BillingTypeFixed   BillingType = "FIXED"   // Flat contracted collection charge
	BillingTypeMetered BillingType = "METERED" // Charged by collected weight/volume
	BillingTypeOther   BillingType = "OTHER"   // Ad-hoc charges (spot pickups, fees)
)

// IsValid checks if the billing type is valid
func (t BillingType) IsValid() bool {
	switch t {
	case BillingTypeFixed, BillingTypeMetered, BillingTypeOther:
		return true
	}
	return false
}

// String returns the string representation of BillingType
func (t BillingType) String() string {
	return string(t)
}

// ItemStatus represents the workflow status of a billing item
type ItemStatus string

const (
	ItemStatusDraft     ItemStatus = "DRAFT"
	ItemStatusSubmitted ItemStatus = "SUBMITTED"
	ItemStatusApproved  ItemStatus = "APPROVED"
	ItemStatusRejected  ItemStatus = "REJECTED"
	ItemStatusCancelled ItemStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ItemStatus
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusDraft, ItemStatusSubmitted, ItemStatusApproved,
		ItemStatusRejected, ItemStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// BillingItem is one chargeable line for a collector/store/month. Items are
// owned by the operational billing workflow; this service reads them once
// APPROVED and treats them as immutable for aggregation purposes.
type BillingItem struct {
	shared.BaseAggregateRoot
	OrgID        uuid.UUID
	CollectorID  uuid.UUID
	StoreID      uuid.UUID
	BillingMonth time.Time // First day of the month, UTC
	BillingType  BillingType
	Amount       decimal.Decimal
	TaxAmount    decimal.Decimal
	Status       ItemStatus
	Deleted      bool
}

// NewBillingItem creates a new draft billing item
func NewBillingItem(orgID, collectorID, storeID uuid.UUID, month time.Time, billingType BillingType, amount, taxAmount decimal.Decimal) (*BillingItem, error) {
	if orgID == uuid.Nil || collectorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Organization and collector IDs are required")
	}
	if !billingType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid billing type")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Billing amount cannot be negative")
	}

	return &BillingItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrgID:             orgID,
		CollectorID:       collectorID,
		StoreID:           storeID,
		BillingMonth:      NormalizeMonth(month),
		BillingType:       billingType,
		Amount:            amount,
		TaxAmount:         taxAmount,
		Status:            ItemStatusDraft,
	}, nil
}

// IsAggregatable reports whether the item participates in summary aggregation.
// Only approved, non-deleted items are counted; the predicate is applied
// explicitly at every collaborator boundary instead of relying on implicit
// query-level filtering.
func (i *BillingItem) IsAggregatable() bool {
	return i.Status == ItemStatusApproved && !i.Deleted
}

// Approve transitions the item to APPROVED
func (i *BillingItem) Approve() error {
	if i.Status != ItemStatusSubmitted && i.Status != ItemStatusDraft {
		return shared.ErrInvalidState
	}
	i.Status = ItemStatusApproved
	return nil
}

// Submit transitions the item to SUBMITTED
func (i *BillingItem) Submit() error {
	if i.Status != ItemStatusDraft {
		return shared.ErrInvalidState
	}
	i.Status = ItemStatusSubmitted
	return nil
}

// Reject transitions the item to REJECTED
func (i *BillingItem) Reject() error {
	if i.Status != ItemStatusSubmitted {
		return shared.ErrInvalidState
	}
	i.Status = ItemStatusRejected
	return nil
}

// Cancel transitions the item to CANCELLED
func (i *BillingItem) Cancel() error {
	if i.Status == ItemStatusApproved {
		return shared.ErrInvalidState
	}
	i.Status = ItemStatusCancelled
	return nil
}
