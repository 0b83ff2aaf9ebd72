package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wastebill/backend/internal/domain/shared"
)

// InvoiceStatus represents the workflow status of a tenant invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSubmitted InvoiceStatus = "SUBMITTED"
	InvoiceStatusFinalized InvoiceStatus = "FINALIZED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSubmitted, InvoiceStatusFinalized:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// InvoiceItemType classifies a tenant invoice line
type InvoiceItemType string

const (
	InvoiceItemTypeCollectorBilling InvoiceItemType = "COLLECTOR_BILLING"
	InvoiceItemTypeCommission       InvoiceItemType = "COMMISSION"
	InvoiceItemTypeManagementFee    InvoiceItemType = "MANAGEMENT_FEE"
)

// IsValid checks if the item type is valid
func (t InvoiceItemType) IsValid() bool {
	switch t {
	case InvoiceItemTypeCollectorBilling, InvoiceItemTypeCommission, InvoiceItemTypeManagementFee:
		return true
	}
	return false
}

// TenantInvoiceItem is one line of a tenant invoice. Display order starts at 1
// and increases strictly in the order lines were emitted.
type TenantInvoiceItem struct {
	shared.BaseEntity
	InvoiceID        uuid.UUID
	ItemType         InvoiceItemType
	CollectorID      *uuid.UUID
	CollectorName    string
	BaseAmount       decimal.Decimal
	CommissionAmount decimal.Decimal
	Subtotal         decimal.Decimal
	TaxRate          decimal.Decimal
	TaxAmount        decimal.Decimal
	TotalAmount      decimal.Decimal
	DisplayOrder     int
}

// TenantInvoice is the monthly document charged to an emitter organization:
// every approved collector billing plus commissions and the management fee.
// Exactly one invoice exists per (org, month); the aggregate is written
// atomically with its items and is immutable after creation.
type TenantInvoice struct {
	shared.BaseAggregateRoot
	OrgID         uuid.UUID
	BillingMonth  time.Time
	InvoiceNumber string

	CollectorsSubtotal decimal.Decimal
	CollectorsTax      decimal.Decimal
	CollectorsTotal    decimal.Decimal

	CommissionSubtotal decimal.Decimal
	CommissionTax      decimal.Decimal
	CommissionTotal    decimal.Decimal

	GrandSubtotal decimal.Decimal
	GrandTax      decimal.Decimal
	GrandTotal    decimal.Decimal

	Status InvoiceStatus
	Items  []TenantInvoiceItem
}

// BuildInvoiceNumber composes the invoice number from the billing month and
// the organization code, e.g. TI-202605-ORG100.
func BuildInvoiceNumber(month time.Time, orgCode string) string {
	return fmt.Sprintf("TI-%s-%s", month.Format("200601"), orgCode)
}

// NewTenantInvoice creates an empty draft invoice shell
func NewTenantInvoice(orgID uuid.UUID, orgCode string, month time.Time) (*TenantInvoice, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Organization ID is required")
	}
	if orgCode == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Organization code is required")
	}

	m := NormalizeMonth(month)
	inv := &TenantInvoice{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		OrgID:              orgID,
		BillingMonth:       m,
		InvoiceNumber:      BuildInvoiceNumber(m, orgCode),
		CollectorsSubtotal: decimal.Zero,
		CollectorsTax:      decimal.Zero,
		CollectorsTotal:    decimal.Zero,
		CommissionSubtotal: decimal.Zero,
		CommissionTax:      decimal.Zero,
		CommissionTotal:    decimal.Zero,
		GrandSubtotal:      decimal.Zero,
		GrandTax:           decimal.Zero,
		GrandTotal:         decimal.Zero,
		Status:             InvoiceStatusDraft,
	}
	return inv, nil
}

// nextDisplayOrder returns the display order for the next emitted line
func (inv *TenantInvoice) nextDisplayOrder() int {
	return len(inv.Items) + 1
}

// AddCollectorBilling emits a COLLECTOR_BILLING line from an approved summary
func (inv *TenantInvoice) AddCollectorBilling(summary *BillingSummary, collectorName string) error {
	if summary.Status != SummaryStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Only approved summaries can be invoiced")
	}

	inv.Items = append(inv.Items, TenantInvoiceItem{
		BaseEntity:       shared.NewBaseEntity(),
		InvoiceID:        inv.ID,
		ItemType:         InvoiceItemTypeCollectorBilling,
		CollectorID:      &summary.CollectorID,
		CollectorName:    collectorName,
		BaseAmount:       summary.SubtotalAmount,
		CommissionAmount: decimal.Zero,
		Subtotal:         summary.SubtotalAmount,
		TaxRate:          summary.TaxRate,
		TaxAmount:        summary.TaxAmount,
		TotalAmount:      summary.TotalAmount,
		DisplayOrder:     inv.nextDisplayOrder(),
	})
	return nil
}

// AddCommission emits a COMMISSION line for a collector, immediately after
// that collector's billing line
func (inv *TenantInvoice) AddCommission(collectorID uuid.UUID, collectorName string, base decimal.Decimal, result CommissionResult, taxRate decimal.Decimal) error {
	if result.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "Zero commission results emit no invoice line")
	}

	cid := collectorID
	inv.Items = append(inv.Items, TenantInvoiceItem{
		BaseEntity:       shared.NewBaseEntity(),
		InvoiceID:        inv.ID,
		ItemType:         InvoiceItemTypeCommission,
		CollectorID:      &cid,
		CollectorName:    collectorName,
		BaseAmount:       base,
		CommissionAmount: result.CommissionAmount,
		Subtotal:         result.CommissionAmount,
		TaxRate:          taxRate,
		TaxAmount:        result.TaxAmount,
		TotalAmount:      result.TotalAmount,
		DisplayOrder:     inv.nextDisplayOrder(),
	})
	return nil
}

// AddManagementFee emits the single MANAGEMENT_FEE line at the end of the
// sequence
func (inv *TenantInvoice) AddManagementFee(result CommissionResult, taxRate decimal.Decimal) error {
	if result.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "Zero management fee emits no invoice line")
	}
	for i := range inv.Items {
		if inv.Items[i].ItemType == InvoiceItemTypeManagementFee {
			return shared.NewDomainError("INVALID_STATE", "Invoice already carries a management fee line")
		}
	}

	inv.Items = append(inv.Items, TenantInvoiceItem{
		BaseEntity:       shared.NewBaseEntity(),
		InvoiceID:        inv.ID,
		ItemType:         InvoiceItemTypeManagementFee,
		BaseAmount:       result.CommissionAmount,
		CommissionAmount: result.CommissionAmount,
		Subtotal:         result.CommissionAmount,
		TaxRate:          taxRate,
		TaxAmount:        result.TaxAmount,
		TotalAmount:      result.TotalAmount,
		DisplayOrder:     inv.nextDisplayOrder(),
	})
	return nil
}

// ComputeTotals recomputes the invoice aggregates from its lines.
// Collector totals come from COLLECTOR_BILLING lines only; commission totals
// from COMMISSION and MANAGEMENT_FEE lines.
func (inv *TenantInvoice) ComputeTotals() {
	inv.CollectorsSubtotal = decimal.Zero
	inv.CollectorsTax = decimal.Zero
	inv.CollectorsTotal = decimal.Zero
	inv.CommissionSubtotal = decimal.Zero
	inv.CommissionTax = decimal.Zero
	inv.CommissionTotal = decimal.Zero

	for i := range inv.Items {
		item := &inv.Items[i]
		switch item.ItemType {
		case InvoiceItemTypeCollectorBilling:
			inv.CollectorsSubtotal = inv.CollectorsSubtotal.Add(item.Subtotal)
			inv.CollectorsTax = inv.CollectorsTax.Add(item.TaxAmount)
			inv.CollectorsTotal = inv.CollectorsTotal.Add(item.TotalAmount)
		case InvoiceItemTypeCommission, InvoiceItemTypeManagementFee:
			inv.CommissionSubtotal = inv.CommissionSubtotal.Add(item.Subtotal)
			inv.CommissionTax = inv.CommissionTax.Add(item.TaxAmount)
			inv.CommissionTotal = inv.CommissionTotal.Add(item.TotalAmount)
		}
	}

	inv.GrandSubtotal = inv.CollectorsSubtotal.Add(inv.CommissionSubtotal)
	inv.GrandTax = inv.CollectorsTax.Add(inv.CommissionTax)
	inv.GrandTotal = inv.CollectorsTotal.Add(inv.CommissionTotal)
}

// Validate checks the invoice consistency invariants: at least one line,
// display orders strictly increasing from 1, and the sum of line totals
// equal to the grand total.
func (inv *TenantInvoice) Validate() error {
	if len(inv.Items) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Invoice must carry at least one line")
	}

	sum := decimal.Zero
	for i := range inv.Items {
		item := &inv.Items[i]
		if item.DisplayOrder != i+1 {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Invoice line %d has display order %d", i+1, item.DisplayOrder))
		}
		sum = sum.Add(item.TotalAmount)
	}

	if !sum.Equal(inv.GrandTotal) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Invoice line totals %s do not match grand total %s", sum, inv.GrandTotal))
	}
	return nil
}

// Submit transitions the invoice to SUBMITTED
func (inv *TenantInvoice) Submit() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.ErrInvalidState
	}
	inv.Status = InvoiceStatusSubmitted
	return nil
}

// Finalize transitions the invoice to FINALIZED
func (inv *TenantInvoice) Finalize() error {
	if inv.Status != InvoiceStatusDraft && inv.Status != InvoiceStatusSubmitted {
		return shared.ErrInvalidState
	}
	inv.Status = InvoiceStatusFinalized
	return nil
}
