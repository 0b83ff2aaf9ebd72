package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BillingItemRepository defines persistence operations for billing items
type BillingItemRepository interface {
	Save(ctx context.Context, item *BillingItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*BillingItem, error)

	// FindAggregatable returns approved, non-deleted items for one collector
	// and month. The visibility predicate is explicit in the query; callers
	// still re-check BillingItem.IsAggregatable.
	FindAggregatable(ctx context.Context, orgID, collectorID uuid.UUID, month time.Time) ([]BillingItem, error)
}

// SummaryFilter narrows summary list queries
type SummaryFilter struct {
	Month  *time.Time
	Status *SummaryStatus
}

// BillingSummaryRepository defines persistence operations for billing summaries
type BillingSummaryRepository interface {
	// Create inserts a new summary. A (org, collector, month) duplicate is
	// reported as shared.ErrAlreadyExists.
	Create(ctx context.Context, summary *BillingSummary) error

	// Update overwrites an existing summary row
	Update(ctx context.Context, summary *BillingSummary) error

	FindByID(ctx context.Context, id uuid.UUID) (*BillingSummary, error)
	FindByKey(ctx context.Context, orgID, collectorID uuid.UUID, month time.Time) (*BillingSummary, error)
	FindByOrg(ctx context.Context, orgID uuid.UUID, filter SummaryFilter) ([]BillingSummary, error)

	// FindApprovedByMonth returns APPROVED summaries for (org, month)
	FindApprovedByMonth(ctx context.Context, orgID uuid.UUID, month time.Time) ([]BillingSummary, error)
}

// CommissionRuleRepository defines persistence operations for commission rules
type CommissionRuleRepository interface {
	Save(ctx context.Context, rule *CommissionRule) error
	FindByID(ctx context.Context, id uuid.UUID) (*CommissionRule, error)

	// FindActiveByOrg returns every active rule for the organization.
	// Effective-date and collector filtering happen in the calculator.
	FindActiveByOrg(ctx context.Context, orgID uuid.UUID) ([]CommissionRule, error)
}

// TenantInvoiceRepository defines persistence operations for tenant invoices
type TenantInvoiceRepository interface {
	// Create persists the invoice and all of its items in one transaction.
	// Any failure leaves no partial invoice behind. A (org, month) duplicate
	// is reported as shared.ErrAlreadyExists.
	Create(ctx context.Context, invoice *TenantInvoice) error

	FindByID(ctx context.Context, id uuid.UUID) (*TenantInvoice, error)
	FindByKey(ctx context.Context, orgID uuid.UUID, month time.Time) (*TenantInvoice, error)
	ExistsByKey(ctx context.Context, orgID uuid.UUID, month time.Time) (bool, error)
	FindByOrg(ctx context.Context, orgID uuid.UUID) ([]TenantInvoice, error)
}
