package billing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wastebill/backend/internal/domain/billing"
	"github.com/wastebill/backend/internal/domain/partner"
	"github.com/wastebill/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InvoiceService composes tenant invoices from approved billing summaries,
// commission rules, and the management fee
type InvoiceService struct {
	orgRepo       partner.OrganizationRepository
	collectorRepo partner.CollectorRepository
	summaryRepo   billing.BillingSummaryRepository
	ruleRepo      billing.CommissionRuleRepository
	invoiceRepo   billing.TenantInvoiceRepository
	calculator    *billing.CommissionCalculator
	runLock       shared.RunLock
	logger        *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	orgRepo partner.OrganizationRepository,
	collectorRepo partner.CollectorRepository,
	summaryRepo billing.BillingSummaryRepository,
	ruleRepo billing.CommissionRuleRepository,
	invoiceRepo billing.TenantInvoiceRepository,
	runLock shared.RunLock,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		orgRepo:       orgRepo,
		collectorRepo: collectorRepo,
		summaryRepo:   summaryRepo,
		ruleRepo:      ruleRepo,
		invoiceRepo:   invoiceRepo,
		calculator:    billing.NewCommissionCalculator(),
		runLock:       runLock,
		logger:        logger,
	}
}

// GenerateInvoiceRequest is the input for invoice generation
type GenerateInvoiceRequest struct {
	OrgID        uuid.UUID
	BillingMonth string // YYYY-MM
}

// TenantInvoiceItemResponse represents one invoice line in responses
type TenantInvoiceItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	ItemType         string          `json:"item_type"`
	CollectorID      *uuid.UUID      `json:"collector_id,omitempty"`
	CollectorName    string          `json:"collector_name,omitempty"`
	BaseAmount       decimal.Decimal `json:"base_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	DisplayOrder     int             `json:"display_order"`
}

// TenantInvoiceResponse represents a tenant invoice with its lines
type TenantInvoiceResponse struct {
	ID                 uuid.UUID                   `json:"id"`
	OrgID              uuid.UUID                   `json:"org_id"`
	BillingMonth       string                      `json:"billing_month"`
	InvoiceNumber      string                      `json:"invoice_number"`
	CollectorsSubtotal decimal.Decimal             `json:"collectors_subtotal"`
	CollectorsTax      decimal.Decimal             `json:"collectors_tax"`
	CollectorsTotal    decimal.Decimal             `json:"collectors_total"`
	CommissionSubtotal decimal.Decimal             `json:"commission_subtotal"`
	CommissionTax      decimal.Decimal             `json:"commission_tax"`
	CommissionTotal    decimal.Decimal             `json:"commission_total"`
	GrandSubtotal      decimal.Decimal             `json:"grand_subtotal"`
	GrandTax           decimal.Decimal             `json:"grand_tax"`
	GrandTotal         decimal.Decimal             `json:"grand_total"`
	Status             string                      `json:"status"`
	Items              []TenantInvoiceItemResponse `json:"items"`
	CreatedAt          time.Time                   `json:"created_at"`
}

// InvoiceRunLockKey builds the run-lock key serializing invoice generation
// for one (org, month) pair
func InvoiceRunLockKey(orgID uuid.UUID, month time.Time) string {
	return fmt.Sprintf("billing:run:invoice:%s:%s", orgID, billing.FormatMonth(month))
}

// GenerateInvoice composes the tenant invoice for (org, month) from every
// approved billing summary.
//
// Preconditions are checked before any write: a duplicate invoice is a
// conflict and the absence of approved summaries is not-found. The invoice
// and all of its lines are persisted in one transaction; any failure leaves
// no partial invoice behind.
func (s *InvoiceService) GenerateInvoice(ctx context.Context, req GenerateInvoiceRequest) (*TenantInvoiceResponse, error) {
	month, err := billing.ParseMonth(req.BillingMonth)
	if err != nil {
		return nil, err
	}

	org, err := s.orgRepo.FindByID(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}

	acquired, err := s.runLock.Acquire(ctx, InvoiceRunLockKey(org.ID, month), RunLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !acquired {
		return nil, shared.ErrConcurrencyConflict
	}
	defer func() {
		if err := s.runLock.Release(context.WithoutCancel(ctx), InvoiceRunLockKey(org.ID, month)); err != nil {
			s.logger.Warn("Failed to release run lock",
				zap.String("org_id", org.ID.String()),
				zap.Error(err))
		}
	}()

	// Fast-path duplicate check. The unique constraint on (org, month)
	// remains the authoritative guard when runs race.
	exists, err := s.invoiceRepo.ExistsByKey(ctx, org.ID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing invoice: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("Invoice for %s already exists", billing.FormatMonth(month)))
	}

	summaries, err := s.summaryRepo.FindApprovedByMonth(ctx, org.ID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved summaries: %w", err)
	}
	if len(summaries) == 0 {
		return nil, shared.NewDomainError("NOT_FOUND",
			fmt.Sprintf("No approved billing summaries for %s", billing.FormatMonth(month)))
	}

	rules, err := s.ruleRepo.FindActiveByOrg(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission rules: %w", err)
	}

	collectors, err := s.collectorRepo.FindActiveByOrg(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collectors: %w", err)
	}
	collectorsByID := make(map[uuid.UUID]*partner.Collector, len(collectors))
	for i := range collectors {
		collectorsByID[collectors[i].ID] = &collectors[i]
	}

	// Deterministic line order: collector code, never natural fetch order.
	sort.Slice(summaries, func(i, j int) bool {
		return s.sortKey(collectorsByID, &summaries[i]) < s.sortKey(collectorsByID, &summaries[j])
	})

	invoice, err := billing.NewTenantInvoice(org.ID, org.Code, month)
	if err != nil {
		return nil, err
	}

	for i := range summaries {
		summary := &summaries[i]
		name := summary.CollectorID.String()
		if c, ok := collectorsByID[summary.CollectorID]; ok {
			name = c.Name
		}

		if err := invoice.AddCollectorBilling(summary, name); err != nil {
			return nil, err
		}

		commission := s.calculator.Calculate(summary, rules, summary.TaxRate)
		if commission.IsZero() {
			continue
		}
		if err := invoice.AddCommission(summary.CollectorID, name, summary.SubtotalAmount, commission, summary.TaxRate); err != nil {
			return nil, err
		}
	}

	// The management fee is taxed at the rate the invoiced summaries carry;
	// mixed rates fall back to the default.
	feeRate := summaries[0].TaxRate
	for i := 1; i < len(summaries); i++ {
		if !summaries[i].TaxRate.Equal(feeRate) {
			feeRate = DefaultTaxRate
			break
		}
	}

	fee := s.calculator.ManagementFee(rules, month, feeRate)
	if !fee.IsZero() {
		if err := invoice.AddManagementFee(fee, feeRate); err != nil {
			return nil, err
		}
	}

	invoice.ComputeTotals()
	if err := invoice.Validate(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice generated",
		zap.String("org_id", org.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("billing_month", billing.FormatMonth(month)),
		zap.Int("items", len(invoice.Items)),
		zap.String("grand_total", invoice.GrandTotal.String()))

	return ToInvoiceResponse(invoice), nil
}

// sortKey orders summaries by collector code with id as the fallback so the
// ordering is total even when a collector record is missing
func (s *InvoiceService) sortKey(collectors map[uuid.UUID]*partner.Collector, summary *billing.BillingSummary) string {
	if c, ok := collectors[summary.CollectorID]; ok {
		return c.Code + "|" + summary.CollectorID.String()
	}
	return "~|" + summary.CollectorID.String()
}

// GetInvoice returns an invoice with its lines ordered by display order
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*TenantInvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponse(invoice), nil
}

// ListInvoices returns all invoices for an organization
func (s *InvoiceService) ListInvoices(ctx context.Context, orgID uuid.UUID) ([]TenantInvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]TenantInvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = *ToInvoiceResponse(&invoices[i])
	}
	return out, nil
}

// ToInvoiceResponse maps a domain invoice to its response DTO
func ToInvoiceResponse(inv *billing.TenantInvoice) *TenantInvoiceResponse {
	items := make([]TenantInvoiceItemResponse, len(inv.Items))
	for i := range inv.Items {
		item := &inv.Items[i]
		items[i] = TenantInvoiceItemResponse{
			ID:               item.ID,
			ItemType:         string(item.ItemType),
			CollectorID:      item.CollectorID,
			CollectorName:    item.CollectorName,
			BaseAmount:       item.BaseAmount,
			CommissionAmount: item.CommissionAmount,
			Subtotal:         item.Subtotal,
			TaxRate:          item.TaxRate,
			TaxAmount:        item.TaxAmount,
			TotalAmount:      item.TotalAmount,
			DisplayOrder:     item.DisplayOrder,
		}
	}

	return &TenantInvoiceResponse{
		ID:                 inv.ID,
		OrgID:              inv.OrgID,
		BillingMonth:       billing.FormatMonth(inv.BillingMonth),
		InvoiceNumber:      inv.InvoiceNumber,
		CollectorsSubtotal: inv.CollectorsSubtotal,
		CollectorsTax:      inv.CollectorsTax,
		CollectorsTotal:    inv.CollectorsTotal,
		CommissionSubtotal: inv.CommissionSubtotal,
		CommissionTax:      inv.CommissionTax,
		CommissionTotal:    inv.CommissionTotal,
		GrandSubtotal:      inv.GrandSubtotal,
		GrandTax:           inv.GrandTax,
		GrandTotal:         inv.GrandTotal,
		Status:             string(inv.Status),
		Items:              items,
		CreatedAt:          inv.CreatedAt,
	}
}
