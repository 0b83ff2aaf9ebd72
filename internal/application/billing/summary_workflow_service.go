package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wastebill/backend/internal/domain/billing"
	"go.uber.org/zap"
)

// SummaryWorkflowService exposes the approval workflow on billing summaries.
// Approval itself belongs to the operational workflow; this service is the
// interface the aggregation pipeline offers to that collaborator.
type SummaryWorkflowService struct {
	summaryRepo billing.BillingSummaryRepository
	logger      *zap.Logger
}

// NewSummaryWorkflowService creates a new SummaryWorkflowService
func NewSummaryWorkflowService(summaryRepo billing.BillingSummaryRepository, logger *zap.Logger) *SummaryWorkflowService {
	return &SummaryWorkflowService{
		summaryRepo: summaryRepo,
		logger:      logger,
	}
}

// BillingSummaryResponse represents a billing summary in responses
type BillingSummaryResponse struct {
	ID                 uuid.UUID       `json:"id"`
	OrgID              uuid.UUID       `json:"org_id"`
	CollectorID        uuid.UUID       `json:"collector_id"`
	BillingMonth       string          `json:"billing_month"`
	TotalFixedAmount   decimal.Decimal `json:"total_fixed_amount"`
	TotalMeteredAmount decimal.Decimal `json:"total_metered_amount"`
	TotalOtherAmount   decimal.Decimal `json:"total_other_amount"`
	FixedItemsCount    int             `json:"fixed_items_count"`
	MeteredItemsCount  int             `json:"metered_items_count"`
	OtherItemsCount    int             `json:"other_items_count"`
	TotalItemsCount    int             `json:"total_items_count"`
	SubtotalAmount     decimal.Decimal `json:"subtotal_amount"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ListSummariesRequest narrows summary listing
type ListSummariesRequest struct {
	OrgID        uuid.UUID
	BillingMonth string // optional YYYY-MM
	Status       string // optional SummaryStatus
}

// List returns summaries for an organization with optional month/status filters
func (s *SummaryWorkflowService) List(ctx context.Context, req ListSummariesRequest) ([]BillingSummaryResponse, error) {
	filter := billing.SummaryFilter{}

	if req.BillingMonth != "" {
		month, err := billing.ParseMonth(req.BillingMonth)
		if err != nil {
			return nil, err
		}
		filter.Month = &month
	}
	if req.Status != "" {
		status := billing.SummaryStatus(req.Status)
		filter.Status = &status
	}

	summaries, err := s.summaryRepo.FindByOrg(ctx, req.OrgID, filter)
	if err != nil {
		return nil, err
	}

	out := make([]BillingSummaryResponse, len(summaries))
	for i := range summaries {
		out[i] = toSummaryResponse(&summaries[i])
	}
	return out, nil
}

// Submit transitions a summary to SUBMITTED
func (s *SummaryWorkflowService) Submit(ctx context.Context, id uuid.UUID) (*BillingSummaryResponse, error) {
	return s.transition(ctx, id, "submit", (*billing.BillingSummary).Submit)
}

// Approve transitions a summary to APPROVED, making it eligible for invoicing
func (s *SummaryWorkflowService) Approve(ctx context.Context, id uuid.UUID) (*BillingSummaryResponse, error) {
	return s.transition(ctx, id, "approve", (*billing.BillingSummary).Approve)
}

// Reject transitions a summary to REJECTED
func (s *SummaryWorkflowService) Reject(ctx context.Context, id uuid.UUID) (*BillingSummaryResponse, error) {
	return s.transition(ctx, id, "reject", (*billing.BillingSummary).Reject)
}

func (s *SummaryWorkflowService) transition(ctx context.Context, id uuid.UUID, action string, fn func(*billing.BillingSummary) error) (*BillingSummaryResponse, error) {
	summary, err := s.summaryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(summary); err != nil {
		return nil, err
	}
	summary.IncrementVersion()
	if err := s.summaryRepo.Update(ctx, summary); err != nil {
		return nil, err
	}

	s.logger.Info("Summary status changed",
		zap.String("summary_id", id.String()),
		zap.String("action", action),
		zap.String("status", summary.Status.String()))

	resp := toSummaryResponse(summary)
	return &resp, nil
}

func toSummaryResponse(s *billing.BillingSummary) BillingSummaryResponse {
	return BillingSummaryResponse{
		ID:                 s.ID,
		OrgID:              s.OrgID,
		CollectorID:        s.CollectorID,
		BillingMonth:       billing.FormatMonth(s.BillingMonth),
		TotalFixedAmount:   s.TotalFixedAmount,
		TotalMeteredAmount: s.TotalMeteredAmount,
		TotalOtherAmount:   s.TotalOtherAmount,
		FixedItemsCount:    s.FixedItemsCount,
		MeteredItemsCount:  s.MeteredItemsCount,
		OtherItemsCount:    s.OtherItemsCount,
		TotalItemsCount:    s.TotalItemsCount,
		SubtotalAmount:     s.SubtotalAmount,
		TaxRate:            s.TaxRate,
		TaxAmount:          s.TaxAmount,
		TotalAmount:        s.TotalAmount,
		Status:             s.Status.String(),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}
