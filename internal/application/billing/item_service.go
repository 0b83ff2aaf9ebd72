package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wastebill/backend/internal/domain/billing"
	"github.com/wastebill/backend/internal/domain/partner"
	"github.com/wastebill/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ItemService records billing items arriving from the operational workflow
// and moves them through the approval states that gate aggregation
type ItemService struct {
	collectorRepo partner.CollectorRepository
	itemRepo      billing.BillingItemRepository
	logger        *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(collectorRepo partner.CollectorRepository, itemRepo billing.BillingItemRepository, logger *zap.Logger) *ItemService {
	return &ItemService{
		collectorRepo: collectorRepo,
		itemRepo:      itemRepo,
		logger:        logger,
	}
}

// RecordItemRequest is the input for recording a billing item
type RecordItemRequest struct {
	OrgID        uuid.UUID
	CollectorID  uuid.UUID
	StoreID      uuid.UUID
	BillingMonth string // YYYY-MM
	BillingType  string
	Amount       decimal.Decimal
	TaxAmount    decimal.Decimal
}

// BillingItemResponse represents a billing item in responses
type BillingItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	OrgID        uuid.UUID       `json:"org_id"`
	CollectorID  uuid.UUID       `json:"collector_id"`
	StoreID      uuid.UUID       `json:"store_id"`
	BillingMonth string          `json:"billing_month"`
	BillingType  string          `json:"billing_type"`
	Amount       decimal.Decimal `json:"amount"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Record validates and persists a new draft billing item. The collector must
// belong to the requesting organization.
func (s *ItemService) Record(ctx context.Context, req RecordItemRequest) (*BillingItemResponse, error) {
	month, err := billing.ParseMonth(req.BillingMonth)
	if err != nil {
		return nil, err
	}

	collector, err := s.collectorRepo.FindByID(ctx, req.CollectorID)
	if err != nil {
		return nil, err
	}
	if collector.OrgID != req.OrgID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Collector does not belong to the organization")
	}

	item, err := billing.NewBillingItem(req.OrgID, req.CollectorID, req.StoreID, month, billing.BillingType(req.BillingType), req.Amount, req.TaxAmount)
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Billing item recorded",
		zap.String("item_id", item.ID.String()),
		zap.String("org_id", req.OrgID.String()),
		zap.String("collector_id", req.CollectorID.String()),
		zap.String("billing_month", billing.FormatMonth(month)),
		zap.String("billing_type", req.BillingType))

	resp := toItemResponse(item)
	return &resp, nil
}

// Approve transitions an item to APPROVED, making it visible to aggregation
func (s *ItemService) Approve(ctx context.Context, id uuid.UUID) (*BillingItemResponse, error) {
	return s.transition(ctx, id, "approve", (*billing.BillingItem).Approve)
}

// Reject transitions an item to REJECTED
func (s *ItemService) Reject(ctx context.Context, id uuid.UUID) (*BillingItemResponse, error) {
	return s.transition(ctx, id, "reject", (*billing.BillingItem).Reject)
}

func (s *ItemService) transition(ctx context.Context, id uuid.UUID, action string, fn func(*billing.BillingItem) error) (*BillingItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(item); err != nil {
		return nil, err
	}
	item.IncrementVersion()
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Billing item status changed",
		zap.String("item_id", id.String()),
		zap.String("action", action),
		zap.String("status", item.Status.String()))

	resp := toItemResponse(item)
	return &resp, nil
}

func toItemResponse(i *billing.BillingItem) BillingItemResponse {
	return BillingItemResponse{
		ID:           i.ID,
		OrgID:        i.OrgID,
		CollectorID:  i.CollectorID,
		StoreID:      i.StoreID,
		BillingMonth: billing.FormatMonth(i.BillingMonth),
		BillingType:  i.BillingType.String(),
		Amount:       i.Amount,
		TaxAmount:    i.TaxAmount,
		Status:       i.Status.String(),
		CreatedAt:    i.CreatedAt,
	}
}
