package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wastebill/backend/internal/domain/billing"
	"github.com/wastebill/backend/internal/domain/partner"
	"github.com/wastebill/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultTaxRate is the consumption tax rate applied when a request does not
// carry one
var DefaultTaxRate = decimal.NewFromFloat(0.10)

// RunLockTTL bounds how long a crashed run can hold its (org, month) lock
var RunLockTTL = 10 * time.Minute

// SummaryService generates per-collector monthly billing summaries from
// approved billing items
type SummaryService struct {
	orgRepo       partner.OrganizationRepository
	collectorRepo partner.CollectorRepository
	itemRepo      billing.BillingItemRepository
	summaryRepo   billing.BillingSummaryRepository
	runLock       shared.RunLock
	logger        *zap.Logger
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(
	orgRepo partner.OrganizationRepository,
	collectorRepo partner.CollectorRepository,
	itemRepo billing.BillingItemRepository,
	summaryRepo billing.BillingSummaryRepository,
	runLock shared.RunLock,
	logger *zap.Logger,
) *SummaryService {
	return &SummaryService{
		orgRepo:       orgRepo,
		collectorRepo: collectorRepo,
		itemRepo:      itemRepo,
		summaryRepo:   summaryRepo,
		runLock:       runLock,
		logger:        logger,
	}
}

// GenerateSummariesRequest is the input for a summary generation run
type GenerateSummariesRequest struct {
	OrgID           uuid.UUID
	BillingMonth    string   // YYYY-MM
	TaxRate         *float64 // nil means DefaultTaxRate
	ForceRegenerate bool
}

// GeneratedSummary describes one summary written during a run
type GeneratedSummary struct {
	CollectorID   uuid.UUID       `json:"collector_id"`
	CollectorName string          `json:"collector_name"`
	SummaryID     uuid.UUID       `json:"summary_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemCount     int             `json:"item_count"`
	Action        string          `json:"action"` // created or updated
}

// SkippedCollector describes one collector left untouched during a run
type SkippedCollector struct {
	CollectorID   uuid.UUID `json:"collector_id"`
	CollectorName string    `json:"collector_name"`
	Reason        string    `json:"reason"`
}

// CollectorError describes a per-collector failure that did not abort the run
type CollectorError struct {
	CollectorID   uuid.UUID `json:"collector_id"`
	CollectorName string    `json:"collector_name"`
	Stage         string    `json:"stage"`
	Message       string    `json:"message"`
}

// GenerateSummariesResponse reports the outcome of a full run. The three
// lists are always non-nil; a run over zero collectors is a degenerate
// success with all lists empty.
type GenerateSummariesResponse struct {
	OrgID        uuid.UUID          `json:"org_id"`
	BillingMonth string             `json:"billing_month"`
	Generated    []GeneratedSummary `json:"generated"`
	Skipped      []SkippedCollector `json:"skipped"`
	Errors       []CollectorError   `json:"errors"`
}

// SummaryRunLockKey builds the run-lock key serializing summary generation
// for one (org, month) pair
func SummaryRunLockKey(orgID uuid.UUID, month time.Time) string {
	return fmt.Sprintf("billing:run:summaries:%s:%s", orgID, billing.FormatMonth(month))
}

// GenerateSummaries aggregates approved billing items into one summary per
// active collector for the requested month.
//
// Validation failures and an unknown organization reject the run before any
// side effect. Per-collector persistence failures are isolated: they are
// recorded in the response and remaining collectors are still processed.
// Cancellation between collectors stops the loop; summaries already written
// stay committed and a later run with ForceRegenerate resumes deterministically.
func (s *SummaryService) GenerateSummaries(ctx context.Context, req GenerateSummariesRequest) (*GenerateSummariesResponse, error) {
	month, err := billing.ParseMonth(req.BillingMonth)
	if err != nil {
		return nil, err
	}

	taxRate := DefaultTaxRate
	if req.TaxRate != nil {
		taxRate = decimal.NewFromFloat(*req.TaxRate)
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.ErrInvalidTaxRate
	}

	org, err := s.orgRepo.FindByID(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}

	acquired, err := s.runLock.Acquire(ctx, SummaryRunLockKey(org.ID, month), RunLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !acquired {
		return nil, shared.ErrConcurrencyConflict
	}
	defer func() {
		if err := s.runLock.Release(context.WithoutCancel(ctx), SummaryRunLockKey(org.ID, month)); err != nil {
			s.logger.Warn("Failed to release run lock",
				zap.String("org_id", org.ID.String()),
				zap.Error(err))
		}
	}()

	collectors, err := s.collectorRepo.FindActiveByOrg(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collectors: %w", err)
	}

	resp := &GenerateSummariesResponse{
		OrgID:        org.ID,
		BillingMonth: billing.FormatMonth(month),
		Generated:    []GeneratedSummary{},
		Skipped:      []SkippedCollector{},
		Errors:       []CollectorError{},
	}

	s.logger.Info("Summary generation started",
		zap.String("org_id", org.ID.String()),
		zap.String("billing_month", resp.BillingMonth),
		zap.Int("collectors", len(collectors)),
		zap.Bool("force_regenerate", req.ForceRegenerate))

	for i := range collectors {
		if err := ctx.Err(); err != nil {
			// Committed summaries stay valid; the caller can resume.
			return nil, err
		}
		s.processCollector(ctx, &collectors[i], month, taxRate, req.ForceRegenerate, resp)
	}

	s.logger.Info("Summary generation finished",
		zap.String("org_id", org.ID.String()),
		zap.String("billing_month", resp.BillingMonth),
		zap.Int("generated", len(resp.Generated)),
		zap.Int("skipped", len(resp.Skipped)),
		zap.Int("errors", len(resp.Errors)))

	return resp, nil
}

// processCollector handles a single collector; failures are appended to the
// response instead of propagating
func (s *SummaryService) processCollector(ctx context.Context, collector *partner.Collector, month time.Time, taxRate decimal.Decimal, force bool, resp *GenerateSummariesResponse) {
	items, err := s.itemRepo.FindAggregatable(ctx, collector.OrgID, collector.ID, month)
	if err != nil {
		resp.Errors = append(resp.Errors, CollectorError{
			CollectorID:   collector.ID,
			CollectorName: collector.Name,
			Stage:         "fetch_items",
			Message:       err.Error(),
		})
		return
	}

	aggregatable := items[:0]
	for _, item := range items {
		if item.IsAggregatable() {
			aggregatable = append(aggregatable, item)
		}
	}

	if len(aggregatable) == 0 {
		resp.Skipped = append(resp.Skipped, SkippedCollector{
			CollectorID:   collector.ID,
			CollectorName: collector.Name,
			Reason:        "no approved items",
		})
		return
	}

	existing, err := s.summaryRepo.FindByKey(ctx, collector.OrgID, collector.ID, month)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		resp.Errors = append(resp.Errors, CollectorError{
			CollectorID:   collector.ID,
			CollectorName: collector.Name,
			Stage:         "fetch_summary",
			Message:       err.Error(),
		})
		return
	}

	if existing != nil {
		if !force {
			resp.Skipped = append(resp.Skipped, SkippedCollector{
				CollectorID:   collector.ID,
				CollectorName: collector.Name,
				Reason:        "existing summary",
			})
			return
		}
		if !existing.CanRegenerate() {
			resp.Skipped = append(resp.Skipped, SkippedCollector{
				CollectorID:   collector.ID,
				CollectorName: collector.Name,
				Reason:        "summary finalized",
			})
			return
		}

		existing.Regenerate(aggregatable, taxRate)
		existing.IncrementVersion()
		if err := s.summaryRepo.Update(ctx, existing); err != nil {
			resp.Errors = append(resp.Errors, CollectorError{
				CollectorID:   collector.ID,
				CollectorName: collector.Name,
				Stage:         "persist_summary",
				Message:       err.Error(),
			})
			return
		}

		resp.Generated = append(resp.Generated, GeneratedSummary{
			CollectorID:   collector.ID,
			CollectorName: collector.Name,
			SummaryID:     existing.ID,
			TotalAmount:   existing.TotalAmount,
			ItemCount:     existing.TotalItemsCount,
			Action:        "updated",
		})
		return
	}

	summary, err := billing.NewSummaryFromItems(collector.OrgID, collector.ID, month, aggregatable, taxRate)
	if err != nil {
		resp.Errors = append(resp.Errors, CollectorError{
			CollectorID:   collector.ID,
			CollectorName: collector.Name,
			Stage:         "aggregate",
			Message:       err.Error(),
		})
		return
	}

	if err := s.summaryRepo.Create(ctx, summary); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Lost a race with a concurrent run; the constraint is the
			// authoritative guard, so report a skip rather than a failure.
			resp.Skipped = append(resp.Skipped, SkippedCollector{
				CollectorID:   collector.ID,
				CollectorName: collector.Name,
				Reason:        "existing summary",
			})
			return
		}
		resp.Errors = append(resp.Errors, CollectorError{
			CollectorID:   collector.ID,
			CollectorName: collector.Name,
			Stage:         "persist_summary",
			Message:       err.Error(),
		})
		return
	}

	resp.Generated = append(resp.Generated, GeneratedSummary{
		CollectorID:   collector.ID,
		CollectorName: collector.Name,
		SummaryID:     summary.ID,
		TotalAmount:   summary.TotalAmount,
		ItemCount:     summary.TotalItemsCount,
		Action:        "created",
	})
}
