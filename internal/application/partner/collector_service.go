package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wastebill/backend/internal/domain/partner"
	"go.uber.org/zap"
)

// CollectorService manages waste-collection companies
type CollectorService struct {
	orgRepo       partner.OrganizationRepository
	collectorRepo partner.CollectorRepository
	logger        *zap.Logger
}

// NewCollectorService creates a new CollectorService
func NewCollectorService(orgRepo partner.OrganizationRepository, collectorRepo partner.CollectorRepository, logger *zap.Logger) *CollectorService {
	return &CollectorService{
		orgRepo:       orgRepo,
		collectorRepo: collectorRepo,
		logger:        logger,
	}
}

// CreateCollectorRequest is the input for creating a collector
type CreateCollectorRequest struct {
	OrgID uuid.UUID
	Code  string
	Name  string
}

// CollectorResponse represents a collector in responses
type CollectorResponse struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Create validates and persists a new collector under an existing organization
func (s *CollectorService) Create(ctx context.Context, req CreateCollectorRequest) (*CollectorResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}

	collector, err := partner.NewCollector(org.ID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.collectorRepo.Save(ctx, collector); err != nil {
		return nil, err
	}

	s.logger.Info("Collector created",
		zap.String("collector_id", collector.ID.String()),
		zap.String("org_id", org.ID.String()),
		zap.String("code", collector.Code))

	resp := toCollectorResponse(collector)
	return &resp, nil
}

// ListActive returns billable collectors for an organization ordered by code
func (s *CollectorService) ListActive(ctx context.Context, orgID uuid.UUID) ([]CollectorResponse, error) {
	collectors, err := s.collectorRepo.FindActiveByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]CollectorResponse, len(collectors))
	for i := range collectors {
		out[i] = toCollectorResponse(&collectors[i])
	}
	return out, nil
}

// Deactivate excludes the collector from future billing runs
func (s *CollectorService) Deactivate(ctx context.Context, id uuid.UUID) error {
	collector, err := s.collectorRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	collector.Deactivate()
	collector.IncrementVersion()
	if err := s.collectorRepo.Save(ctx, collector); err != nil {
		return err
	}

	s.logger.Info("Collector deactivated",
		zap.String("collector_id", id.String()))
	return nil
}

func toCollectorResponse(c *partner.Collector) CollectorResponse {
	return CollectorResponse{
		ID:        c.ID,
		OrgID:     c.OrgID,
		Code:      c.Code,
		Name:      c.Name,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
