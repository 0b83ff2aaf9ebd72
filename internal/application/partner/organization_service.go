package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wastebill/backend/internal/domain/partner"
	"go.uber.org/zap"
)

// OrganizationService manages emitter organizations
type OrganizationService struct {
	orgRepo partner.OrganizationRepository
	logger  *zap.Logger
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(orgRepo partner.OrganizationRepository, logger *zap.Logger) *OrganizationService {
	return &OrganizationService{
		orgRepo: orgRepo,
		logger:  logger,
	}
}

// CreateOrganizationRequest is the input for creating an organization
type CreateOrganizationRequest struct {
	Code string
	Name string
}

// OrganizationResponse represents an organization in responses
type OrganizationResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Create validates and persists a new organization
func (s *OrganizationService) Create(ctx context.Context, req CreateOrganizationRequest) (*OrganizationResponse, error) {
	org, err := partner.NewOrganization(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}

	s.logger.Info("Organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("code", org.Code))

	resp := toOrganizationResponse(org)
	return &resp, nil
}

// Get retrieves an organization by ID
func (s *OrganizationService) Get(ctx context.Context, id uuid.UUID) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toOrganizationResponse(org)
	return &resp, nil
}

// ListActive returns every active organization ordered by code
func (s *OrganizationService) ListActive(ctx context.Context) ([]OrganizationResponse, error) {
	orgs, err := s.orgRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]OrganizationResponse, len(orgs))
	for i := range orgs {
		out[i] = toOrganizationResponse(&orgs[i])
	}
	return out, nil
}

// Deactivate excludes the organization from future billing runs
func (s *OrganizationService) Deactivate(ctx context.Context, id uuid.UUID) error {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	org.Deactivate()
	org.IncrementVersion()
	if err := s.orgRepo.Save(ctx, org); err != nil {
		return err
	}

	s.logger.Info("Organization deactivated",
		zap.String("org_id", id.String()))
	return nil
}

func toOrganizationResponse(o *partner.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:        o.ID,
		Code:      o.Code,
		Name:      o.Name,
		IsActive:  o.IsActive,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
