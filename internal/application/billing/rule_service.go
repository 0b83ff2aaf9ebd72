package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wastebill/backend/internal/domain/billing"
	"github.com/wastebill/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RuleService manages commission rules
type RuleService struct {
	ruleRepo billing.CommissionRuleRepository
	logger   *zap.Logger
}

// NewRuleService creates a new RuleService
func NewRuleService(ruleRepo billing.CommissionRuleRepository, logger *zap.Logger) *RuleService {
	return &RuleService{
		ruleRepo: ruleRepo,
		logger:   logger,
	}
}

// CreateRuleRequest is the input for creating a commission rule
type CreateRuleRequest struct {
	OrgID           uuid.UUID
	CollectorID     *uuid.UUID
	BillingType     string
	CommissionType  string
	CommissionValue decimal.Decimal
	EffectiveFrom   string // YYYY-MM
	EffectiveTo     string // optional YYYY-MM
}

// CommissionRuleResponse represents a commission rule in responses
type CommissionRuleResponse struct {
	ID              uuid.UUID       `json:"id"`
	OrgID           uuid.UUID       `json:"org_id"`
	CollectorID     *uuid.UUID      `json:"collector_id,omitempty"`
	BillingType     string          `json:"billing_type"`
	CommissionType  string          `json:"commission_type"`
	CommissionValue decimal.Decimal `json:"commission_value"`
	IsActive        bool            `json:"is_active"`
	EffectiveFrom   string          `json:"effective_from"`
	EffectiveTo     string          `json:"effective_to,omitempty"`
	IsManagementFee bool            `json:"is_management_fee"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Create validates and persists a new commission rule
func (s *RuleService) Create(ctx context.Context, req CreateRuleRequest) (*CommissionRuleResponse, error) {
	from, err := billing.ParseMonth(req.EffectiveFrom)
	if err != nil {
		return nil, err
	}

	var to *time.Time
	if req.EffectiveTo != "" {
		t, err := billing.ParseMonth(req.EffectiveTo)
		if err != nil {
			return nil, err
		}
		to = &t
	}

	rule, err := billing.NewCommissionRule(
		req.OrgID,
		req.CollectorID,
		billing.RuleBillingType(req.BillingType),
		billing.CommissionType(req.CommissionType),
		req.CommissionValue,
		from,
		to,
	)
	if err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.Info("Commission rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("org_id", req.OrgID.String()),
		zap.String("billing_type", req.BillingType),
		zap.String("commission_type", req.CommissionType))

	resp := toRuleResponse(rule)
	return &resp, nil
}

// ListActive returns every active rule for the organization
func (s *RuleService) ListActive(ctx context.Context, orgID uuid.UUID) ([]CommissionRuleResponse, error) {
	rules, err := s.ruleRepo.FindActiveByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]CommissionRuleResponse, len(rules))
	for i := range rules {
		out[i] = toRuleResponse(&rules[i])
	}
	return out, nil
}

// Deactivate marks a rule inactive. Rules are never deleted so historical
// invoice math stays explainable.
func (s *RuleService) Deactivate(ctx context.Context, id uuid.UUID) error {
	rule, err := s.ruleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !rule.IsActive {
		return shared.ErrInvalidState
	}
	rule.Deactivate()
	rule.IncrementVersion()
	return s.ruleRepo.Save(ctx, rule)
}

func toRuleResponse(r *billing.CommissionRule) CommissionRuleResponse {
	resp := CommissionRuleResponse{
		ID:              r.ID,
		OrgID:           r.OrgID,
		CollectorID:     r.CollectorID,
		BillingType:     string(r.BillingType),
		CommissionType:  string(r.CommissionType),
		CommissionValue: r.CommissionValue,
		IsActive:        r.IsActive,
		EffectiveFrom:   billing.FormatMonth(r.EffectiveFrom),
		IsManagementFee: r.IsManagementFee(),
		CreatedAt:       r.CreatedAt,
	}
	if r.EffectiveTo != nil {
		resp.EffectiveTo = billing.FormatMonth(*r.EffectiveTo)
	}
	return resp
}
