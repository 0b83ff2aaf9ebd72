package partner

import (
	"strings"

	"github.com/google/uuid"
	"github.com/wastebill/backend/internal/domain/shared"
)

// Collector represents a waste-collection company contracted by an organization.
// Billing line items are recorded per collector and aggregated into monthly summaries.
type Collector struct {
	shared.BaseAggregateRoot
	OrgID    uuid.UUID
	Code     string // Stable sort key for invoice item ordering
	Name     string
	IsActive bool
	Deleted  bool
}

// NewCollector creates a new active collector for an organization
func NewCollector(orgID uuid.UUID, code, name string) (*Collector, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Organization ID cannot be empty")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Collector code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Collector name cannot be empty")
	}

	return &Collector{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrgID:             orgID,
		Code:              code,
		Name:              name,
		IsActive:          true,
	}, nil
}

// IsBillable reports whether the collector participates in billing runs
func (c *Collector) IsBillable() bool {
	return c.IsActive && !c.Deleted
}

// Deactivate marks the collector inactive
func (c *Collector) Deactivate() {
	c.IsActive = false
}

// MarkDeleted soft-deletes the collector
func (c *Collector) MarkDeleted() {
	c.Deleted = true
}
