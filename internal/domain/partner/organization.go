package partner

import (
	"strings"

	"github.com/wastebill/backend/internal/domain/shared"
)

// Organization represents an emitter organization (tenant) that is billed for
// industrial-waste collection across its stores.
type Organization struct {
	shared.BaseAggregateRoot
	Code     string // Unique organization code, used as the invoice number suffix
	Name     string
	IsActive bool
}

// NewOrganization creates a new active organization
func NewOrganization(code, name string) (*Organization, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Organization code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Organization name cannot be empty")
	}

	return &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		IsActive:          true,
	}, nil
}

// Deactivate marks the organization inactive. Inactive organizations are
// excluded from batch billing runs.
func (o *Organization) Deactivate() {
	o.IsActive = false
}

// Activate marks the organization active
func (o *Organization) Activate() {
	o.IsActive = true
}
