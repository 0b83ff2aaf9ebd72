package partner

import (
	"context"

	"github.com/google/uuid"
)

// OrganizationRepository defines persistence operations for organizations
type OrganizationRepository interface {
	Save(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindByCode(ctx context.Context, code string) (*Organization, error)
	FindAllActive(ctx context.Context) ([]Organization, error)
}

// CollectorRepository defines persistence operations for collectors
type CollectorRepository interface {
	Save(ctx context.Context, collector *Collector) error
	FindByID(ctx context.Context, id uuid.UUID) (*Collector, error)
	// FindActiveByOrg returns billable collectors for an organization
	// ordered by collector code.
	FindActiveByOrg(ctx context.Context, orgID uuid.UUID) ([]Collector, error)
}
