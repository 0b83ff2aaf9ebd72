package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wastebill/backend/internal/domain/partner"
	"github.com/wastebill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCollectorRepository implements CollectorRepository using GORM
type GormCollectorRepository struct {
	db *gorm.DB
}

// NewGormCollectorRepository creates a new GormCollectorRepository
func NewGormCollectorRepository(db *gorm.DB) *GormCollectorRepository {
	return &GormCollectorRepository{db: db}
}

// Save creates or updates a collector
func (r *GormCollectorRepository) Save(ctx context.Context, collector *partner.Collector) error {
	var model models.CollectorModel
	model.FromDomain(collector)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// FindByID finds a collector by its ID
func (r *GormCollectorRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Collector, error) {
	var model models.CollectorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindActiveByOrg returns billable collectors for an organization ordered by
// collector code. The code ordering is what makes invoice line positions
// reproducible across runs.
func (r *GormCollectorRepository) FindActiveByOrg(ctx context.Context, orgID uuid.UUID) ([]partner.Collector, error) {
	var rows []models.CollectorModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND is_active = ? AND deleted = ?", orgID, true, false).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	collectors := make([]partner.Collector, len(rows))
	for i := range rows {
		collectors[i] = *rows[i].ToDomain()
	}
	return collectors, nil
}
