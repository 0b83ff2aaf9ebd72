package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wastebill/backend/internal/domain/billing"
	"github.com/wastebill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillingItemRepository implements BillingItemRepository using GORM
type GormBillingItemRepository struct {
	db *gorm.DB
}

// NewGormBillingItemRepository creates a new GormBillingItemRepository
func NewGormBillingItemRepository(db *gorm.DB) *GormBillingItemRepository {
	return &GormBillingItemRepository{db: db}
}

// Save creates or updates a billing item
func (r *GormBillingItemRepository) Save(ctx context.Context, item *billing.BillingItem) error {
	var model models.BillingItemModel
	model.FromDomain(item)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// FindByID retrieves a billing item by ID
func (r *GormBillingItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingItem, error) {
	var model models.BillingItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAggregatable returns approved, non-deleted items for one collector and
// month. The status and deleted predicates live in the query; the aggregator
// re-checks them per item before summing.
func (r *GormBillingItemRepository) FindAggregatable(ctx context.Context, orgID, collectorID uuid.UUID, month time.Time) ([]billing.BillingItem, error) {
	var rows []models.BillingItemModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND collector_id = ? AND billing_month = ?", orgID, collectorID, billing.NormalizeMonth(month)).
		Where("status = ? AND deleted = ?", string(billing.ItemStatusApproved), false).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	items := make([]billing.BillingItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}
