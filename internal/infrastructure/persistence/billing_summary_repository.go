package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wastebill/backend/internal/domain/billing"
	"github.com/wastebill/backend/internal/domain/shared"
	"github.com/wastebill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillingSummaryRepository implements BillingSummaryRepository using GORM
type GormBillingSummaryRepository struct {
	db *gorm.DB
}

// NewGormBillingSummaryRepository creates a new GormBillingSummaryRepository
func NewGormBillingSummaryRepository(db *gorm.DB) *GormBillingSummaryRepository {
	return &GormBillingSummaryRepository{db: db}
}

// Create inserts a new summary. A duplicate (org, collector, month) surfaces
// as shared.ErrAlreadyExists via the unique index.
func (r *GormBillingSummaryRepository) Create(ctx context.Context, summary *billing.BillingSummary) error {
	var model models.BillingSummaryModel
	model.FromDomain(summary)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// Update overwrites an existing summary row, guarded by optimistic locking on
// the version column
func (r *GormBillingSummaryRepository) Update(ctx context.Context, summary *billing.BillingSummary) error {
	var model models.BillingSummaryModel
	model.FromDomain(summary)

	result := r.db.WithContext(ctx).
		Model(&models.BillingSummaryModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a summary by its ID
func (r *GormBillingSummaryRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingSummary, error) {
	var model models.BillingSummaryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByKey finds the summary for one (org, collector, month)
func (r *GormBillingSummaryRepository) FindByKey(ctx context.Context, orgID, collectorID uuid.UUID, month time.Time) (*billing.BillingSummary, error) {
	var model models.BillingSummaryModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND collector_id = ? AND billing_month = ?", orgID, collectorID, billing.NormalizeMonth(month)).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByOrg returns summaries for an organization, optionally narrowed by
// month and status
func (r *GormBillingSummaryRepository) FindByOrg(ctx context.Context, orgID uuid.UUID, filter billing.SummaryFilter) ([]billing.BillingSummary, error) {
	query := r.db.WithContext(ctx).Where("org_id = ?", orgID)
	if filter.Month != nil {
		query = query.Where("billing_month = ?", billing.NormalizeMonth(*filter.Month))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var rows []models.BillingSummaryModel
	if err := query.Order("billing_month DESC, collector_id ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	summaries := make([]billing.BillingSummary, len(rows))
	for i := range rows {
		summaries[i] = *rows[i].ToDomain()
	}
	return summaries, nil
}

// FindApprovedByMonth returns APPROVED summaries for (org, month)
func (r *GormBillingSummaryRepository) FindApprovedByMonth(ctx context.Context, orgID uuid.UUID, month time.Time) ([]billing.BillingSummary, error) {
	var rows []models.BillingSummaryModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND billing_month = ? AND status = ?",
			orgID, billing.NormalizeMonth(month), string(billing.SummaryStatusApproved)).
		Order("collector_id ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	summaries := make([]billing.BillingSummary, len(rows))
	for i := range rows {
		summaries[i] = *rows[i].ToDomain()
	}
	return summaries, nil
}
