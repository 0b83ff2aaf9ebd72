package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wastebill/backend/internal/domain/billing"
	"github.com/wastebill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTenantInvoiceRepository implements TenantInvoiceRepository using GORM
type GormTenantInvoiceRepository struct {
	db *gorm.DB
}

// NewGormTenantInvoiceRepository creates a new GormTenantInvoiceRepository
func NewGormTenantInvoiceRepository(db *gorm.DB) *GormTenantInvoiceRepository {
	return &GormTenantInvoiceRepository{db: db}
}

// Create persists the invoice header and all of its lines in one transaction.
// A rollback on any failure guarantees no partial invoice is visible. The
// unique index on (org_id, billing_month) reports duplicates as
// shared.ErrAlreadyExists.
func (r *GormTenantInvoiceRepository) Create(ctx context.Context, invoice *billing.TenantInvoice) error {
	var model models.TenantInvoiceModel
	model.FromDomain(invoice)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := model.Items
		model.Items = nil

		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateError(err)
}

// FindByID finds an invoice with its lines ordered by display order
func (r *GormTenantInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.TenantInvoice, error) {
	var model models.TenantInvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByKey finds the invoice for one (org, month)
func (r *GormTenantInvoiceRepository) FindByKey(ctx context.Context, orgID uuid.UUID, month time.Time) (*billing.TenantInvoice, error) {
	var model models.TenantInvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("org_id = ? AND billing_month = ?", orgID, billing.NormalizeMonth(month)).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// ExistsByKey reports whether an invoice exists for (org, month)
func (r *GormTenantInvoiceRepository) ExistsByKey(ctx context.Context, orgID uuid.UUID, month time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TenantInvoiceModel{}).
		Where("org_id = ? AND billing_month = ?", orgID, billing.NormalizeMonth(month)).
		Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// FindByOrg returns all invoices for an organization, most recent month first
func (r *GormTenantInvoiceRepository) FindByOrg(ctx context.Context, orgID uuid.UUID) ([]billing.TenantInvoice, error) {
	var rows []models.TenantInvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("org_id = ?", orgID).
		Order("billing_month DESC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	invoices := make([]billing.TenantInvoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}
