package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wastebill/backend/internal/domain/partner"
	"github.com/wastebill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrganizationRepository implements OrganizationRepository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Save creates or updates an organization
func (r *GormOrganizationRepository) Save(ctx context.Context, org *partner.Organization) error {
	var model models.OrganizationModel
	model.FromDomain(org)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// FindByID finds an organization by its ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds an organization by its unique code
func (r *GormOrganizationRepository) FindByCode(ctx context.Context, code string) (*partner.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllActive returns all active organizations ordered by code
func (r *GormOrganizationRepository) FindAllActive(ctx context.Context) ([]partner.Organization, error) {
	var rows []models.OrganizationModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	orgs := make([]partner.Organization, len(rows))
	for i := range rows {
		orgs[i] = *rows[i].ToDomain()
	}
	return orgs, nil
}
