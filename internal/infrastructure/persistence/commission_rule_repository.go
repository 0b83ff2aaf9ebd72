package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wastebill/backend/internal/domain/billing"
	"github.com/wastebill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCommissionRuleRepository implements CommissionRuleRepository using GORM
type GormCommissionRuleRepository struct {
	db *gorm.DB
}

// NewGormCommissionRuleRepository creates a new GormCommissionRuleRepository
func NewGormCommissionRuleRepository(db *gorm.DB) *GormCommissionRuleRepository {
	return &GormCommissionRuleRepository{db: db}
}

// Save creates or updates a commission rule
func (r *GormCommissionRuleRepository) Save(ctx context.Context, rule *billing.CommissionRule) error {
	var model models.CommissionRuleModel
	model.FromDomain(rule)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// FindByID finds a commission rule by its ID
func (r *GormCommissionRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.CommissionRule, error) {
	var model models.CommissionRuleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindActiveByOrg returns every active rule for the organization. Effective
// date and collector scoping are applied by the calculator, not the query.
func (r *GormCommissionRuleRepository) FindActiveByOrg(ctx context.Context, orgID uuid.UUID) ([]billing.CommissionRule, error) {
	var rows []models.CommissionRuleModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	rules := make([]billing.CommissionRule, len(rows))
	for i := range rows {
		rules[i] = *rows[i].ToDomain()
	}
	return rules, nil
}
