package models

import (
	"github.com/google/uuid"
	"github.com/wastebill/backend/internal/domain/partner"
)

// OrganizationModel is the persistence model for organizations
type OrganizationModel struct {
	AggregateModel
	Code     string `gorm:"size:50;not null;uniqueIndex"`
	Name     string `gorm:"size:255;not null"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName specifies the table name
func (OrganizationModel) TableName() string {
	return "organizations"
}

// ToDomain converts the model to a domain organization
func (m *OrganizationModel) ToDomain() *partner.Organization {
	return &partner.Organization{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the model from a domain organization
func (m *OrganizationModel) FromDomain(org *partner.Organization) {
	m.FromDomainAggregateRoot(org.BaseAggregateRoot)
	m.Code = org.Code
	m.Name = org.Name
	m.IsActive = org.IsActive
}

// CollectorModel is the persistence model for waste collectors
type CollectorModel struct {
	AggregateModel
	OrgID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_collectors_org_code"`
	Code     string    `gorm:"size:50;not null;uniqueIndex:idx_collectors_org_code"`
	Name     string    `gorm:"size:255;not null"`
	IsActive bool      `gorm:"not null;default:true"`
	Deleted  bool      `gorm:"not null;default:false"`
}

// TableName specifies the table name
func (CollectorModel) TableName() string {
	return "collectors"
}

// ToDomain converts the model to a domain collector
func (m *CollectorModel) ToDomain() *partner.Collector {
	return &partner.Collector{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrgID:             m.OrgID,
		Code:              m.Code,
		Name:              m.Name,
		IsActive:          m.IsActive,
		Deleted:           m.Deleted,
	}
}

// FromDomain populates the model from a domain collector
func (m *CollectorModel) FromDomain(c *partner.Collector) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.OrgID = c.OrgID
	m.Code = c.Code
	m.Name = c.Name
	m.IsActive = c.IsActive
	m.Deleted = c.Deleted
}
