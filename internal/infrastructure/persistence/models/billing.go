package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wastebill/backend/internal/domain/billing"
)

// BillingItemModel is the persistence model for billing items
type BillingItemModel struct {
	AggregateModel
	OrgID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_billing_items_key"`
	CollectorID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_billing_items_key"`
	StoreID      uuid.UUID       `gorm:"type:uuid;not null"`
	BillingMonth time.Time       `gorm:"type:date;not null;index:idx_billing_items_key"`
	BillingType  string          `gorm:"size:20;not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status       string          `gorm:"size:20;not null;index"`
	Deleted      bool            `gorm:"not null;default:false"`
}

// TableName specifies the table name
func (BillingItemModel) TableName() string {
	return "billing_items"
}

// ToDomain converts the model to a domain billing item
func (m *BillingItemModel) ToDomain() *billing.BillingItem {
	return &billing.BillingItem{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrgID:             m.OrgID,
		CollectorID:       m.CollectorID,
		StoreID:           m.StoreID,
		BillingMonth:      billing.NormalizeMonth(m.BillingMonth),
		BillingType:       billing.BillingType(m.BillingType),
		Amount:            m.Amount,
		TaxAmount:         m.TaxAmount,
		Status:            billing.ItemStatus(m.Status),
		Deleted:           m.Deleted,
	}
}

// FromDomain populates the model from a domain billing item
func (m *BillingItemModel) FromDomain(item *billing.BillingItem) {
	m.FromDomainAggregateRoot(item.BaseAggregateRoot)
	m.OrgID = item.OrgID
	m.CollectorID = item.CollectorID
	m.StoreID = item.StoreID
	m.BillingMonth = item.BillingMonth
	m.BillingType = string(item.BillingType)
	m.Amount = item.Amount
	m.TaxAmount = item.TaxAmount
	m.Status = string(item.Status)
	m.Deleted = item.Deleted
}

// BillingSummaryModel is the persistence model for monthly billing summaries.
// The composite unique index is the authoritative guard against concurrent
// generation for the same (org, collector, month).
type BillingSummaryModel struct {
	AggregateModel
	OrgID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_billing_summaries_key"`
	CollectorID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_billing_summaries_key"`
	BillingMonth time.Time `gorm:"type:date;not null;uniqueIndex:idx_billing_summaries_key"`

	TotalFixedAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalMeteredAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalOtherAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	FixedItemsCount   int `gorm:"not null;default:0"`
	MeteredItemsCount int `gorm:"not null;default:0"`
	OtherItemsCount   int `gorm:"not null;default:0"`
	TotalItemsCount   int `gorm:"not null;default:0"`

	SubtotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Status string `gorm:"size:20;not null;index"`
}

// TableName specifies the table name
func (BillingSummaryModel) TableName() string {
	return "billing_summaries"
}

// ToDomain converts the model to a domain billing summary
func (m *BillingSummaryModel) ToDomain() *billing.BillingSummary {
	return &billing.BillingSummary{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		OrgID:              m.OrgID,
		CollectorID:        m.CollectorID,
		BillingMonth:       billing.NormalizeMonth(m.BillingMonth),
		TotalFixedAmount:   m.TotalFixedAmount,
		TotalMeteredAmount: m.TotalMeteredAmount,
		TotalOtherAmount:   m.TotalOtherAmount,
		FixedItemsCount:    m.FixedItemsCount,
		MeteredItemsCount:  m.MeteredItemsCount,
		OtherItemsCount:    m.OtherItemsCount,
		TotalItemsCount:    m.TotalItemsCount,
		SubtotalAmount:     m.SubtotalAmount,
		TaxRate:            m.TaxRate,
		TaxAmount:          m.TaxAmount,
		TotalAmount:        m.TotalAmount,
		Status:             billing.SummaryStatus(m.Status),
	}
}

// FromDomain populates the model from a domain billing summary
func (m *BillingSummaryModel) FromDomain(s *billing.BillingSummary) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.OrgID = s.OrgID
	m.CollectorID = s.CollectorID
	m.BillingMonth = s.BillingMonth
	m.TotalFixedAmount = s.TotalFixedAmount
	m.TotalMeteredAmount = s.TotalMeteredAmount
	m.TotalOtherAmount = s.TotalOtherAmount
	m.FixedItemsCount = s.FixedItemsCount
	m.MeteredItemsCount = s.MeteredItemsCount
	m.OtherItemsCount = s.OtherItemsCount
	m.TotalItemsCount = s.TotalItemsCount
	m.SubtotalAmount = s.SubtotalAmount
	m.TaxRate = s.TaxRate
	m.TaxAmount = s.TaxAmount
	m.TotalAmount = s.TotalAmount
	m.Status = string(s.Status)
}

// CommissionRuleModel is the persistence model for commission rules
type CommissionRuleModel struct {
	AggregateModel
	OrgID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	CollectorID     *uuid.UUID      `gorm:"type:uuid;index"`
	BillingType     string          `gorm:"size:20;not null"`
	CommissionType  string          `gorm:"size:20;not null"`
	CommissionValue decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsActive        bool            `gorm:"not null;default:true"`
	EffectiveFrom   time.Time       `gorm:"type:date;not null"`
	EffectiveTo     *time.Time      `gorm:"type:date"`
}

// TableName specifies the table name
func (CommissionRuleModel) TableName() string {
	return "commission_rules"
}

// ToDomain converts the model to a domain commission rule
func (m *CommissionRuleModel) ToDomain() *billing.CommissionRule {
	return &billing.CommissionRule{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrgID:             m.OrgID,
		CollectorID:       m.CollectorID,
		BillingType:       billing.RuleBillingType(m.BillingType),
		CommissionType:    billing.CommissionType(m.CommissionType),
		CommissionValue:   m.CommissionValue,
		IsActive:          m.IsActive,
		EffectiveFrom:     m.EffectiveFrom,
		EffectiveTo:       m.EffectiveTo,
	}
}

// FromDomain populates the model from a domain commission rule
func (m *CommissionRuleModel) FromDomain(r *billing.CommissionRule) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.OrgID = r.OrgID
	m.CollectorID = r.CollectorID
	m.BillingType = string(r.BillingType)
	m.CommissionType = string(r.CommissionType)
	m.CommissionValue = r.CommissionValue
	m.IsActive = r.IsActive
	m.EffectiveFrom = r.EffectiveFrom
	m.EffectiveTo = r.EffectiveTo
}

// TenantInvoiceModel is the persistence model for tenant invoices.
// One invoice exists per (org, month); the unique index enforces it.
type TenantInvoiceModel struct {
	AggregateModel
	OrgID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tenant_invoices_key"`
	BillingMonth  time.Time `gorm:"type:date;not null;uniqueIndex:idx_tenant_invoices_key"`
	InvoiceNumber string    `gorm:"size:50;not null;uniqueIndex"`

	CollectorsSubtotal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CollectorsTax      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CollectorsTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	CommissionSubtotal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CommissionTax      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CommissionTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	GrandSubtotal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTax      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Status string `gorm:"size:20;not null"`

	Items []TenantInvoiceItemModel `gorm:"foreignKey:InvoiceID"`
}

// TableName specifies the table name
func (TenantInvoiceModel) TableName() string {
	return "tenant_invoices"
}

// ToDomain converts the model and its items to a domain invoice
func (m *TenantInvoiceModel) ToDomain() *billing.TenantInvoice {
	items := make([]billing.TenantInvoiceItem, len(m.Items))
	for i := range m.Items {
		items[i] = *m.Items[i].ToDomain()
	}
	return &billing.TenantInvoice{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		OrgID:              m.OrgID,
		BillingMonth:       billing.NormalizeMonth(m.BillingMonth),
		InvoiceNumber:      m.InvoiceNumber,
		CollectorsSubtotal: m.CollectorsSubtotal,
		CollectorsTax:      m.CollectorsTax,
		CollectorsTotal:    m.CollectorsTotal,
		CommissionSubtotal: m.CommissionSubtotal,
		CommissionTax:      m.CommissionTax,
		CommissionTotal:    m.CommissionTotal,
		GrandSubtotal:      m.GrandSubtotal,
		GrandTax:           m.GrandTax,
		GrandTotal:         m.GrandTotal,
		Status:             billing.InvoiceStatus(m.Status),
		Items:              items,
	}
}

// FromDomain populates the model and its items from a domain invoice
func (m *TenantInvoiceModel) FromDomain(inv *billing.TenantInvoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.OrgID = inv.OrgID
	m.BillingMonth = inv.BillingMonth
	m.InvoiceNumber = inv.InvoiceNumber
	m.CollectorsSubtotal = inv.CollectorsSubtotal
	m.CollectorsTax = inv.CollectorsTax
	m.CollectorsTotal = inv.CollectorsTotal
	m.CommissionSubtotal = inv.CommissionSubtotal
	m.CommissionTax = inv.CommissionTax
	m.CommissionTotal = inv.CommissionTotal
	m.GrandSubtotal = inv.GrandSubtotal
	m.GrandTax = inv.GrandTax
	m.GrandTotal = inv.GrandTotal
	m.Status = string(inv.Status)

	m.Items = make([]TenantInvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i].FromDomain(&inv.Items[i])
	}
}

// TenantInvoiceItemModel is the persistence model for invoice lines
type TenantInvoiceItemModel struct {
	BaseModel
	InvoiceID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemType         string          `gorm:"size:30;not null"`
	CollectorID      *uuid.UUID      `gorm:"type:uuid;index"`
	CollectorName    string          `gorm:"size:255"`
	BaseAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DisplayOrder     int             `gorm:"not null"`
}

// TableName specifies the table name
func (TenantInvoiceItemModel) TableName() string {
	return "tenant_invoice_items"
}

// ToDomain converts the model to a domain invoice item
func (m *TenantInvoiceItemModel) ToDomain() *billing.TenantInvoiceItem {
	return &billing.TenantInvoiceItem{
		BaseEntity:       m.BaseModel.ToDomain(),
		InvoiceID:        m.InvoiceID,
		ItemType:         billing.InvoiceItemType(m.ItemType),
		CollectorID:      m.CollectorID,
		CollectorName:    m.CollectorName,
		BaseAmount:       m.BaseAmount,
		CommissionAmount: m.CommissionAmount,
		Subtotal:         m.Subtotal,
		TaxRate:          m.TaxRate,
		TaxAmount:        m.TaxAmount,
		TotalAmount:      m.TotalAmount,
		DisplayOrder:     m.DisplayOrder,
	}
}

// FromDomain populates the model from a domain invoice item
func (m *TenantInvoiceItemModel) FromDomain(item *billing.TenantInvoiceItem) {
	m.FromDomainBaseEntity(item.BaseEntity)
	m.InvoiceID = item.InvoiceID
	m.ItemType = string(item.ItemType)
	m.CollectorID = item.CollectorID
	m.CollectorName = item.CollectorName
	m.BaseAmount = item.BaseAmount
	m.CommissionAmount = item.CommissionAmount
	m.Subtotal = item.Subtotal
	m.TaxRate = item.TaxRate
	m.TaxAmount = item.TaxAmount
	m.TotalAmount = item.TotalAmount
	m.DisplayOrder = item.DisplayOrder
}
