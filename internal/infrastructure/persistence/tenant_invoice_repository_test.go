package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wastebill/backend/internal/domain/billing"
	"github.com/wastebill/backend/internal/domain/shared"
	"github.com/wastebill/backend/internal/infrastructure/persistence/models"
)

func newTestInvoice(t *testing.T, orgID uuid.UUID) *billing.TenantInvoice {
	t.Helper()

	collectorID := uuid.New()
	summary := newTestSummary(t, orgID, collectorID)
	require.NoError(t, summary.Approve())

	invoice, err := billing.NewTenantInvoice(orgID, "ORG100", may2026())
	require.NoError(t, err)
	require.NoError(t, invoice.AddCollectorBilling(summary, "Collector A"))
	invoice.ComputeTotals()
	require.NoError(t, invoice.Validate())
	return invoice
}

func TestGormTenantInvoiceRepository_CreatePersistsInvoiceWithItems(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTenantInvoiceRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	invoice := newTestInvoice(t, orgID)
	require.NoError(t, repo.Create(ctx, invoice))

	found, err := repo.FindByKey(ctx, orgID, may2026())
	require.NoError(t, err)
	assert.Equal(t, invoice.InvoiceNumber, found.InvoiceNumber)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 1, found.Items[0].DisplayOrder)
	assert.True(t, found.GrandTotal.Equal(decimal.NewFromInt(110000)))
}

func TestGormTenantInvoiceRepository_DuplicateMonthIsConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTenantInvoiceRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	require.NoError(t, repo.Create(ctx, newTestInvoice(t, orgID)))

	err := repo.Create(ctx, newTestInvoice(t, orgID))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGormTenantInvoiceRepository_FailedCreateLeavesNoPartialRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTenantInvoiceRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	require.NoError(t, repo.Create(ctx, newTestInvoice(t, orgID)))

	var itemsBefore int64
	require.NoError(t, db.Model(&models.TenantInvoiceItemModel{}).Count(&itemsBefore).Error)

	// Second invoice for the same month fails on the header insert; its items
	// must not survive the rollback
	err := repo.Create(ctx, newTestInvoice(t, orgID))
	require.Error(t, err)

	var itemsAfter int64
	require.NoError(t, db.Model(&models.TenantInvoiceItemModel{}).Count(&itemsAfter).Error)
	assert.Equal(t, itemsBefore, itemsAfter)

	var invoices int64
	require.NoError(t, db.Model(&models.TenantInvoiceModel{}).Count(&invoices).Error)
	assert.Equal(t, int64(1), invoices)
}

func TestGormTenantInvoiceRepository_ExistsByKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTenantInvoiceRepository(db)
	ctx := context.Background()

	orgID := uuid.New()

	exists, err := repo.ExistsByKey(ctx, orgID, may2026())
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, newTestInvoice(t, orgID)))

	exists, err = repo.ExistsByKey(ctx, orgID, may2026())
	require.NoError(t, err)
	assert.True(t, exists)

	// A different month is a different key
	exists, err = repo.ExistsByKey(ctx, orgID, may2026().AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormTenantInvoiceRepository_ItemsOrderedByDisplayOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTenantInvoiceRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	invoice, err := billing.NewTenantInvoice(orgID, "ORG100", may2026())
	require.NoError(t, err)

	for _, code := range []string{"Collector A", "Collector B", "Collector C"} {
		summary := newTestSummary(t, orgID, uuid.New())
		require.NoError(t, summary.Approve())
		require.NoError(t, invoice.AddCollectorBilling(summary, code))
	}
	invoice.ComputeTotals()
	require.NoError(t, invoice.Validate())
	require.NoError(t, repo.Create(ctx, invoice))

	found, err := repo.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 3)
	for i, item := range found.Items {
		assert.Equal(t, i+1, item.DisplayOrder)
	}
}

func TestGormTenantInvoiceRepository_FindByOrg(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTenantInvoiceRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	require.NoError(t, repo.Create(ctx, newTestInvoice(t, orgID)))

	second := newTestInvoice(t, orgID)
	second.BillingMonth = may2026().AddDate(0, 1, 0)
	second.InvoiceNumber = billing.BuildInvoiceNumber(second.BillingMonth, "ORG100")
	require.NoError(t, repo.Create(ctx, second))

	invoices, err := repo.FindByOrg(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	// Most recent month first
	assert.True(t, invoices[0].BillingMonth.After(invoices[1].BillingMonth))
}
