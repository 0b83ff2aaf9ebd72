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
)

func newTestSummary(t *testing.T, orgID, collectorID uuid.UUID) *billing.BillingSummary {
	t.Helper()

	item, err := billing.NewBillingItem(orgID, collectorID, uuid.New(), may2026(),
		billing.BillingTypeMetered, decimal.NewFromInt(100000), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, item.Approve())

	summary, err := billing.NewSummaryFromItems(orgID, collectorID, may2026(),
		[]billing.BillingItem{*item}, decimal.NewFromFloat(0.10))
	require.NoError(t, err)
	return summary
}

func TestGormBillingSummaryRepository_CreateAndFindByKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBillingSummaryRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	collectorID := uuid.New()
	summary := newTestSummary(t, orgID, collectorID)

	require.NoError(t, repo.Create(ctx, summary))

	found, err := repo.FindByKey(ctx, orgID, collectorID, may2026())
	require.NoError(t, err)
	assert.Equal(t, summary.ID, found.ID)
	assert.True(t, found.SubtotalAmount.Equal(decimal.NewFromInt(100000)))
	assert.True(t, found.TaxAmount.Equal(decimal.NewFromInt(10000)))
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(110000)))
	assert.Equal(t, billing.SummaryStatusDraft, found.Status)
}

func TestGormBillingSummaryRepository_DuplicateKeyIsConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBillingSummaryRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	collectorID := uuid.New()

	require.NoError(t, repo.Create(ctx, newTestSummary(t, orgID, collectorID)))

	err := repo.Create(ctx, newTestSummary(t, orgID, collectorID))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGormBillingSummaryRepository_SameCollectorDifferentMonthAllowed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBillingSummaryRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	collectorID := uuid.New()

	first := newTestSummary(t, orgID, collectorID)
	require.NoError(t, repo.Create(ctx, first))

	second := newTestSummary(t, orgID, collectorID)
	second.BillingMonth = may2026().AddDate(0, 1, 0)
	require.NoError(t, repo.Create(ctx, second))
}

func TestGormBillingSummaryRepository_FindByKey_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBillingSummaryRepository(db)

	_, err := repo.FindByKey(context.Background(), uuid.New(), uuid.New(), may2026())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormBillingSummaryRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBillingSummaryRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	collectorID := uuid.New()
	summary := newTestSummary(t, orgID, collectorID)
	require.NoError(t, repo.Create(ctx, summary))

	item, err := billing.NewBillingItem(orgID, collectorID, uuid.New(), may2026(),
		billing.BillingTypeFixed, decimal.NewFromInt(50000), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, item.Approve())

	summary.Recompute([]billing.BillingItem{*item})
	summary.IncrementVersion()
	require.NoError(t, repo.Update(ctx, summary))

	found, err := repo.FindByKey(ctx, orgID, collectorID, may2026())
	require.NoError(t, err)
	assert.True(t, found.SubtotalAmount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, 2, found.Version)
}

func TestGormBillingSummaryRepository_Update_StaleVersionRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBillingSummaryRepository(db)
	ctx := context.Background()

	summary := newTestSummary(t, uuid.New(), uuid.New())
	require.NoError(t, repo.Create(ctx, summary))

	// Version was never incremented, so the optimistic predicate cannot match
	err := repo.Update(ctx, summary)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestGormBillingSummaryRepository_FindApprovedByMonth(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBillingSummaryRepository(db)
	ctx := context.Background()

	orgID := uuid.New()

	approved := newTestSummary(t, orgID, uuid.New())
	require.NoError(t, approved.Approve())
	require.NoError(t, repo.Create(ctx, approved))

	draft := newTestSummary(t, orgID, uuid.New())
	require.NoError(t, repo.Create(ctx, draft))

	otherMonth := newTestSummary(t, orgID, uuid.New())
	otherMonth.BillingMonth = may2026().AddDate(0, 1, 0)
	require.NoError(t, otherMonth.Approve())
	require.NoError(t, repo.Create(ctx, otherMonth))

	found, err := repo.FindApprovedByMonth(ctx, orgID, may2026())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, approved.ID, found[0].ID)
}

func TestGormBillingSummaryRepository_FindByOrgWithFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBillingSummaryRepository(db)
	ctx := context.Background()

	orgID := uuid.New()

	approved := newTestSummary(t, orgID, uuid.New())
	require.NoError(t, approved.Approve())
	require.NoError(t, repo.Create(ctx, approved))

	draft := newTestSummary(t, orgID, uuid.New())
	require.NoError(t, repo.Create(ctx, draft))

	month := may2026()
	status := billing.SummaryStatusApproved
	found, err := repo.FindByOrg(ctx, orgID, billing.SummaryFilter{Month: &month, Status: &status})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, approved.ID, found[0].ID)

	all, err := repo.FindByOrg(ctx, orgID, billing.SummaryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
