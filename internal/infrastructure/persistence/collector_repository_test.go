package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wastebill/backend/internal/domain/partner"
	"github.com/wastebill/backend/internal/domain/shared"
)

func TestGormCollectorRepository_SaveAndFindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCollectorRepository(db)
	ctx := context.Background()

	collector, err := partner.NewCollector(uuid.New(), "COL-001", "Tokyo Waste Services")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, collector))

	found, err := repo.FindByID(ctx, collector.ID)
	require.NoError(t, err)
	assert.Equal(t, "COL-001", found.Code)
	assert.Equal(t, "Tokyo Waste Services", found.Name)
	assert.True(t, found.IsBillable())
}

func TestGormCollectorRepository_FindByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCollectorRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCollectorRepository_FindActiveByOrg(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCollectorRepository(db)
	ctx := context.Background()

	orgID := uuid.New()

	// Saved out of code order on purpose
	for _, code := range []string{"COL-003", "COL-001", "COL-002"} {
		c, err := partner.NewCollector(orgID, code, "Collector "+code)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, c))
	}

	inactive, err := partner.NewCollector(orgID, "COL-004", "Inactive")
	require.NoError(t, err)
	inactive.Deactivate()
	require.NoError(t, repo.Save(ctx, inactive))

	deleted, err := partner.NewCollector(orgID, "COL-005", "Deleted")
	require.NoError(t, err)
	deleted.MarkDeleted()
	require.NoError(t, repo.Save(ctx, deleted))

	otherOrg, err := partner.NewCollector(uuid.New(), "COL-001", "Other Org")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, otherOrg))

	found, err := repo.FindActiveByOrg(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, "COL-001", found[0].Code)
	assert.Equal(t, "COL-002", found[1].Code)
	assert.Equal(t, "COL-003", found[2].Code)
}

func TestGormCollectorRepository_DuplicateCodeWithinOrgRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCollectorRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	first, err := partner.NewCollector(orgID, "COL-001", "First")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	duplicate, err := partner.NewCollector(orgID, "COL-001", "Duplicate")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, duplicate), shared.ErrAlreadyExists)
}
