package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wastebill/backend/internal/domain/partner"
	"github.com/wastebill/backend/internal/domain/shared"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockOrganizationRepository creates a GormOrganizationRepository with a mocked SQL connection
func newMockOrganizationRepository(t *testing.T) (*GormOrganizationRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormOrganizationRepository(gormDB), mock, mockDB
}

func TestGormOrganizationRepository_FindByID_Mock(t *testing.T) {
	t.Run("finds existing organization", func(t *testing.T) {
		repo, mock, mockDB := newMockOrganizationRepository(t)
		defer mockDB.Close()

		orgID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "code", "name", "is_active"}).
			AddRow(orgID, now, now, 1, "ORG100", "Emitter Holdings", true)

		mock.ExpectQuery(`SELECT \* FROM "organizations" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orgID, 1).
			WillReturnRows(rows)

		org, err := repo.FindByID(context.Background(), orgID)
		require.NoError(t, err)
		assert.Equal(t, orgID, org.ID)
		assert.Equal(t, "ORG100", org.Code)
		assert.True(t, org.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to domain not found", func(t *testing.T) {
		repo, mock, mockDB := newMockOrganizationRepository(t)
		defer mockDB.Close()

		orgID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "organizations" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orgID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), orgID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrganizationRepository_FindAllActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrganizationRepository(db)
	ctx := context.Background()

	for _, code := range []string{"ORG300", "ORG100", "ORG200"} {
		org, err := partner.NewOrganization(code, "Org "+code)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, org))
	}

	inactive, err := partner.NewOrganization("ORG400", "Inactive Org")
	require.NoError(t, err)
	inactive.Deactivate()
	require.NoError(t, repo.Save(ctx, inactive))

	found, err := repo.FindAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, "ORG100", found[0].Code)
	assert.Equal(t, "ORG300", found[2].Code)
}

func TestGormOrganizationRepository_FindByCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrganizationRepository(db)
	ctx := context.Background()

	org, err := partner.NewOrganization("ORG100", "Emitter Holdings")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, org))

	found, err := repo.FindByCode(ctx, "ORG100")
	require.NoError(t, err)
	assert.Equal(t, org.ID, found.ID)

	_, err = repo.FindByCode(ctx, "MISSING")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
