package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wastebill/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with the billing schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.OrganizationModel{},
		&models.CollectorModel{},
		&models.BillingItemModel{},
		&models.BillingSummaryModel{},
		&models.CommissionRuleModel{},
		&models.TenantInvoiceModel{},
		&models.TenantInvoiceItemModel{},
	)
	require.NoError(t, err)

	return db
}

// may returns the first day of May 2026 in UTC, the month used across the
// persistence tests
func may2026() time.Time {
	return time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
}
