package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedSummary(t *testing.T, orgID, collectorID uuid.UUID, m time.Time, subtotal int64) *BillingSummary {
	t.Helper()
	s := summaryWithTotals(collectorID, m, 0, subtotal, 0)
	s.OrgID = orgID
	return s
}

func TestBuildInvoiceNumber(t *testing.T) {
	assert.Equal(t, "TI-202605-ORG100", BuildInvoiceNumber(month(2026, time.May), "ORG100"))
}

func TestTenantInvoice_ComposeAndValidate(t *testing.T) {
	orgID := uuid.New()
	m := month(2026, time.May)
	inv, err := NewTenantInvoice(orgID, "ORG100", m)
	require.NoError(t, err)

	collectorA := uuid.New()
	collectorB := uuid.New()

	sumA := approvedSummary(t, orgID, collectorA, m, 1000000)
	sumB := approvedSummary(t, orgID, collectorB, m, 200000)

	require.NoError(t, inv.AddCollectorBilling(sumA, "Collector A"))

	commission := CommissionResult{
		CommissionAmount: decimal.NewFromInt(50000),
		TaxAmount:        decimal.NewFromInt(5000),
		TotalAmount:      decimal.NewFromInt(55000),
	}
	require.NoError(t, inv.AddCommission(collectorA, "Collector A", sumA.SubtotalAmount, commission, taxRate10))

	require.NoError(t, inv.AddCollectorBilling(sumB, "Collector B"))

	fee := CommissionResult{
		CommissionAmount: decimal.NewFromInt(30000),
		TaxAmount:        decimal.NewFromInt(3000),
		TotalAmount:      decimal.NewFromInt(33000),
	}
	require.NoError(t, inv.AddManagementFee(fee, taxRate10))

	inv.ComputeTotals()
	require.NoError(t, inv.Validate())

	// Display order starts at 1 and increases strictly.
	for i, item := range inv.Items {
		assert.Equal(t, i+1, item.DisplayOrder)
	}
	assert.Equal(t, InvoiceItemTypeCollectorBilling, inv.Items[0].ItemType)
	assert.Equal(t, InvoiceItemTypeCommission, inv.Items[1].ItemType)
	assert.Equal(t, InvoiceItemTypeCollectorBilling, inv.Items[2].ItemType)
	assert.Equal(t, InvoiceItemTypeManagementFee, inv.Items[3].ItemType)

	assert.Equal(t, "1200000", inv.CollectorsSubtotal.String())
	assert.Equal(t, "120000", inv.CollectorsTax.String())
	assert.Equal(t, "1320000", inv.CollectorsTotal.String())

	assert.Equal(t, "80000", inv.CommissionSubtotal.String())
	assert.Equal(t, "8000", inv.CommissionTax.String())
	assert.Equal(t, "88000", inv.CommissionTotal.String())

	assert.Equal(t, "1280000", inv.GrandSubtotal.String())
	assert.Equal(t, "128000", inv.GrandTax.String())
	assert.Equal(t, "1408000", inv.GrandTotal.String())

	// grand_subtotal + grand_tax == grand_total
	assert.True(t, inv.GrandSubtotal.Add(inv.GrandTax).Equal(inv.GrandTotal))
	// grand_subtotal == collectors_subtotal + commission_subtotal
	assert.True(t, inv.CollectorsSubtotal.Add(inv.CommissionSubtotal).Equal(inv.GrandSubtotal))
}

func TestTenantInvoice_RejectsUnapprovedSummary(t *testing.T) {
	orgID := uuid.New()
	m := month(2026, time.May)
	inv, err := NewTenantInvoice(orgID, "ORG100", m)
	require.NoError(t, err)

	s := approvedSummary(t, orgID, uuid.New(), m, 100000)
	s.Status = SummaryStatusDraft

	assert.Error(t, inv.AddCollectorBilling(s, "Collector"))
	assert.Empty(t, inv.Items)
}

func TestTenantInvoice_SingleManagementFee(t *testing.T) {
	inv, err := NewTenantInvoice(uuid.New(), "ORG100", month(2026, time.May))
	require.NoError(t, err)

	fee := CommissionResult{
		CommissionAmount: decimal.NewFromInt(30000),
		TaxAmount:        decimal.NewFromInt(3000),
		TotalAmount:      decimal.NewFromInt(33000),
	}
	require.NoError(t, inv.AddManagementFee(fee, taxRate10))
	assert.Error(t, inv.AddManagementFee(fee, taxRate10))
	assert.Len(t, inv.Items, 1)
}

func TestTenantInvoice_ZeroCommissionEmitsNoLine(t *testing.T) {
	inv, err := NewTenantInvoice(uuid.New(), "ORG100", month(2026, time.May))
	require.NoError(t, err)

	assert.Error(t, inv.AddCommission(uuid.New(), "Collector", decimal.Zero, CommissionResult{}, taxRate10))
	assert.Error(t, inv.AddManagementFee(CommissionResult{}, taxRate10))
	assert.Empty(t, inv.Items)
}

func TestTenantInvoice_ValidateCatchesDrift(t *testing.T) {
	orgID := uuid.New()
	m := month(2026, time.May)
	inv, err := NewTenantInvoice(orgID, "ORG100", m)
	require.NoError(t, err)

	require.NoError(t, inv.AddCollectorBilling(approvedSummary(t, orgID, uuid.New(), m, 100000), "Collector"))
	inv.ComputeTotals()
	require.NoError(t, inv.Validate())

	inv.GrandTotal = inv.GrandTotal.Add(decimal.NewFromInt(1))
	assert.Error(t, inv.Validate())
}

func TestTenantInvoice_ValidateEmpty(t *testing.T) {
	inv, err := NewTenantInvoice(uuid.New(), "ORG100", month(2026, time.May))
	require.NoError(t, err)
	assert.Error(t, inv.Validate())
}

func TestTenantInvoice_StatusTransitions(t *testing.T) {
	inv, err := NewTenantInvoice(uuid.New(), "ORG100", month(2026, time.May))
	require.NoError(t, err)

	require.NoError(t, inv.Submit())
	assert.Error(t, inv.Submit())
	require.NoError(t, inv.Finalize())
	assert.Error(t, inv.Finalize())
}
