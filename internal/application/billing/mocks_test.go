package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/wastebill/backend/internal/domain/billing"
	"github.com/wastebill/backend/internal/domain/partner"
)

// mockOrgRepo is a mock implementation of partner.OrganizationRepository
type mockOrgRepo struct {
	mock.Mock
}

func (m *mockOrgRepo) Save(ctx context.Context, org *partner.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *mockOrgRepo) FindByID(ctx context.Context, id uuid.UUID) (*partner.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Organization), args.Error(1)
}

func (m *mockOrgRepo) FindByCode(ctx context.Context, code string) (*partner.Organization, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Organization), args.Error(1)
}

func (m *mockOrgRepo) FindAllActive(ctx context.Context) ([]partner.Organization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Organization), args.Error(1)
}

// mockCollectorRepo is a mock implementation of partner.CollectorRepository
type mockCollectorRepo struct {
	mock.Mock
}

func (m *mockCollectorRepo) Save(ctx context.Context, collector *partner.Collector) error {
	args := m.Called(ctx, collector)
	return args.Error(0)
}

func (m *mockCollectorRepo) FindByID(ctx context.Context, id uuid.UUID) (*partner.Collector, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Collector), args.Error(1)
}

func (m *mockCollectorRepo) FindActiveByOrg(ctx context.Context, orgID uuid.UUID) ([]partner.Collector, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Collector), args.Error(1)
}

// mockItemRepo is a mock implementation of billing.BillingItemRepository
type mockItemRepo struct {
	mock.Mock
}

func (m *mockItemRepo) Save(ctx context.Context, item *billing.BillingItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BillingItem), args.Error(1)
}

func (m *mockItemRepo) FindAggregatable(ctx context.Context, orgID, collectorID uuid.UUID, month time.Time) ([]billing.BillingItem, error) {
	args := m.Called(ctx, orgID, collectorID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.BillingItem), args.Error(1)
}

// mockSummaryRepo is a mock implementation of billing.BillingSummaryRepository
type mockSummaryRepo struct {
	mock.Mock
}

func (m *mockSummaryRepo) Create(ctx context.Context, summary *billing.BillingSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *mockSummaryRepo) Update(ctx context.Context, summary *billing.BillingSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *mockSummaryRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BillingSummary), args.Error(1)
}

func (m *mockSummaryRepo) FindByKey(ctx context.Context, orgID, collectorID uuid.UUID, month time.Time) (*billing.BillingSummary, error) {
	args := m.Called(ctx, orgID, collectorID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BillingSummary), args.Error(1)
}

func (m *mockSummaryRepo) FindByOrg(ctx context.Context, orgID uuid.UUID, filter billing.SummaryFilter) ([]billing.BillingSummary, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.BillingSummary), args.Error(1)
}

func (m *mockSummaryRepo) FindApprovedByMonth(ctx context.Context, orgID uuid.UUID, month time.Time) ([]billing.BillingSummary, error) {
	args := m.Called(ctx, orgID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.BillingSummary), args.Error(1)
}

// mockRuleRepo is a mock implementation of billing.CommissionRuleRepository
type mockRuleRepo struct {
	mock.Mock
}

func (m *mockRuleRepo) Save(ctx context.Context, rule *billing.CommissionRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *mockRuleRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.CommissionRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CommissionRule), args.Error(1)
}

func (m *mockRuleRepo) FindActiveByOrg(ctx context.Context, orgID uuid.UUID) ([]billing.CommissionRule, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.CommissionRule), args.Error(1)
}

// mockInvoiceRepo is a mock implementation of billing.TenantInvoiceRepository
type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *billing.TenantInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *mockInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.TenantInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.TenantInvoice), args.Error(1)
}

func (m *mockInvoiceRepo) FindByKey(ctx context.Context, orgID uuid.UUID, month time.Time) (*billing.TenantInvoice, error) {
	args := m.Called(ctx, orgID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.TenantInvoice), args.Error(1)
}

func (m *mockInvoiceRepo) ExistsByKey(ctx context.Context, orgID uuid.UUID, month time.Time) (bool, error) {
	args := m.Called(ctx, orgID, month)
	return args.Bool(0), args.Error(1)
}

func (m *mockInvoiceRepo) FindByOrg(ctx context.Context, orgID uuid.UUID) ([]billing.TenantInvoice, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.TenantInvoice), args.Error(1)
}

// stubRunLock always grants the lock unless told otherwise
type stubRunLock struct {
	denied bool
}

func (l *stubRunLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return !l.denied, nil
}

func (l *stubRunLock) Release(ctx context.Context, key string) error { return nil }

func (l *stubRunLock) Close() error { return nil }
