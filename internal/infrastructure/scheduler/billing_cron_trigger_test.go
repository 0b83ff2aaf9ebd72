package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appbilling "github.com/wastebill/backend/internal/application/billing"
	"github.com/wastebill/backend/internal/domain/partner"
	"github.com/wastebill/backend/internal/domain/shared"
)

type stubGenerator struct {
	mu       sync.Mutex
	requests []appbilling.GenerateSummariesRequest
	failOrg  uuid.UUID
}

func (g *stubGenerator) GenerateSummaries(ctx context.Context, req appbilling.GenerateSummariesRequest) (*appbilling.GenerateSummariesResponse, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	if req.OrgID == g.failOrg {
		return nil, errors.New("database unavailable")
	}
	return &appbilling.GenerateSummariesResponse{OrgID: req.OrgID, BillingMonth: req.BillingMonth}, nil
}

type stubOrgRepo struct {
	orgs []partner.Organization
	err  error
}

func (r *stubOrgRepo) Save(ctx context.Context, org *partner.Organization) error { return nil }
func (r *stubOrgRepo) FindByID(ctx context.Context, id uuid.UUID) (*partner.Organization, error) {
	return nil, shared.ErrNotFound
}
func (r *stubOrgRepo) FindByCode(ctx context.Context, code string) (*partner.Organization, error) {
	return nil, shared.ErrNotFound
}
func (r *stubOrgRepo) FindAllActive(ctx context.Context) ([]partner.Organization, error) {
	return r.orgs, r.err
}

func newTestOrg(t *testing.T, code string) partner.Organization {
	t.Helper()
	org, err := partner.NewOrganization(code, "Org "+code)
	require.NoError(t, err)
	return *org
}

func TestParseMonthlyCronSchedule(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		minute  int
		hour    int
		day     int
		wantErr bool
	}{
		{name: "default on empty", expr: "", minute: 0, hour: 3, day: 1},
		{name: "standard monthly", expr: "0 3 1 * *", minute: 0, hour: 3, day: 1},
		{name: "custom time", expr: "30 5 2 * *", minute: 30, hour: 5, day: 2},
		{name: "invalid minute", expr: "75 3 1 * *", wantErr: true},
		{name: "invalid hour", expr: "0 25 1 * *", wantErr: true},
		{name: "day past 28", expr: "0 3 31 * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minute, hour, day, err := ParseMonthlyCronSchedule(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.minute, minute)
			assert.Equal(t, tt.hour, hour)
			assert.Equal(t, tt.day, day)
		})
	}
}

func TestBillingCronTrigger_RunBatchTargetsPreviousMonth(t *testing.T) {
	gen := &stubGenerator{}
	orgs := &stubOrgRepo{orgs: []partner.Organization{newTestOrg(t, "ORG100")}}

	trigger, err := NewBillingCronTrigger(DefaultBillingCronTriggerConfig(), gen, orgs, zap.NewNop())
	require.NoError(t, err)
	trigger.now = func() time.Time {
		return time.Date(2026, time.June, 1, 3, 0, 0, 0, time.UTC)
	}

	trigger.RunBatch(context.Background())

	require.Len(t, gen.requests, 1)
	assert.Equal(t, "2026-05", gen.requests[0].BillingMonth)
	assert.Equal(t, orgs.orgs[0].ID, gen.requests[0].OrgID)
}

func TestBillingCronTrigger_OrgFailureDoesNotStopBatch(t *testing.T) {
	orgA := newTestOrg(t, "ORG100")
	orgB := newTestOrg(t, "ORG200")
	orgC := newTestOrg(t, "ORG300")

	gen := &stubGenerator{failOrg: orgB.ID}
	orgs := &stubOrgRepo{orgs: []partner.Organization{orgA, orgB, orgC}}

	trigger, err := NewBillingCronTrigger(DefaultBillingCronTriggerConfig(), gen, orgs, zap.NewNop())
	require.NoError(t, err)

	trigger.RunBatch(context.Background())

	// All three organizations were attempted despite the middle failure
	assert.Len(t, gen.requests, 3)
}

func TestBillingCronTrigger_ShouldFireOncePerMonth(t *testing.T) {
	gen := &stubGenerator{}
	trigger, err := NewBillingCronTrigger(DefaultBillingCronTriggerConfig(), gen, &stubOrgRepo{}, zap.NewNop())
	require.NoError(t, err)

	fireTime := time.Date(2026, time.June, 1, 3, 0, 0, 0, time.UTC)
	assert.True(t, trigger.shouldFire(fireTime))
	// Same window again: already ran this month
	assert.False(t, trigger.shouldFire(fireTime))

	// Wrong time of day never fires
	assert.False(t, trigger.shouldFire(time.Date(2026, time.July, 1, 4, 0, 0, 0, time.UTC)))

	// Next month's window fires again
	assert.True(t, trigger.shouldFire(time.Date(2026, time.July, 1, 3, 0, 0, 0, time.UTC)))
}

func TestBillingCronTrigger_DisabledNeverFires(t *testing.T) {
	gen := &stubGenerator{}
	cfg := DefaultBillingCronTriggerConfig()
	cfg.Enabled = false
	trigger, err := NewBillingCronTrigger(cfg, gen, &stubOrgRepo{}, zap.NewNop())
	require.NoError(t, err)

	// The scheduled instant must not fire when the trigger is disabled
	assert.False(t, trigger.shouldFire(time.Date(2026, time.August, 1, 3, 0, 30, 0, time.UTC)))

	// Start is a no-op and Stop after it stays clean
	require.NoError(t, trigger.Start(context.Background()))
	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(stopCtx))
}

func TestBillingCronTrigger_StartStop(t *testing.T) {
	gen := &stubGenerator{}
	trigger, err := NewBillingCronTrigger(DefaultBillingCronTriggerConfig(), gen, &stubOrgRepo{}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))
	// Second start is a no-op
	require.NoError(t, trigger.Start(context.Background()))

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(stopCtx))
	// Second stop is a no-op
	require.NoError(t, trigger.Stop(stopCtx))
}
