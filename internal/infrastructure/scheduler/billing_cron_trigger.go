package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	appbilling "github.com/wastebill/backend/internal/application/billing"
	"github.com/wastebill/backend/internal/domain/billing"
	"github.com/wastebill/backend/internal/domain/partner"
)

// ErrInvalidConfig is returned when scheduler configuration is invalid
var ErrInvalidConfig = errors.New("invalid scheduler configuration")

// cronTickerInterval is the interval at which the trigger checks the schedule
const cronTickerInterval = time.Minute

// SummaryGenerator runs summary generation for one organization and month
type SummaryGenerator interface {
	GenerateSummaries(ctx context.Context, req appbilling.GenerateSummariesRequest) (*appbilling.GenerateSummariesResponse, error)
}

// BillingCronTriggerConfig holds configuration for the monthly billing trigger
type BillingCronTriggerConfig struct {
	// Enabled indicates if the trigger is enabled
	Enabled bool
	// MonthlyCronSchedule is a "minute hour day-of-month * *" expression
	MonthlyCronSchedule string
	// JobTimeout is the maximum time one organization's run can take
	JobTimeout time.Duration
}

// DefaultBillingCronTriggerConfig returns the default configuration:
// 03:00 on the 1st of every month
func DefaultBillingCronTriggerConfig() BillingCronTriggerConfig {
	return BillingCronTriggerConfig{
		Enabled:             true,
		MonthlyCronSchedule: "0 3 1 * *",
		JobTimeout:          30 * time.Minute,
	}
}

// ParseMonthlyCronSchedule extracts minute, hour, and day-of-month from a
// cron expression. Only fixed values are supported in the first three fields.
func ParseMonthlyCronSchedule(cronExpr string) (minute, hour, day int, err error) {
	minute, hour, day = 0, 3, 1

	if cronExpr == "" {
		return minute, hour, day, nil
	}

	parts := strings.Fields(cronExpr)
	if len(parts) < 3 {
		return minute, hour, day, nil
	}

	if parts[0] != "*" {
		if v, perr := parseCronField(parts[0]); perr == nil {
			minute = v
		}
	}
	if parts[1] != "*" {
		if v, perr := parseCronField(parts[1]); perr == nil {
			hour = v
		}
	}
	if parts[2] != "*" {
		if v, perr := parseCronField(parts[2]); perr == nil {
			day = v
		}
	}

	if minute < 0 || minute > 59 {
		return 0, 3, 1, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 0, 3, 1, fmt.Errorf("hour must be 0-23, got %d", hour)
	}
	if day < 1 || day > 28 {
		// Days past 28 do not exist in every month
		return 0, 3, 1, fmt.Errorf("day-of-month must be 1-28, got %d", day)
	}

	return minute, hour, day, nil
}

func parseCronField(s string) (int, error) {
	if s == "" || s == "*" {
		return 0, ErrInvalidConfig
	}
	val := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, ErrInvalidConfig
		}
		val = val*10 + int(c-'0')
	}
	return val, nil
}

// BillingCronTrigger runs the monthly summary batch: on its schedule it
// generates billing summaries for the month that just closed, for every
// active organization. One organization's failure never stops the others.
type BillingCronTrigger struct {
	config    BillingCronTriggerConfig
	generator SummaryGenerator
	orgRepo   partner.OrganizationRepository
	logger    *zap.Logger

	minute int
	hour   int
	day    int

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Month of the last completed batch, guards against double firing within
	// the same scheduling window
	lastRunMu    sync.Mutex
	lastRunMonth time.Time

	now func() time.Time
}

// NewBillingCronTrigger creates a new monthly billing trigger
func NewBillingCronTrigger(
	config BillingCronTriggerConfig,
	generator SummaryGenerator,
	orgRepo partner.OrganizationRepository,
	logger *zap.Logger,
) (*BillingCronTrigger, error) {
	minute, hour, day, err := ParseMonthlyCronSchedule(config.MonthlyCronSchedule)
	if err != nil {
		return nil, err
	}

	return &BillingCronTrigger{
		config:    config,
		generator: generator,
		orgRepo:   orgRepo,
		logger:    logger,
		minute:    minute,
		hour:      hour,
		day:       day,
		now:       time.Now,
	}, nil
}

// Start starts the trigger loop. A disabled trigger starts nothing.
func (c *BillingCronTrigger) Start(ctx context.Context) error {
	if !c.config.Enabled {
		c.logger.Info("Billing cron trigger disabled")
		return nil
	}

	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Billing cron trigger started",
		zap.String("schedule", c.config.MonthlyCronSchedule),
		zap.Duration("job_timeout", c.config.JobTimeout),
	)

	return nil
}

// Stop stops the trigger and waits for an in-flight batch to finish
func (c *BillingCronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Billing cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *BillingCronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.shouldFire(c.now()) {
				c.RunBatch(ctx)
			}
		}
	}
}

// shouldFire reports whether the schedule matches now and the batch has not
// already run this month
func (c *BillingCronTrigger) shouldFire(now time.Time) bool {
	if !c.config.Enabled {
		return false
	}
	if now.Day() != c.day || now.Hour() != c.hour || now.Minute() != c.minute {
		return false
	}

	c.lastRunMu.Lock()
	defer c.lastRunMu.Unlock()

	thisMonth := billing.NormalizeMonth(now)
	if c.lastRunMonth.Equal(thisMonth) {
		return false
	}
	c.lastRunMonth = thisMonth
	return true
}

// RunBatch generates summaries for the previous month across all active
// organizations. It is exported so operators can trigger a run manually.
func (c *BillingCronTrigger) RunBatch(ctx context.Context) {
	targetMonth := billing.PreviousMonth(billing.NormalizeMonth(c.now()))
	monthStr := billing.FormatMonth(targetMonth)

	orgs, err := c.orgRepo.FindAllActive(ctx)
	if err != nil {
		c.logger.Error("Failed to list active organizations for billing batch",
			zap.String("billing_month", monthStr),
			zap.Error(err))
		return
	}

	c.logger.Info("Billing batch started",
		zap.String("billing_month", monthStr),
		zap.Int("organizations", len(orgs)))

	var succeeded, failed int
	for i := range orgs {
		org := &orgs[i]
		if ctx.Err() != nil {
			c.logger.Warn("Billing batch interrupted",
				zap.String("billing_month", monthStr),
				zap.Int("succeeded", succeeded),
				zap.Int("failed", failed))
			return
		}

		if err := c.runForOrg(ctx, org, monthStr); err != nil {
			failed++
			c.logger.Error("Billing batch failed for organization",
				zap.String("org_id", org.ID.String()),
				zap.String("org_code", org.Code),
				zap.String("billing_month", monthStr),
				zap.Error(err))
			continue
		}
		succeeded++
	}

	c.logger.Info("Billing batch finished",
		zap.String("billing_month", monthStr),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed))
}

func (c *BillingCronTrigger) runForOrg(ctx context.Context, org *partner.Organization, month string) error {
	runCtx := ctx
	if c.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.config.JobTimeout)
		defer cancel()
	}

	resp, err := c.generator.GenerateSummaries(runCtx, appbilling.GenerateSummariesRequest{
		OrgID:        org.ID,
		BillingMonth: month,
	})
	if err != nil {
		return err
	}

	c.logger.Info("Summaries generated for organization",
		zap.String("org_id", org.ID.String()),
		zap.String("org_code", org.Code),
		zap.String("billing_month", month),
		zap.Int("generated", len(resp.Generated)),
		zap.Int("skipped", len(resp.Skipped)),
		zap.Int("errors", len(resp.Errors)))
	return nil
}
