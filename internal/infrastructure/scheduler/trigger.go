package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bizportal/backend/internal/domain/identity"
)

// TenantLister lists the tenants to warm
type TenantLister interface {
	FindAll(ctx context.Context) ([]*identity.Tenant, error)
}

// TriggerConfig holds configuration for the interval trigger
type TriggerConfig struct {
	// Interval between warm-up rounds
	Interval time.Duration
	// RunOnStart submits a round immediately instead of after the first interval
	RunOnStart bool
	// Dashboards warmed per tenant
	Dashboards []string
	// MaxRetries for each submitted job
	MaxRetries int
}

// IntervalTrigger submits one job per active tenant every Interval
type IntervalTrigger struct {
	config    TriggerConfig
	scheduler *Scheduler
	tenants   TenantLister
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewIntervalTrigger creates a new trigger
func NewIntervalTrigger(config TriggerConfig, scheduler *Scheduler, tenants TenantLister, logger *zap.Logger) *IntervalTrigger {
	return &IntervalTrigger{
		config:    config,
		scheduler: scheduler,
		tenants:   tenants,
		logger:    logger,
	}
}

// Start starts the trigger loop
func (t *IntervalTrigger) Start(ctx context.Context) error {
	if t.config.Interval <= 0 {
		return ErrInvalidConfig
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isRunning {
		return nil
	}
	t.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Dashboard warm-up trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Strings("dashboards", t.config.Dashboards),
	)
	return nil
}

// Stop stops the trigger loop
func (t *IntervalTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.cancel()
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *IntervalTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		t.TriggerAll(ctx)
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.TriggerAll(ctx)
		}
	}
}

// TriggerAll submits a job for every active tenant and returns how many
// were queued
func (t *IntervalTrigger) TriggerAll(ctx context.Context) int {
	tenants, err := t.tenants.FindAll(ctx)
	if err != nil {
		t.logger.Error("Failed to list tenants for dashboard warm-up", zap.Error(err))
		return 0
	}

	queued := 0
	for _, tenant := range tenants {
		if !tenant.IsActive() {
			continue
		}
		if err := t.TriggerTenant(tenant.ID); err != nil {
			t.logger.Warn("Failed to schedule dashboard warm-up",
				zap.String("tenant_id", tenant.ID.String()),
				zap.Error(err),
			)
			continue
		}
		queued++
	}

	t.logger.Debug("Dashboard warm-up round scheduled", zap.Int("tenants", queued))
	return queued
}

// TriggerTenant submits a job for one tenant
func (t *IntervalTrigger) TriggerTenant(tenantID uuid.UUID) error {
	return t.scheduler.Submit(NewJob(tenantID, t.config.Dashboards, t.config.MaxRetries))
}
