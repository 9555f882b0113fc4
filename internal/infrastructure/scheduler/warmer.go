package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bizportal/backend/internal/domain/dashboard"
)

// DashboardRenderer re-renders a tenant dashboard and rewrites its cache entry
type DashboardRenderer interface {
	Refresh(ctx context.Context, tenantID uuid.UUID, name string) (*dashboard.Dashboard, error)
}

// DashboardWarmer executes jobs by rendering each listed dashboard
type DashboardWarmer struct {
	renderer DashboardRenderer
	logger   *zap.Logger
}

// NewDashboardWarmer creates a warmer
func NewDashboardWarmer(renderer DashboardRenderer, logger *zap.Logger) *DashboardWarmer {
	return &DashboardWarmer{renderer: renderer, logger: logger}
}

// Execute refreshes every dashboard of the job. A failing dashboard does not
// stop the rest; all failures are returned together. By default the overview
// goes last so it is composed from the freshly rendered parts.
func (w *DashboardWarmer) Execute(ctx context.Context, job *Job) error {
	names := job.Dashboards
	if len(names) == 0 {
		names = append(append([]string{}, dashboard.Names...), dashboard.NameOverview)
	}

	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := w.renderer.Refresh(ctx, job.TenantID, name); err != nil {
			errs = append(errs, fmt.Errorf("warm %s: %w", name, err))
		}
	}

	if len(errs) == 0 {
		w.logger.Debug("Dashboards warmed",
			zap.String("tenant_id", job.TenantID.String()),
			zap.Int("dashboards", len(names)))
	}
	return errors.Join(errs...)
}
