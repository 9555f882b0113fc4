// Package dashboard assembles tenant dashboards from stored data, caches the
// rendered result and exports it to object storage.
package dashboard

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bizportal/backend/internal/domain/approval"
	"github.com/bizportal/backend/internal/domain/dashboard"
	"github.com/bizportal/backend/internal/domain/finance"
	"github.com/bizportal/backend/internal/domain/profile"
	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/bizportal/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCacheTTL      = 5 * time.Minute
	defaultHistoryMonths = 12
	defaultURLExpiry     = 15 * time.Minute
	buyerPageSize        = 100
)

// Cache stores rendered dashboards
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// ExportStorage receives exported dashboards
type ExportStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
}

// Export formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ExportResult describes a stored export
type ExportResult struct {
	Key         string `json:"key"`
	URL         string `json:"url,omitempty"`
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// Option configures a DashboardService
type Option func(*DashboardService)

// WithCache enables result caching with the given TTL. A non-positive ttl
// keeps the default.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *DashboardService) {
		s.cache = c
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithExportStorage sets where exports are written
func WithExportStorage(st ExportStorage) Option {
	return func(s *DashboardService) {
		s.exports = st
	}
}

// WithFormatter sets the money formatter used by tables and KPIs
func WithFormatter(f *dashboard.MoneyFormatter) Option {
	return func(s *DashboardService) {
		if f != nil {
			s.formatter = f
		}
	}
}

// WithHistoryMonths sets how many months trend dashboards cover
func WithHistoryMonths(n int) Option {
	return func(s *DashboardService) {
		if n > 0 {
			s.historyMonths = n
		}
	}
}

// WithForecastHorizon sets how many months the forecast projects
func WithForecastHorizon(n int) Option {
	return func(s *DashboardService) {
		if n > 0 {
			s.horizon = n
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *DashboardService) {
		if now != nil {
			s.now = now
		}
	}
}

// DashboardService builds dashboards for a tenant
type DashboardService struct {
	expenses  finance.ExpenseRepository
	profiles  profile.Repository
	approvals approval.Repository
	cache     Cache
	exports   ExportStorage
	formatter *dashboard.MoneyFormatter
	logger    *zap.Logger

	ttl           time.Duration
	historyMonths int
	horizon       int
	now           func() time.Time
}

// NewDashboardService creates a dashboard service. Without WithCache every
// call reads the repositories.
func NewDashboardService(
	expenses finance.ExpenseRepository,
	profiles profile.Repository,
	approvals approval.Repository,
	logger *zap.Logger,
	opts ...Option,
) *DashboardService {
	s := &DashboardService{
		expenses:      expenses,
		profiles:      profiles,
		approvals:     approvals,
		formatter:     dashboard.NewMoneyFormatter("en-US", ""),
		logger:        logger,
		ttl:           defaultCacheTTL,
		historyMonths: defaultHistoryMonths,
		horizon:       dashboard.DefaultForecastHorizon,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the named dashboard
func (s *DashboardService) Get(ctx context.Context, tenantID uuid.UUID, name string) (*dashboard.Dashboard, error) {
	switch name {
	case dashboard.NameOverview:
		return s.Overview(ctx, tenantID)
	case dashboard.NameExpenses:
		return s.Expenses(ctx, tenantID)
	case dashboard.NameForecast:
		return s.Forecast(ctx, tenantID)
	case dashboard.NameChurn:
		return s.Churn(ctx, tenantID)
	case dashboard.NameCustomers:
		return s.Customers(ctx, tenantID)
	case dashboard.NameApprovals:
		return s.Approvals(ctx, tenantID)
	}
	return nil, shared.NewDomainError("UNKNOWN_DASHBOARD", fmt.Sprintf("Unknown dashboard %q", name))
}

// Refresh renders the named dashboard without reading the cache and
// rewrites its cache entry with a full TTL. The overview is composed from
// the cached parts, so refresh those first.
func (s *DashboardService) Refresh(ctx context.Context, tenantID uuid.UUID, name string) (*dashboard.Dashboard, error) {
	build, ok := s.builderFor(name)
	if !ok {
		return nil, shared.NewDomainError("UNKNOWN_DASHBOARD", fmt.Sprintf("Unknown dashboard %q", name))
	}
	return s.cached(ctx, tenantID, name, build, true)
}

func (s *DashboardService) builderFor(name string) (builder, bool) {
	switch name {
	case dashboard.NameOverview:
		return s.buildOverview, true
	case dashboard.NameExpenses:
		return s.buildExpenses, true
	case dashboard.NameForecast:
		return s.buildForecast, true
	case dashboard.NameChurn:
		return s.buildChurn, true
	case dashboard.NameCustomers:
		return s.buildCustomers, true
	case dashboard.NameApprovals:
		return s.buildApprovals, true
	}
	return nil, false
}

// Expenses returns the monthly spend trend, the category breakdown and spend KPIs
func (s *DashboardService) Expenses(ctx context.Context, tenantID uuid.UUID) (*dashboard.Dashboard, error) {
	return s.cached(ctx, tenantID, dashboard.NameExpenses, s.buildExpenses, false)
}

// Forecast returns the spend forecast over the configured horizon
func (s *DashboardService) Forecast(ctx context.Context, tenantID uuid.UUID) (*dashboard.Dashboard, error) {
	return s.cached(ctx, tenantID, dashboard.NameForecast, s.buildForecast, false)
}

// Churn returns the monthly buyer churn chart and table
func (s *DashboardService) Churn(ctx context.Context, tenantID uuid.UUID) (*dashboard.Dashboard, error) {
	return s.cached(ctx, tenantID, dashboard.NameChurn, s.buildChurn, false)
}

// Customers returns the segment split and the top buyers by lifetime value
func (s *DashboardService) Customers(ctx context.Context, tenantID uuid.UUID) (*dashboard.Dashboard, error) {
	return s.cached(ctx, tenantID, dashboard.NameCustomers, s.buildCustomers, false)
}

// Approvals returns the approval funnel and its KPIs
func (s *DashboardService) Approvals(ctx context.Context, tenantID uuid.UUID) (*dashboard.Dashboard, error) {
	return s.cached(ctx, tenantID, dashboard.NameApprovals, s.buildApprovals, false)
}

// Overview assembles every dashboard concurrently and merges them in the
// order of dashboard.Names
func (s *DashboardService) Overview(ctx context.Context, tenantID uuid.UUID) (*dashboard.Dashboard, error) {
	return s.cached(ctx, tenantID, dashboard.NameOverview, s.buildOverview, false)
}

// Invalidate drops every cached dashboard of the tenant
func (s *DashboardService) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, tenantPrefix(tenantID)); err != nil {
		s.logger.Warn("Failed to invalidate dashboard cache",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}
}

// Export renders the named dashboard as csv or json, stores it and returns
// the object key with a download URL
func (s *DashboardService) Export(ctx context.Context, tenantID uuid.UUID, name, format string) (*ExportResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "dashboard.export",
		telemetry.WithTenant(tenantID),
		telemetry.WithDashboard(name),
		telemetry.WithAttribute("bizportal.format", format))
	defer span.End()

	if s.exports == nil {
		return nil, shared.NewDomainError("EXPORT_UNAVAILABLE", "Export storage is not configured")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatJSON {
		return nil, shared.NewDomainError("INVALID_FORMAT", fmt.Sprintf("Unsupported export format %q", format))
	}

	d, err := s.Get(ctx, tenantID, name)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	data, contentType, err := encode(d, format)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	key := fmt.Sprintf("exports/%s/%s/%s.%s", tenantID, name, s.now().UTC().Format("20060102T150405Z"), format)
	if err := s.exports.Put(ctx, key, data, contentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("store export: %w", err)
	}

	result := &ExportResult{
		Key:         key,
		Format:      format,
		ContentType: contentType,
		Size:        len(data),
	}
	url, err := s.exports.DownloadURL(ctx, key, defaultURLExpiry)
	if err != nil {
		s.logger.Warn("Failed to create export download URL", zap.String("key", key), zap.Error(err))
	} else {
		result.URL = url
	}

	s.logger.Info("Dashboard exported",
		zap.String("tenant_id", tenantID.String()),
		zap.String("dashboard", name),
		zap.String("key", key),
		zap.Int("size", len(data)))
	return result, nil
}

type builder func(ctx context.Context, tenantID uuid.UUID) (*dashboard.Dashboard, error)

// cached serves the dashboard from the cache when present, otherwise builds
// and stores it. refresh skips the cache read.
func (s *DashboardService) cached(ctx context.Context, tenantID uuid.UUID, name string, build builder, refresh bool) (*dashboard.Dashboard, error) {
	ctx, span := telemetry.StartSpan(ctx, "dashboard."+name,
		telemetry.WithTenant(tenantID),
		telemetry.WithDashboard(name))
	defer span.End()

	key := cacheKey(tenantID, name)
	if s.cache != nil && !refresh {
		raw, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("Dashboard cache read failed", zap.String("key", key), zap.Error(err))
		case ok:
			var d dashboard.Dashboard
			if err := json.Unmarshal(raw, &d); err == nil {
				telemetry.SetAttributes(span, telemetry.AttrCacheHit, true)
				return &d, nil
			}
			s.logger.Warn("Discarding undecodable cached dashboard", zap.String("key", key))
		}
	}

	d, err := build(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	d.Name = name
	d.GeneratedAt = s.now().UTC()

	if s.cache != nil {
		raw, err := json.Marshal(d)
		if err == nil {
			err = s.cache.Set(ctx, key, raw, s.ttl)
		}
		if err != nil {
			s.logger.Warn("Dashboard cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return d, nil
}

// window returns [from, to) covering the last historyMonths months, the
// current month included
func (s *DashboardService) window() (time.Time, time.Time) {
	to := finance.MonthStart(s.now()).AddDate(0, 1, 0)
	return to.AddDate(0, -s.historyMonths, 0), to
}

func (s *DashboardService) monthlyExpenses(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]dashboard.MonthlyAmount, error) {
	totals, err := s.expenses.MonthlyTotals(ctx, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("monthly expense totals: %w", err)
	}
	out := make([]dashboard.MonthlyAmount, len(totals))
	for i, t := range totals {
		out[i] = dashboard.MonthlyAmount{Month: t.Month, Amount: t.Total}
	}
	return out, nil
}

func (s *DashboardService) buildExpenses(ctx context.Context, tenantID uuid.UUID) (*dashboard.Dashboard, error) {
	from, to := s.window()
	monthly, err := s.monthlyExpenses(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	totals, err := s.expenses.CategoryTotals(ctx, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("category expense totals: %w", err)
	}
	categories := make([]dashboard.CategoryAmount, len(totals))
	for i, t := range totals {
		categories[i] = dashboard.CategoryAmount{Name: t.Category.DisplayName(), Amount: t.Total}
	}

	return &dashboard.Dashboard{
		Charts: []dashboard.Chart{
			dashboard.ExpenseTrend(monthly, from, to),
			dashboard.CategoryBreakdown(categories),
		},
		Tables: []dashboard.Table{dashboard.CategoryTable(categories, s.formatter)},
		KPIs:   dashboard.ExpenseKPIs(dashboard.FillMonths(monthly, from, to), s.formatter),
	}, nil
}

func (s *DashboardService) buildForecast(ctx context.Context, tenantID uuid.UUID) (*dashboard.Dashboard, error) {
	from, to := s.window()
	monthly, err := s.monthlyExpenses(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	history := dashboard.FillMonths(monthly, from, to)
	return &dashboard.Dashboard{
		Charts: []dashboard.Chart{dashboard.Forecast(history, s.horizon)},
		Tables: []dashboard.Table{},
		KPIs:   []dashboard.KPI{},
	}, nil
}

func (s *DashboardService) buildChurn(ctx context.Context, tenantID uuid.UUID) (*dashboard.Dashboard, error) {
	buyers, err := s.allBuyers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	from, to := s.window()
	chart, table := dashboard.ChurnByMonth(buyers, from, to)
	return &dashboard.Dashboard{
		Charts: []dashboard.Chart{chart},
		Tables: []dashboard.Table{table},
		KPIs:   []dashboard.KPI{},
	}, nil
}

func (s *DashboardService) buildCustomers(ctx context.Context, tenantID uuid.UUID) (*dashboard.Dashboard, error) {
	buyers, err := s.allBuyers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	chart, table := dashboard.CustomerSegments(buyers, dashboard.DefaultTopCustomers, s.formatter)
	return &dashboard.Dashboard{
		Charts: []dashboard.Chart{chart},
		Tables: []dashboard.Table{table},
		KPIs: []dashboard.KPI{{
			Label:     "Buyers",
			Value:     float64(len(buyers)),
			Formatted: s.formatter.FormatCount(int64(len(buyers))),
		}},
	}, nil
}

func (s *DashboardService) buildApprovals(ctx context.Context, tenantID uuid.UUID) (*dashboard.Dashboard, error) {
	counts, err := s.approvals.StatusCounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("approval status counts: %w", err)
	}
	from, _ := s.window()
	decided, err := s.approvals.DecidedSince(ctx, tenantID, from)
	if err != nil {
		return nil, fmt.Errorf("decided approvals: %w", err)
	}
	chart, kpis := dashboard.ApprovalFunnel(counts, decided, s.formatter)
	return &dashboard.Dashboard{
		Charts: []dashboard.Chart{chart},
		Tables: []dashboard.Table{},
		KPIs:   kpis,
	}, nil
}

func (s *DashboardService) buildOverview(ctx context.Context, tenantID uuid.UUID) (*dashboard.Dashboard, error) {
	builders := []builder{s.Expenses, s.Forecast, s.Churn, s.Customers, s.Approvals}
	parts := make([]*dashboard.Dashboard, len(builders))

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range builders {
		g.Go(func() error {
			d, err := b(gctx, tenantID)
			if err != nil {
				return err
			}
			parts[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dashboard.Dashboard{
		Charts: []dashboard.Chart{},
		Tables: []dashboard.Table{},
		KPIs:   []dashboard.KPI{},
	}
	for _, p := range parts {
		out.Charts = append(out.Charts, p.Charts...)
		out.Tables = append(out.Tables, p.Tables...)
		out.KPIs = append(out.KPIs, p.KPIs...)
	}
	return out, nil
}

func (s *DashboardService) allBuyers(ctx context.Context, tenantID uuid.UUID) ([]*profile.BuyerProfile, error) {
	var all []*profile.BuyerProfile
	for page := 1; ; page++ {
		filter := profile.BuyerFilter{Filter: shared.Filter{
			Page:     page,
			PageSize: buyerPageSize,
			OrderBy:  "created_at",
			OrderDir: "asc",
		}}
		buyers, total, err := s.profiles.ListBuyers(ctx, tenantID, filter)
		if err != nil {
			return nil, fmt.Errorf("list buyers: %w", err)
		}
		all = append(all, buyers...)
		if len(buyers) < buyerPageSize || int64(len(all)) >= total {
			return all, nil
		}
	}
}

func encode(d *dashboard.Dashboard, format string) ([]byte, string, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("encode dashboard json: %w", err)
		}
		return data, "application/json", nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(d.Records()); err != nil {
		return nil, "", fmt.Errorf("encode dashboard csv: %w", err)
	}
	return buf.Bytes(), "text/csv", nil
}

func tenantPrefix(tenantID uuid.UUID) string {
	return "dashboard:" + tenantID.String() + ":"
}

func cacheKey(tenantID uuid.UUID, name string) string {
	return tenantPrefix(tenantID) + name
}
