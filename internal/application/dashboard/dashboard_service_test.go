package dashboard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bizportal/backend/internal/domain/approval"
	"github.com/bizportal/backend/internal/domain/dashboard"
	"github.com/bizportal/backend/internal/domain/finance"
	"github.com/bizportal/backend/internal/domain/identity"
	"github.com/bizportal/backend/internal/domain/profile"
	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/bizportal/backend/internal/domain/shared/valueobject"
	"github.com/bizportal/backend/internal/infrastructure/cache"
	"github.com/bizportal/backend/internal/infrastructure/persistence"
	"github.com/bizportal/backend/internal/infrastructure/storage"
	"github.com/bizportal/backend/tests/testutil"
)

var now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *DashboardService
	db        *persistence.Database
	tenant    *identity.Tenant
	user      *identity.User
	expenses  *persistence.GormExpenseRecordRepository
	profiles  *persistence.GormProfileRepository
	approvals *persistence.GormApprovalRepository
	store     *storage.LocalStorage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	f := &fixture{
		db:        db,
		expenses:  persistence.NewGormExpenseRecordRepository(db.DB),
		profiles:  persistence.NewGormProfileRepository(db.DB),
		approvals: persistence.NewGormApprovalRepository(db.DB),
	}
	f.tenant = testutil.CreateTenant(t, db, "acme")
	f.user = testutil.CreateUser(t, db, f.tenant.ID, "admin@acme.io", identity.RoleAdmin)

	mem := cache.NewMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	f.store = store

	f.svc = NewDashboardService(f.expenses, f.profiles, f.approvals, zap.NewNop(),
		WithCache(mem, time.Minute),
		WithExportStorage(store),
		WithFormatter(dashboard.NewMoneyFormatter("en-US", valueobject.DefaultCurrency)),
		WithHistoryMonths(3),
		WithClock(func() time.Time { return now }),
	)
	return f
}

func (f *fixture) addExpense(t *testing.T, category finance.ExpenseCategory, amount string, at time.Time) {
	t.Helper()
	rec, err := finance.NewExpenseRecord(f.tenant.ID, category,
		valueobject.NewMoney(decimal.RequireFromString(amount), valueobject.DefaultCurrency), "", at, f.user.ID)
	require.NoError(t, err)
	require.NoError(t, f.expenses.Create(context.Background(), rec))
}

func TestDashboardService_Expenses(t *testing.T) {
	f := newFixture(t)
	f.addExpense(t, finance.ExpenseCategoryTravel, "100", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	f.addExpense(t, finance.ExpenseCategorySoftware, "50", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	f.addExpense(t, finance.ExpenseCategorySoftware, "25", time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC))
	f.addExpense(t, finance.ExpenseCategoryOffice, "999", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	d, err := f.svc.Expenses(context.Background(), f.tenant.ID)
	require.NoError(t, err)

	assert.Equal(t, dashboard.NameExpenses, d.Name)
	assert.Equal(t, now, d.GeneratedAt)
	require.Len(t, d.Charts, 2)

	trend := d.Charts[0]
	want := dashboard.Chart{
		ID:     "expense-trend",
		Title:  "Monthly expenses",
		Kind:   dashboard.ChartArea,
		Labels: []string{"2024-03", "2024-04", "2024-05"},
		Series: []dashboard.Series{{Name: "Expenses", Data: []float64{100, 0, 75}}},
	}
	if diff := cmp.Diff(want, trend); diff != "" {
		t.Errorf("expense trend mismatch (-want +got):\n%s", diff)
	}

	require.NotEmpty(t, d.KPIs)
	assert.Equal(t, "Total spend", d.KPIs[0].Label)
	assert.Equal(t, 175.0, d.KPIs[0].Value)
	assert.Equal(t, "$175.00", d.KPIs[0].Formatted)
}

func TestDashboardService_CachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addExpense(t, finance.ExpenseCategoryTravel, "10", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	first, err := f.svc.Expenses(ctx, f.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, first.KPIs[0].Value)

	f.addExpense(t, finance.ExpenseCategoryTravel, "5", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))

	cached, err := f.svc.Expenses(ctx, f.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, cached.KPIs[0].Value)

	f.svc.Invalidate(ctx, f.tenant.ID)

	fresh, err := f.svc.Expenses(ctx, f.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, fresh.KPIs[0].Value)
}

func TestDashboardService_RefreshRewritesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	clock := now
	mem := cache.NewMemoryStore(cache.WithClock(func() time.Time { return clock }), cache.WithJanitorInterval(time.Hour))
	t.Cleanup(func() { _ = mem.Close() })
	svc := NewDashboardService(f.expenses, f.profiles, f.approvals, zap.NewNop(),
		WithCache(mem, time.Minute),
		WithHistoryMonths(3),
		WithClock(func() time.Time { return now }),
	)

	f.addExpense(t, finance.ExpenseCategoryTravel, "10", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	first, err := svc.Get(ctx, f.tenant.ID, dashboard.NameExpenses)
	require.NoError(t, err)
	assert.Equal(t, 10.0, first.KPIs[0].Value)

	f.addExpense(t, finance.ExpenseCategoryTravel, "5", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	stale, err := svc.Get(ctx, f.tenant.ID, dashboard.NameExpenses)
	require.NoError(t, err)
	assert.Equal(t, 10.0, stale.KPIs[0].Value)

	clock = clock.Add(50 * time.Second)
	refreshed, err := svc.Refresh(ctx, f.tenant.ID, dashboard.NameExpenses)
	require.NoError(t, err)
	assert.Equal(t, 15.0, refreshed.KPIs[0].Value)
	assert.Equal(t, dashboard.NameExpenses, refreshed.Name)

	// past the first entry's TTL but inside the refreshed one
	clock = clock.Add(30 * time.Second)
	f.addExpense(t, finance.ExpenseCategoryTravel, "1", time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC))
	served, err := svc.Get(ctx, f.tenant.ID, dashboard.NameExpenses)
	require.NoError(t, err)
	assert.Equal(t, 15.0, served.KPIs[0].Value)

	clock = clock.Add(time.Minute)
	expired, err := svc.Get(ctx, f.tenant.ID, dashboard.NameExpenses)
	require.NoError(t, err)
	assert.Equal(t, 16.0, expired.KPIs[0].Value)
}

func TestDashboardService_RefreshOverviewUsesRefreshedParts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addExpense(t, finance.ExpenseCategoryTravel, "10", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	_, err := f.svc.Overview(ctx, f.tenant.ID)
	require.NoError(t, err)
	f.addExpense(t, finance.ExpenseCategoryTravel, "5", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))

	for _, name := range dashboard.Names {
		_, err := f.svc.Refresh(ctx, f.tenant.ID, name)
		require.NoError(t, err)
	}
	overview, err := f.svc.Refresh(ctx, f.tenant.ID, dashboard.NameOverview)
	require.NoError(t, err)
	assert.Equal(t, 15.0, overview.KPIs[0].Value)

	cached, err := f.svc.Get(ctx, f.tenant.ID, dashboard.NameOverview)
	require.NoError(t, err)
	assert.Equal(t, 15.0, cached.KPIs[0].Value)

	_, err = f.svc.Refresh(ctx, f.tenant.ID, "revenue")
	assert.ErrorIs(t, err, shared.NewDomainError("UNKNOWN_DASHBOARD", ""))
}

func TestDashboardService_Customers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, b := range []struct {
		name    string
		segment profile.Segment
		spend   int64
	}{
		{"Globex", profile.SegmentEnterprise, 900},
		{"Initech", profile.SegmentSMB, 300},
		{"Hooli", profile.SegmentEnterprise, 1200},
	} {
		u := testutil.CreateUser(t, f.db, f.tenant.ID, strings.ToLower(b.name)+"@buyers.io", identity.RoleBuyer)
		p, err := profile.NewBuyerProfile(f.tenant.ID, u.ID, b.name, b.segment, "US")
		require.NoError(t, err)
		require.NoError(t, p.RecordOrder(decimal.NewFromInt(b.spend), now.AddDate(0, -1, 0)))
		require.NoError(t, f.profiles.UpsertBuyer(ctx, p))
	}

	d, err := f.svc.Customers(ctx, f.tenant.ID)
	require.NoError(t, err)

	require.Len(t, d.Charts, 1)
	assert.Equal(t, []string{"enterprise", "smb", "consumer"}, d.Charts[0].Labels)
	assert.Equal(t, []float64{2, 1, 0}, d.Charts[0].Series[0].Data)

	require.Len(t, d.Tables, 1)
	var names []string
	for _, row := range d.Tables[0].Rows {
		names = append(names, row[0])
	}
	assert.Equal(t, []string{"Hooli", "Globex", "Initech"}, names)
	assert.Equal(t, "$1,200.00", d.Tables[0].Rows[0][4])

	require.Len(t, d.KPIs, 1)
	assert.Equal(t, 3.0, d.KPIs[0].Value)
}

func TestDashboardService_Approvals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pending, err := approval.NewRequest(f.tenant.ID, "Laptop", approval.KindPurchase, decimal.NewFromInt(1500), f.user.ID)
	require.NoError(t, err)
	require.NoError(t, f.approvals.Create(ctx, pending))

	approved, err := approval.NewRequest(f.tenant.ID, "Flights", approval.KindExpense, decimal.NewFromInt(400), f.user.ID)
	require.NoError(t, err)
	require.NoError(t, f.approvals.Create(ctx, approved))
	require.NoError(t, approved.Approve(f.user.ID, "", approved.CreatedAt.Add(2*time.Hour)))
	require.NoError(t, f.approvals.Update(ctx, approved))

	d, err := f.svc.Approvals(ctx, f.tenant.ID)
	require.NoError(t, err)
	require.Len(t, d.Charts, 1)

	chart := d.Charts[0]
	counts := make(map[string]float64)
	for i, label := range chart.Labels {
		counts[label] = chart.Series[0].Data[i]
	}
	assert.Equal(t, 1.0, counts[string(approval.StatusPending)])
	assert.Equal(t, 1.0, counts[string(approval.StatusApproved)])
	assert.Equal(t, 0.0, counts[string(approval.StatusRejected)])
}

func TestDashboardService_Overview(t *testing.T) {
	f := newFixture(t)
	f.addExpense(t, finance.ExpenseCategoryTravel, "100", time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))

	d, err := f.svc.Overview(context.Background(), f.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, dashboard.NameOverview, d.Name)

	ids := make([]string, len(d.Charts))
	for i, c := range d.Charts {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{
		"expense-trend", "expense-categories", "expense-forecast",
		"churn-rate", "customer-segments", "approval-funnel",
	}, ids)
	assert.Len(t, d.Tables, 3)
}

func TestDashboardService_Export(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addExpense(t, finance.ExpenseCategoryTravel, "100", time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))

	res, err := f.svc.Export(ctx, f.tenant.ID, dashboard.NameExpenses, "CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, res.Format)
	assert.Equal(t, "text/csv", res.ContentType)
	assert.Equal(t, "exports/"+f.tenant.ID.String()+"/expenses/20240515T120000Z.csv", res.Key)
	assert.True(t, strings.HasPrefix(res.URL, "file://"))

	data, err := f.store.Get(ctx, res.Key)
	require.NoError(t, err)
	assert.Equal(t, len(data), res.Size)
	assert.True(t, strings.HasPrefix(string(data), "kind,id,label,series,value\n"))
	assert.Contains(t, string(data), "chart,expense-trend,2024-04,Expenses,100\n")

	res, err = f.svc.Export(ctx, f.tenant.ID, dashboard.NameApprovals, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "application/json", res.ContentType)
	assert.True(t, strings.HasSuffix(res.Key, ".json"))
}

func TestDashboardService_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Get(ctx, f.tenant.ID, "revenue")
	assert.ErrorIs(t, err, shared.NewDomainError("UNKNOWN_DASHBOARD", ""))

	_, err = f.svc.Export(ctx, f.tenant.ID, dashboard.NameExpenses, "xlsx")
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_FORMAT", ""))

	bare := NewDashboardService(f.expenses, f.profiles, f.approvals, zap.NewNop())
	_, err = bare.Export(ctx, f.tenant.ID, dashboard.NameExpenses, FormatCSV)
	assert.ErrorIs(t, err, shared.NewDomainError("EXPORT_UNAVAILABLE", ""))

	_, err = f.svc.Churn(ctx, uuid.New())
	assert.NoError(t, err)
}
