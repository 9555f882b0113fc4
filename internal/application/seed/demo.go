package seed

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bizportal/backend/internal/domain/approval"
	"github.com/bizportal/backend/internal/domain/finance"
	"github.com/bizportal/backend/internal/domain/identity"
	"github.com/bizportal/backend/internal/domain/profile"
	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/bizportal/backend/internal/domain/shared/valueobject"
)

// DefaultDemoMonths is the history generated when DemoOptions.Months is not positive
const DefaultDemoMonths = 12

// DemoOptions controls demo data generation
type DemoOptions struct {
	Months int
	Seed   int64
}

// DemoReport counts the generated rows
type DemoReport struct {
	Expenses  int `json:"expenses"`
	Approvals int `json:"approvals"`
	Orders    int `json:"orders"`
	Churned   int `json:"churned"`
}

var demoDescriptions = map[finance.ExpenseCategory][]string{
	finance.ExpenseCategoryTravel:    {"Client visit", "Conference travel", "Team offsite"},
	finance.ExpenseCategorySoftware:  {"SaaS subscription", "Cloud hosting", "License renewal"},
	finance.ExpenseCategoryPayroll:   {"Contractor invoice", "Payroll run"},
	finance.ExpenseCategoryMarketing: {"Ad campaign", "Trade show booth", "Sponsored newsletter"},
	finance.ExpenseCategoryOffice:    {"Office supplies", "Coworking rent"},
	finance.ExpenseCategoryOther:     {"Bank fees", "Miscellaneous"},
}

var demoRequestTitles = map[approval.Kind][]string{
	approval.KindExpense:    {"Travel reimbursement", "Team dinner", "Conference ticket"},
	approval.KindPurchase:   {"New laptops", "Warehouse shelving", "Design tool seats"},
	approval.KindOnboarding: {"New seller onboarding", "Supplier verification"},
}

// DemoGenerator fills a tenant with deterministic mock activity. The same
// seed, month count and clock always produce the same rows.
type DemoGenerator struct {
	tenants   identity.TenantRepository
	users     identity.UserRepository
	expenses  finance.ExpenseRepository
	approvals approval.Repository
	profiles  profile.Repository
	currency  valueobject.Currency
	logger    *zap.Logger
	now       func() time.Time
}

// NewDemoGenerator creates a demo generator
func NewDemoGenerator(
	tenants identity.TenantRepository,
	users identity.UserRepository,
	expenses finance.ExpenseRepository,
	approvals approval.Repository,
	profiles profile.Repository,
	currency valueobject.Currency,
	logger *zap.Logger,
) *DemoGenerator {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &DemoGenerator{
		tenants:   tenants,
		users:     users,
		expenses:  expenses,
		approvals: approvals,
		profiles:  profiles,
		currency:  currency,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the generator's time source
func (g *DemoGenerator) WithClock(now func() time.Time) *DemoGenerator {
	g.now = now
	return g
}

// Generate writes expenses, approval requests and buyer orders for the
// tenant with the given code, covering the last opts.Months months
func (g *DemoGenerator) Generate(ctx context.Context, tenantCode string, opts DemoOptions) (*DemoReport, error) {
	if opts.Months <= 0 {
		opts.Months = DefaultDemoMonths
	}
	tenant, err := g.tenants.FindByCode(ctx, tenantCode)
	if err != nil {
		return nil, fmt.Errorf("find tenant %s: %w", tenantCode, err)
	}

	users, err := g.tenantUsers(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	var admins []*identity.User
	for _, u := range users {
		if u.Role == identity.RoleAdmin {
			admins = append(admins, u)
		}
	}
	if len(admins) == 0 {
		return nil, shared.NewDomainError("NO_ADMIN", fmt.Sprintf("Tenant %s has no admin user", tenantCode))
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	end := finance.MonthStart(g.now()).AddDate(0, 1, 0)
	start := end.AddDate(0, -opts.Months, 0)
	report := &DemoReport{}

	expenses, err := g.demoExpenses(rng, tenant.ID, users, start, opts.Months)
	if err != nil {
		return nil, err
	}
	if err := g.expenses.CreateBatch(ctx, expenses); err != nil {
		return nil, fmt.Errorf("insert demo expenses: %w", err)
	}
	report.Expenses = len(expenses)

	requests, err := g.demoRequests(rng, tenant.ID, users, admins, start, opts.Months)
	if err != nil {
		return nil, err
	}
	if err := g.approvals.CreateBatch(ctx, requests); err != nil {
		return nil, fmt.Errorf("insert demo approvals: %w", err)
	}
	report.Approvals = len(requests)

	if err := g.demoBuyerActivity(ctx, rng, tenant.ID, start, end, report); err != nil {
		return nil, err
	}

	g.logger.Info("Demo data generated",
		zap.String("tenant", tenantCode),
		zap.Int("months", opts.Months),
		zap.Int64("seed", opts.Seed),
		zap.Int("expenses", report.Expenses),
		zap.Int("approvals", report.Approvals),
		zap.Int("orders", report.Orders),
		zap.Int("churned", report.Churned))
	return report, nil
}

func (g *DemoGenerator) tenantUsers(ctx context.Context, tenantID uuid.UUID) ([]*identity.User, error) {
	var all []*identity.User
	for page := 1; ; page++ {
		users, total, err := g.users.FindAll(ctx, tenantID, identity.UserFilter{
			Filter: shared.Filter{Page: page, PageSize: 100, OrderBy: "email", OrderDir: "asc"},
		})
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		all = append(all, users...)
		if len(users) < 100 || int64(len(all)) >= total {
			break
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	return all, nil
}

func (g *DemoGenerator) demoExpenses(rng *rand.Rand, tenantID uuid.UUID, users []*identity.User, start time.Time, months int) ([]*finance.ExpenseRecord, error) {
	var out []*finance.ExpenseRecord
	for m := 0; m < months; m++ {
		month := start.AddDate(0, m, 0)
		count := 4 + rng.Intn(7)
		for i := 0; i < count; i++ {
			category := finance.AllExpenseCategories[rng.Intn(len(finance.AllExpenseCategories))]
			descriptions := demoDescriptions[category]
			rec, err := finance.NewExpenseRecord(
				tenantID,
				category,
				valueobject.NewMoney(randomAmount(rng, 20, 4000), g.currency),
				descriptions[rng.Intn(len(descriptions))],
				randomTimeInMonth(rng, month),
				users[rng.Intn(len(users))].ID,
			)
			if err != nil {
				return nil, fmt.Errorf("build demo expense: %w", err)
			}
			out = append(out, rec)
		}
	}
	return out, nil
}

func (g *DemoGenerator) demoRequests(rng *rand.Rand, tenantID uuid.UUID, users, admins []*identity.User, start time.Time, months int) ([]*approval.Request, error) {
	now := g.now().UTC()
	var out []*approval.Request
	for m := 0; m < months; m++ {
		month := start.AddDate(0, m, 0)
		count := 2 + rng.Intn(4)
		for i := 0; i < count; i++ {
			kind := approval.AllKinds[rng.Intn(len(approval.AllKinds))]
			titles := demoRequestTitles[kind]
			requester := users[rng.Intn(len(users))]
			r, err := approval.NewRequest(tenantID, titles[rng.Intn(len(titles))], kind, randomAmount(rng, 100, 25000), requester.ID)
			if err != nil {
				return nil, fmt.Errorf("build demo request: %w", err)
			}
			submitted := randomTimeInMonth(rng, month)
			if submitted.After(now) {
				submitted = now
			}
			r.CreatedAt = submitted
			r.UpdatedAt = submitted

			decidedAt := submitted.Add(time.Duration(1+rng.Intn(96)) * time.Hour)
			if decidedAt.After(now) {
				out = append(out, r)
				continue
			}
			admin := admins[rng.Intn(len(admins))]
			switch roll := rng.Intn(10); {
			case roll < 6:
				err = r.Approve(admin.ID, "", decidedAt)
			case roll < 8:
				err = r.Reject(admin.ID, "Over budget for this quarter", decidedAt)
			case roll < 9:
				err = r.Cancel(requester.ID, decidedAt)
			}
			if err != nil {
				return nil, fmt.Errorf("decide demo request: %w", err)
			}
			out = append(out, r)
		}
	}
	return out, nil
}

func (g *DemoGenerator) demoBuyerActivity(ctx context.Context, rng *rand.Rand, tenantID uuid.UUID, start, end time.Time, report *DemoReport) error {
	buyers, _, err := g.profiles.ListBuyers(ctx, tenantID, profile.BuyerFilter{
		Filter: shared.Filter{Page: 1, PageSize: 100, OrderBy: "display_name", OrderDir: "asc"},
	})
	if err != nil {
		return fmt.Errorf("list buyers: %w", err)
	}

	span := end.Sub(start)
	now := g.now().UTC()
	for _, b := range buyers {
		if b.IsChurned() {
			continue
		}
		orders := 1 + rng.Intn(6)
		times := make([]time.Time, orders)
		for i := range times {
			times[i] = start.Add(time.Duration(rng.Int63n(int64(span))))
			if times[i].After(now) {
				times[i] = now
			}
		}
		sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

		for _, at := range times {
			if err := b.RecordOrder(randomAmount(rng, 50, 8000), at); err != nil {
				return fmt.Errorf("record demo order: %w", err)
			}
			if err := g.profiles.SaveBuyer(ctx, b); err != nil {
				return fmt.Errorf("save buyer %s: %w", b.DisplayName, err)
			}
			report.Orders++
		}

		if rng.Intn(5) == 0 {
			churnAt := times[len(times)-1].Add(time.Duration(1+rng.Intn(60)) * 24 * time.Hour)
			if churnAt.After(now) {
				continue
			}
			if err := b.MarkChurned(churnAt); err != nil {
				return fmt.Errorf("churn demo buyer: %w", err)
			}
			if err := g.profiles.SaveBuyer(ctx, b); err != nil {
				return fmt.Errorf("save buyer %s: %w", b.DisplayName, err)
			}
			report.Churned++
		}
	}
	return nil
}

// randomAmount returns a value in [lo, hi) with two decimals
func randomAmount(rng *rand.Rand, lo, hi int64) decimal.Decimal {
	cents := lo*100 + rng.Int63n((hi-lo)*100)
	return decimal.New(cents, -2)
}

func randomTimeInMonth(rng *rand.Rand, month time.Time) time.Time {
	days := month.AddDate(0, 1, 0).Sub(month).Hours() / 24
	return month.Add(time.Duration(rng.Intn(int(days)))*24*time.Hour + time.Duration(8+rng.Intn(10))*time.Hour)
}
