package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bizportal/backend/internal/application/seed"
	"github.com/bizportal/backend/internal/domain/shared/valueobject"
	"github.com/bizportal/backend/internal/infrastructure/persistence"
)

// repositories groups the gorm repositories the data commands share
type repositories struct {
	tenants   *persistence.GormTenantRepository
	users     *persistence.GormUserRepository
	profiles  *persistence.GormProfileRepository
	expenses  *persistence.GormExpenseRecordRepository
	approvals *persistence.GormApprovalRepository
}

func newRepositories(db *persistence.Database) repositories {
	return repositories{
		tenants:   persistence.NewGormTenantRepository(db.DB),
		users:     persistence.NewGormUserRepository(db.DB),
		profiles:  persistence.NewGormProfileRepository(db.DB),
		expenses:  persistence.NewGormExpenseRecordRepository(db.DB),
		approvals: persistence.NewGormApprovalRepository(db.DB),
	}
}

// withRepositories opens the database and runs fn until it returns or the
// process is interrupted
func (a *app) withRepositories(parent context.Context, fn func(context.Context, repositories) error) error {
	db, err := a.openDatabase()
	if err != nil {
		return err
	}
	defer a.closeDB(db)

	ctx, stop := signalContext(parent)
	defer stop()

	return fn(ctx, newRepositories(db))
}

func (a *app) seeder(r repositories) *seed.Seeder {
	return seed.NewSeeder(r.tenants, r.users, r.profiles, a.cfg.Seed.DefaultPassword, a.log)
}

func newSeedCmd(a *app) *cobra.Command {
	var fixturePath string
	var validateOnly bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert tenants, users and profiles from a YAML fixture",
		Long: `Upsert tenants, users and profiles from a YAML fixture.

Re-running the command with the same fixture is safe: users are matched by
email within their tenant and profiles by their owning user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := fixturePath
			if path == "" {
				path = a.cfg.Seed.FixturePath
			}

			fixture, err := loadFixture(path)
			if err != nil {
				return err
			}
			if validateOnly {
				a.log.Info("Fixture is valid",
					zap.String("fixture", fixtureName(path)),
					zap.Int("tenants", len(fixture.Tenants)),
					zap.Int("users", len(fixture.Users)))
				return nil
			}

			return a.withRepositories(cmd.Context(), func(ctx context.Context, r repositories) error {
				report, err := a.seeder(r).Run(ctx, fixture)
				if err != nil {
					return fmt.Errorf("seed failed: %w", err)
				}
				a.log.Info("Seed summary",
					zap.String("fixture", fixtureName(path)),
					zap.Int("tenants", report.TenantsUpserted),
					zap.Int("users", report.UsersUpserted),
					zap.Int("sellers", report.SellersUpserted),
					zap.Int("buyers", report.BuyersUpserted))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "YAML fixture file (defaults to the embedded fixture)")
	cmd.Flags().BoolVar(&validateOnly, "validate", false, "only parse and validate the fixture")
	return cmd
}

func newFixupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fixup",
		Short: "Activate pending sellers and buyers and backfill seller contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRepositories(cmd.Context(), func(ctx context.Context, r repositories) error {
				report, err := a.seeder(r).Fixup(ctx)
				if err != nil {
					return fmt.Errorf("fixup failed: %w", err)
				}
				a.log.Info("Fixup summary",
					zap.Int64("users_activated", report.UsersActivated),
					zap.Int64("contacts_backfilled", report.ContactsBackfilled))
				return nil
			})
		},
	}
}

func newDemoCmd(a *app) *cobra.Command {
	var (
		tenant string
		opts   seed.DemoOptions
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate demo expenses, approvals and buyer orders for a tenant",
		Long: `Generate demo expenses, approval requests and buyer orders for a tenant
that has already been seeded. The same --seed produces the same data.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if tenant == "" {
				return fmt.Errorf("--tenant is required")
			}
			cur, err := valueobject.ParseCurrency(a.cfg.Dashboard.Currency)
			if err != nil {
				return err
			}

			return a.withRepositories(cmd.Context(), func(ctx context.Context, r repositories) error {
				gen := seed.NewDemoGenerator(r.tenants, r.users, r.expenses, r.approvals, r.profiles, cur, a.log)
				report, err := gen.Generate(ctx, tenant, opts)
				if err != nil {
					return fmt.Errorf("demo generation failed: %w", err)
				}
				a.log.Info("Demo summary",
					zap.String("tenant", tenant),
					zap.Int("expenses", report.Expenses),
					zap.Int("approvals", report.Approvals),
					zap.Int("orders", report.Orders),
					zap.Int("churned", report.Churned))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&tenant, "tenant", "t", "", "tenant code")
	cmd.Flags().IntVar(&opts.Months, "months", seed.DefaultDemoMonths, "months of history to generate")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "random seed")
	return cmd
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.DefaultFixture()
	}
	return seed.LoadFixture(path)
}

func fixtureName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
