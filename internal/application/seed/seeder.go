package seed

import (
	"context"
	"fmt"

	"github.com/bizportal/backend/internal/domain/identity"
	"github.com/bizportal/backend/internal/domain/profile"
	"go.uber.org/zap"
)

// Report counts the rows a seed run upserted
type Report struct {
	TenantsUpserted int `json:"tenants_upserted"`
	UsersUpserted   int `json:"users_upserted"`
	SellersUpserted int `json:"sellers_upserted"`
	BuyersUpserted  int `json:"buyers_upserted"`
}

// FixupReport counts the rows changed by Fixup
type FixupReport struct {
	UsersActivated     int64 `json:"users_activated"`
	ContactsBackfilled int64 `json:"contacts_backfilled"`
}

// Seeder upserts fixtures through the repositories. Running it twice with the
// same fixture leaves one user per email and one profile per user.
type Seeder struct {
	tenants         identity.TenantRepository
	users           identity.UserRepository
	profiles        profile.Repository
	defaultPassword string
	logger          *zap.Logger
}

// NewSeeder creates a seeder. defaultPassword is used for fixture users that
// carry none.
func NewSeeder(
	tenants identity.TenantRepository,
	users identity.UserRepository,
	profiles profile.Repository,
	defaultPassword string,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{
		tenants:         tenants,
		users:           users,
		profiles:        profiles,
		defaultPassword: defaultPassword,
		logger:          logger,
	}
}

// Run upserts tenants, users, sellers and buyers in that order and stops at
// the first error
func (s *Seeder) Run(ctx context.Context, f *Fixture) (*Report, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	report := &Report{}

	tenantIDs := make(map[string]*identity.Tenant, len(f.Tenants))
	for _, tf := range f.Tenants {
		t, err := identity.NewTenant(tf.Code, tf.Name)
		if err != nil {
			return report, fmt.Errorf("seed tenant %s: %w", tf.Code, err)
		}
		if err := s.tenants.UpsertByCode(ctx, t); err != nil {
			return report, fmt.Errorf("seed tenant %s: %w", tf.Code, err)
		}
		tenantIDs[tf.Code] = t
		report.TenantsUpserted++
	}

	for _, uf := range f.Users {
		if err := s.upsertUser(ctx, tenantIDs[uf.Tenant], uf); err != nil {
			return report, fmt.Errorf("seed user %s: %w", uf.Email, err)
		}
		report.UsersUpserted++
	}

	for _, sf := range f.Sellers {
		if err := s.upsertSeller(ctx, tenantIDs[sf.Tenant], sf); err != nil {
			return report, fmt.Errorf("seed seller %s: %w", sf.Email, err)
		}
		report.SellersUpserted++
	}

	for _, bf := range f.Buyers {
		if err := s.upsertBuyer(ctx, tenantIDs[bf.Tenant], bf); err != nil {
			return report, fmt.Errorf("seed buyer %s: %w", bf.Email, err)
		}
		report.BuyersUpserted++
	}

	s.logger.Info("Seed completed",
		zap.Int("tenants", report.TenantsUpserted),
		zap.Int("users", report.UsersUpserted),
		zap.Int("sellers", report.SellersUpserted),
		zap.Int("buyers", report.BuyersUpserted))
	return report, nil
}

// Fixup runs the bulk corrections applied after seeding: pending sellers and
// buyers are activated and empty seller contacts are filled from the owning user
func (s *Seeder) Fixup(ctx context.Context) (*FixupReport, error) {
	tenants, err := s.tenants.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	report := &FixupReport{}
	for _, t := range tenants {
		for _, role := range []identity.Role{identity.RoleSeller, identity.RoleBuyer} {
			n, err := s.users.UpdateStatusWhere(ctx, t.ID, identity.UserStatusPending, identity.UserStatusActive, role)
			if err != nil {
				return report, fmt.Errorf("activate %s users of %s: %w", role, t.Code, err)
			}
			report.UsersActivated += n
		}

		n, err := s.profiles.BackfillSellerContact(ctx, t.ID)
		if err != nil {
			return report, fmt.Errorf("backfill seller contacts of %s: %w", t.Code, err)
		}
		report.ContactsBackfilled += n
	}

	s.logger.Info("Fixup completed",
		zap.Int64("users_activated", report.UsersActivated),
		zap.Int64("contacts_backfilled", report.ContactsBackfilled))
	return report, nil
}

func (s *Seeder) upsertUser(ctx context.Context, t *identity.Tenant, uf UserFixture) error {
	password := uf.Password
	if password == "" {
		password = s.defaultPassword
	}
	u, err := identity.NewUser(t.ID, uf.Email, uf.Name, identity.Role(uf.Role), password)
	if err != nil {
		return err
	}
	explicit := uf.Status != ""
	if explicit {
		u.Status = identity.UserStatus(uf.Status)
	}
	return s.users.UpsertByEmail(ctx, u, explicit)
}

func (s *Seeder) upsertSeller(ctx context.Context, t *identity.Tenant, sf SellerFixture) error {
	u, err := s.users.FindByEmail(ctx, t.ID, sf.Email)
	if err != nil {
		return err
	}
	p, err := profile.NewSellerProfile(t.ID, u.ID, sf.Details())
	if err != nil {
		return err
	}
	p.Verified = sf.Verified
	return s.profiles.UpsertSeller(ctx, p)
}

func (s *Seeder) upsertBuyer(ctx context.Context, t *identity.Tenant, bf BuyerFixture) error {
	u, err := s.users.FindByEmail(ctx, t.ID, bf.Email)
	if err != nil {
		return err
	}
	p, err := profile.NewBuyerProfile(t.ID, u.ID, bf.DisplayName, profile.Segment(bf.Segment), bf.Country)
	if err != nil {
		return err
	}
	return s.profiles.UpsertBuyer(ctx, p)
}
