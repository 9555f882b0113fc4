// Package seed populates the portal with fixture data and demo activity.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/bizportal/backend/internal/domain/profile"
)

//go:embed fixtures/default.yaml
var defaultFixture []byte

// ErrInvalidFixture is returned when a fixture fails validation
var ErrInvalidFixture = errors.New("seed: invalid fixture")

// Fixture is the data one seed run upserts
type Fixture struct {
	Tenants []TenantFixture `yaml:"tenants" validate:"required,min=1,dive"`
	Users   []UserFixture   `yaml:"users" validate:"dive"`
	Sellers []SellerFixture `yaml:"sellers" validate:"dive"`
	Buyers  []BuyerFixture  `yaml:"buyers" validate:"dive"`
}

// TenantFixture describes a tenant
type TenantFixture struct {
	Code string `yaml:"code" validate:"required,min=2,max=50"`
	Name string `yaml:"name" validate:"required,max=200"`
}

// UserFixture describes a user. An empty password uses the seeder default and
// an empty status means pending.
type UserFixture struct {
	Tenant   string `yaml:"tenant" validate:"required"`
	Email    string `yaml:"email" validate:"required,email"`
	Name     string `yaml:"name" validate:"required,max=100"`
	Role     string `yaml:"role" validate:"required,oneof=admin seller buyer"`
	Password string `yaml:"password,omitempty"`
	Status   string `yaml:"status,omitempty" validate:"omitempty,oneof=pending active deactivated"`
}

// SellerFixture describes a seller profile owned by the user with Email
type SellerFixture struct {
	Tenant   string         `yaml:"tenant" validate:"required"`
	Email    string         `yaml:"email" validate:"required,email"`
	Verified bool           `yaml:"verified"`
	Company  CompanyFixture `yaml:"company"`
	Address  AddressFixture `yaml:"address"`
	Bank     BankFixture    `yaml:"bank"`
	Contact  ContactFixture `yaml:"contact"`
}

// CompanyFixture holds seller company details
type CompanyFixture struct {
	Name               string `yaml:"name" validate:"required"`
	RegistrationNumber string `yaml:"registration_number"`
	TaxID              string `yaml:"tax_id"`
	Website            string `yaml:"website" validate:"omitempty,url"`
}

// AddressFixture holds a seller address
type AddressFixture struct {
	Line1      string `yaml:"line1" validate:"required"`
	Line2      string `yaml:"line2"`
	City       string `yaml:"city" validate:"required"`
	State      string `yaml:"state"`
	PostalCode string `yaml:"postal_code"`
	Country    string `yaml:"country" validate:"required,len=2"`
}

// BankFixture holds seller payout details
type BankFixture struct {
	AccountName   string `yaml:"account_name" validate:"required"`
	AccountNumber string `yaml:"account_number" validate:"required"`
	BankName      string `yaml:"bank_name" validate:"required"`
	SwiftCode     string `yaml:"swift_code"`
}

// ContactFixture holds an optional seller contact
type ContactFixture struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email" validate:"omitempty,email"`
	Phone string `yaml:"phone"`
}

// BuyerFixture describes a buyer profile owned by the user with Email
type BuyerFixture struct {
	Tenant      string `yaml:"tenant" validate:"required"`
	Email       string `yaml:"email" validate:"required,email"`
	DisplayName string `yaml:"display_name" validate:"required,max=200"`
	Segment     string `yaml:"segment" validate:"required,oneof=enterprise smb consumer"`
	Country     string `yaml:"country" validate:"omitempty,len=2"`
}

// Details converts the fixture into domain seller details
func (s SellerFixture) Details() profile.SellerDetails {
	return profile.SellerDetails{
		Company: profile.Company{
			Name:               s.Company.Name,
			RegistrationNumber: s.Company.RegistrationNumber,
			TaxID:              s.Company.TaxID,
			Website:            s.Company.Website,
		},
		Address: profile.Address{
			Line1:      s.Address.Line1,
			Line2:      s.Address.Line2,
			City:       s.Address.City,
			State:      s.Address.State,
			PostalCode: s.Address.PostalCode,
			Country:    s.Address.Country,
		},
		Bank: profile.Bank{
			AccountName:   s.Bank.AccountName,
			AccountNumber: s.Bank.AccountNumber,
			BankName:      s.Bank.BankName,
			SwiftCode:     s.Bank.SwiftCode,
		},
		Contact: profile.Contact{
			Name:  s.Contact.Name,
			Email: s.Contact.Email,
			Phone: s.Contact.Phone,
		},
	}
}

// DefaultFixture returns the fixture shipped with the binary
func DefaultFixture() (*Fixture, error) {
	return ParseFixture(defaultFixture)
}

// LoadFixture reads and validates a YAML fixture file
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes and validates YAML fixture data
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks field rules and that every reference resolves: users
// belong to a listed tenant and profiles to a listed user of the matching role
func (f *Fixture) Validate() error {
	if err := validator.New().Struct(f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}

	tenants := make(map[string]bool, len(f.Tenants))
	for _, t := range f.Tenants {
		if tenants[t.Code] {
			return fmt.Errorf("%w: duplicate tenant %q", ErrInvalidFixture, t.Code)
		}
		tenants[t.Code] = true
	}

	roles := make(map[string]string, len(f.Users))
	for _, u := range f.Users {
		if !tenants[u.Tenant] {
			return fmt.Errorf("%w: user %s references unknown tenant %q", ErrInvalidFixture, u.Email, u.Tenant)
		}
		key := userKey(u.Tenant, u.Email)
		if _, dup := roles[key]; dup {
			return fmt.Errorf("%w: duplicate user %s in tenant %q", ErrInvalidFixture, u.Email, u.Tenant)
		}
		roles[key] = u.Role
	}

	for _, s := range f.Sellers {
		if roles[userKey(s.Tenant, s.Email)] != "seller" {
			return fmt.Errorf("%w: seller profile %s needs a seller user in tenant %q", ErrInvalidFixture, s.Email, s.Tenant)
		}
	}
	for _, b := range f.Buyers {
		if roles[userKey(b.Tenant, b.Email)] != "buyer" {
			return fmt.Errorf("%w: buyer profile %s needs a buyer user in tenant %q", ErrInvalidFixture, b.Email, b.Tenant)
		}
	}
	return nil
}

func userKey(tenant, email string) string {
	return tenant + "/" + strings.ToLower(strings.TrimSpace(email))
}
