package profile

import (
	"strings"

	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SellerProfile holds the business details of a seller account.
// There is at most one seller profile per user.
type SellerProfile struct {
	shared.TenantAggregateRoot
	UserID   uuid.UUID
	Company  Company
	Address  Address
	Bank     Bank
	Contact  Contact
	Verified bool
}

// SellerDetails groups the editable sub-records of a seller profile
type SellerDetails struct {
	Company Company
	Address Address
	Bank    Bank
	Contact Contact
}

func (d SellerDetails) normalize() SellerDetails {
	d.Company.Name = strings.TrimSpace(d.Company.Name)
	d.Company.Website = strings.TrimSpace(d.Company.Website)
	d.Address = d.Address.Normalize()
	d.Bank.SwiftCode = strings.ToUpper(strings.TrimSpace(d.Bank.SwiftCode))
	d.Bank.AccountNumber = strings.ReplaceAll(d.Bank.AccountNumber, " ", "")
	d.Contact.Email = strings.ToLower(strings.TrimSpace(d.Contact.Email))
	d.Contact.Name = strings.TrimSpace(d.Contact.Name)
	d.Contact.Phone = strings.TrimSpace(d.Contact.Phone)
	return d
}

// Validate validates every sub-record
func (d SellerDetails) Validate() error {
	if err := d.Company.Validate(); err != nil {
		return err
	}
	if err := d.Address.Validate(); err != nil {
		return err
	}
	if err := d.Bank.Validate(); err != nil {
		return err
	}
	return d.Contact.Validate()
}

// NewSellerProfile creates an unverified seller profile for a user
func NewSellerProfile(tenantID, userID uuid.UUID, details SellerDetails) (*SellerProfile, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	details = details.normalize()
	if err := details.Validate(); err != nil {
		return nil, err
	}

	return &SellerProfile{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		Company:             details.Company,
		Address:             details.Address,
		Bank:                details.Bank,
		Contact:             details.Contact,
	}, nil
}

// Update replaces all sub-records. Changing bank details drops verification.
func (s *SellerProfile) Update(details SellerDetails) error {
	details = details.normalize()
	if err := details.Validate(); err != nil {
		return err
	}
	if details.Bank != s.Bank {
		s.Verified = false
	}
	s.Company = details.Company
	s.Address = details.Address
	s.Bank = details.Bank
	s.Contact = details.Contact
	s.Changed()
	return nil
}

// Verify marks the seller as verified
func (s *SellerProfile) Verify() error {
	if s.Verified {
		return shared.NewDomainError("INVALID_STATE", "Seller is already verified")
	}
	s.Verified = true
	s.Changed()
	return nil
}

// BackfillContact fills empty contact fields from the owning user
func (s *SellerProfile) BackfillContact(name, email string) bool {
	changed := false
	if s.Contact.Name == "" && name != "" {
		s.Contact.Name = name
		changed = true
	}
	if s.Contact.Email == "" && email != "" {
		s.Contact.Email = email
		changed = true
	}
	if changed {
		s.Changed()
	}
	return changed
}
