package profile

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/bizportal/backend/internal/domain/shared"
)

var (
	countryRegex = regexp.MustCompile(`^[A-Z]{2}$`)
	swiftRegex   = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex   = regexp.MustCompile(`^\+?[0-9 ()\-]{6,30}$`)
)

// Company is the legal entity behind a seller
type Company struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
	TaxID              string `json:"tax_id"`
	Website            string `json:"website"`
}

// Validate checks required fields and formats
func (c Company) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.NewDomainError("INVALID_COMPANY", "Company name cannot be empty")
	}
	if len(c.Name) > 200 {
		return shared.NewDomainError("INVALID_COMPANY", "Company name cannot exceed 200 characters")
	}
	if c.Website != "" {
		u, err := url.Parse(c.Website)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return shared.NewDomainError("INVALID_COMPANY", "Company website must be an http(s) URL")
		}
	}
	return nil
}

// Address is a postal address
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"` // ISO 3166-1 alpha-2
}

// Normalize trims fields and upper-cases the country code
func (a Address) Normalize() Address {
	return Address{
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(a.Country)),
	}
}

// Validate checks required fields and formats
func (a Address) Validate() error {
	if a.Line1 == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Address line 1 cannot be empty")
	}
	if a.City == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "City cannot be empty")
	}
	if !countryRegex.MatchString(a.Country) {
		return shared.NewDomainError("INVALID_ADDRESS", "Country must be a two-letter ISO code")
	}
	return nil
}

// String renders the address on one line
func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Bank holds payout account details
type Bank struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	SwiftCode     string `json:"swift_code"`
}

// Validate checks required fields and formats
func (b Bank) Validate() error {
	if b.AccountName == "" || b.AccountNumber == "" || b.BankName == "" {
		return shared.NewDomainError("INVALID_BANK", "Account name, account number and bank name are required")
	}
	if len(b.AccountNumber) < 4 || len(b.AccountNumber) > 34 {
		return shared.NewDomainError("INVALID_BANK", "Account number must be between 4 and 34 characters")
	}
	if b.SwiftCode != "" && !swiftRegex.MatchString(b.SwiftCode) {
		return shared.NewDomainError("INVALID_BANK", "Invalid SWIFT code")
	}
	return nil
}

// Masked returns a copy with all but the last four account digits hidden
func (b Bank) Masked() Bank {
	n := len(b.AccountNumber)
	if n > 4 {
		b.AccountNumber = strings.Repeat("*", n-4) + b.AccountNumber[n-4:]
	}
	return b
}

// Contact is the seller's point of contact
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// IsEmpty reports whether no contact details are set
func (c Contact) IsEmpty() bool {
	return c.Name == "" && c.Email == "" && c.Phone == ""
}

// Validate checks formats of the fields that are set
func (c Contact) Validate() error {
	if c.Email != "" && !emailRegex.MatchString(c.Email) {
		return shared.NewDomainError("INVALID_CONTACT", "Invalid contact email format")
	}
	if c.Phone != "" && !phoneRegex.MatchString(c.Phone) {
		return shared.NewDomainError("INVALID_CONTACT", "Invalid contact phone format")
	}
	return nil
}
