package profile

import (
	"testing"
	"time"

	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() SellerDetails {
	return SellerDetails{
		Company: Company{Name: "Northwind Traders", RegistrationNumber: "NW-001", TaxID: "US-99", Website: "https://northwind.example"},
		Address: Address{Line1: "1 Market St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "us"},
		Bank:    Bank{AccountName: "Northwind", AccountNumber: "1234 5678 9012", BankName: "First Bank", SwiftCode: "firsus33"},
		Contact: Contact{Name: "Nancy", Email: "Nancy@Northwind.example", Phone: "+1 555 0100"},
	}
}

func TestNewSellerProfile(t *testing.T) {
	p, err := NewSellerProfile(uuid.New(), uuid.New(), validDetails())
	require.NoError(t, err)

	assert.Equal(t, "US", p.Address.Country)
	assert.Equal(t, "FIRSUS33", p.Bank.SwiftCode)
	assert.Equal(t, "123456789012", p.Bank.AccountNumber)
	assert.Equal(t, "nancy@northwind.example", p.Contact.Email)
	assert.False(t, p.Verified)

	_, err = NewSellerProfile(uuid.New(), uuid.Nil, validDetails())
	assert.Error(t, err)
}

func TestSellerDetails_Validate(t *testing.T) {
	cases := map[string]func(d *SellerDetails){
		"missing company": func(d *SellerDetails) { d.Company.Name = "" },
		"bad website":     func(d *SellerDetails) { d.Company.Website = "ftp://x" },
		"missing city":    func(d *SellerDetails) { d.Address.City = "" },
		"bad country":     func(d *SellerDetails) { d.Address.Country = "USA" },
		"short account":   func(d *SellerDetails) { d.Bank.AccountNumber = "12" },
		"bad swift":       func(d *SellerDetails) { d.Bank.SwiftCode = "12" },
		"bad email":       func(d *SellerDetails) { d.Contact.Email = "nope" },
		"bad phone":       func(d *SellerDetails) { d.Contact.Phone = "call me" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := validDetails()
			mutate(&d)
			_, err := NewSellerProfile(uuid.New(), uuid.New(), d)
			assert.Error(t, err)
		})
	}
}

func TestBank_Masked(t *testing.T) {
	b := Bank{AccountNumber: "123456789012"}
	assert.Equal(t, "********9012", b.Masked().AccountNumber)
	assert.Equal(t, "123456789012", b.AccountNumber)
	assert.Equal(t, "1234", Bank{AccountNumber: "1234"}.Masked().AccountNumber)
}

func TestAddress_String(t *testing.T) {
	a := Address{Line1: "1 Market St", City: "Springfield", Country: "US"}
	assert.Equal(t, "1 Market St, Springfield, US", a.String())
}

func TestSellerProfile_Update(t *testing.T) {
	p, err := NewSellerProfile(uuid.New(), uuid.New(), validDetails())
	require.NoError(t, err)
	require.NoError(t, p.Verify())
	assert.ErrorIs(t, p.Verify(), shared.ErrInvalidState)

	d := validDetails()
	d.Company.Name = "Northwind Ltd"
	require.NoError(t, p.Update(d))
	assert.True(t, p.Verified, "unchanged bank keeps verification")

	d.Bank.AccountNumber = "999988887777"
	require.NoError(t, p.Update(d))
	assert.False(t, p.Verified)
}

func TestSellerProfile_BackfillContact(t *testing.T) {
	d := validDetails()
	d.Contact = Contact{Phone: "+1 555 0100"}
	p, err := NewSellerProfile(uuid.New(), uuid.New(), d)
	require.NoError(t, err)

	assert.True(t, p.BackfillContact("Nancy", "nancy@example.com"))
	assert.Equal(t, "Nancy", p.Contact.Name)
	assert.Equal(t, "nancy@example.com", p.Contact.Email)
	assert.False(t, p.BackfillContact("Other", "other@example.com"))
}

func TestBuyerProfile(t *testing.T) {
	b, err := NewBuyerProfile(uuid.New(), uuid.New(), "Contoso", SegmentSMB, "de")
	require.NoError(t, err)
	assert.Equal(t, "DE", b.Country)
	assert.True(t, b.LifetimeValue.IsZero())

	_, err = NewBuyerProfile(uuid.New(), uuid.New(), "Contoso", Segment("whale"), "")
	assert.Error(t, err)

	t1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, b.RecordOrder(decimal.NewFromInt(100), t1))
	require.NoError(t, b.RecordOrder(decimal.RequireFromString("50.5"), t1.AddDate(0, 1, 0)))
	assert.Equal(t, 2, b.OrdersCount)
	assert.True(t, b.LifetimeValue.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, t1.AddDate(0, 1, 0), *b.LastActiveAt)
	assert.Error(t, b.RecordOrder(decimal.Zero, t1))

	churnAt := t1.AddDate(0, 3, 0)
	require.NoError(t, b.MarkChurned(churnAt))
	assert.True(t, b.IsChurned())
	assert.ErrorIs(t, b.MarkChurned(churnAt), shared.ErrInvalidState)

	require.NoError(t, b.Reactivate(churnAt.AddDate(0, 1, 0)))
	assert.False(t, b.IsChurned())
	assert.ErrorIs(t, b.Reactivate(churnAt), shared.ErrInvalidState)

	require.NoError(t, b.MarkChurned(churnAt))
	require.NoError(t, b.RecordOrder(decimal.NewFromInt(1), churnAt.AddDate(0, 0, 1)))
	assert.False(t, b.IsChurned(), "new order reactivates")
}

func TestBuyerProfile_ActiveAt(t *testing.T) {
	b, err := NewBuyerProfile(uuid.New(), uuid.New(), "Contoso", SegmentConsumer, "")
	require.NoError(t, err)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b.CreatedAt = created
	churn := created.AddDate(0, 2, 0)
	b.ChurnedAt = &churn

	assert.False(t, b.ActiveAt(created.AddDate(0, 0, -1)))
	assert.True(t, b.ActiveAt(created))
	assert.True(t, b.ActiveAt(churn.Add(-time.Second)))
	assert.False(t, b.ActiveAt(churn))
}
