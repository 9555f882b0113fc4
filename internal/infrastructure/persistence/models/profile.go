package models

import (
	"time"

	"github.com/bizportal/backend/internal/domain/profile"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanyColumns maps profile.Company into company_* columns.
type CompanyColumns struct {
	Name               string `gorm:"type:varchar(200);not null"`
	RegistrationNumber string `gorm:"type:varchar(100)"`
	TaxID              string `gorm:"type:varchar(100)"`
	Website            string `gorm:"type:varchar(300)"`
}

// AddressColumns maps profile.Address into address_* columns.
type AddressColumns struct {
	Line1      string `gorm:"type:varchar(200)"`
	Line2      string `gorm:"type:varchar(200)"`
	City       string `gorm:"type:varchar(100)"`
	State      string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`
	Country    string `gorm:"type:varchar(2)"`
}

// BankColumns maps profile.Bank into bank_* columns.
type BankColumns struct {
	AccountName   string `gorm:"type:varchar(200)"`
	AccountNumber string `gorm:"type:varchar(34)"`
	BankName      string `gorm:"type:varchar(200)"`
	SwiftCode     string `gorm:"type:varchar(11)"`
}

// ContactColumns maps profile.Contact into contact_* columns.
type ContactColumns struct {
	Name  string `gorm:"type:varchar(200);not null;default:''"`
	Email string `gorm:"type:varchar(200);not null;default:''"`
	Phone string `gorm:"type:varchar(30);not null;default:''"`
}

// SellerProfileModel is the persistence model for the SellerProfile aggregate.
type SellerProfileModel struct {
	TenantAggregateModel
	UserID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Company  CompanyColumns `gorm:"embedded;embeddedPrefix:company_"`
	Address  AddressColumns `gorm:"embedded;embeddedPrefix:address_"`
	Bank     BankColumns    `gorm:"embedded;embeddedPrefix:bank_"`
	Contact  ContactColumns `gorm:"embedded;embeddedPrefix:contact_"`
	Verified bool           `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (SellerProfileModel) TableName() string {
	return "seller_profiles"
}

// ToDomain converts the persistence model to a domain SellerProfile.
func (m *SellerProfileModel) ToDomain() *profile.SellerProfile {
	return &profile.SellerProfile{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		UserID:              m.UserID,
		Company:             profile.Company(m.Company),
		Address:             profile.Address(m.Address),
		Bank:                profile.Bank(m.Bank),
		Contact:             profile.Contact(m.Contact),
		Verified:            m.Verified,
	}
}

// SellerProfileModelFromDomain creates a persistence model from a domain SellerProfile.
func SellerProfileModelFromDomain(p *profile.SellerProfile) *SellerProfileModel {
	m := &SellerProfileModel{
		UserID:   p.UserID,
		Company:  CompanyColumns(p.Company),
		Address:  AddressColumns(p.Address),
		Bank:     BankColumns(p.Bank),
		Contact:  ContactColumns(p.Contact),
		Verified: p.Verified,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

// BuyerProfileModel is the persistence model for the BuyerProfile aggregate.
type BuyerProfileModel struct {
	TenantAggregateModel
	UserID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	DisplayName   string          `gorm:"type:varchar(200);not null"`
	Segment       profile.Segment `gorm:"type:varchar(20);not null;index"`
	Country       string          `gorm:"type:varchar(2)"`
	LifetimeValue decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OrdersCount   int             `gorm:"not null;default:0"`
	LastActiveAt  *time.Time
	ChurnedAt     *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (BuyerProfileModel) TableName() string {
	return "buyer_profiles"
}

// ToDomain converts the persistence model to a domain BuyerProfile.
func (m *BuyerProfileModel) ToDomain() *profile.BuyerProfile {
	return &profile.BuyerProfile{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		UserID:              m.UserID,
		DisplayName:         m.DisplayName,
		Segment:             m.Segment,
		Country:             m.Country,
		LifetimeValue:       m.LifetimeValue,
		OrdersCount:         m.OrdersCount,
		LastActiveAt:        m.LastActiveAt,
		ChurnedAt:           m.ChurnedAt,
	}
}

// BuyerProfileModelFromDomain creates a persistence model from a domain BuyerProfile.
func BuyerProfileModelFromDomain(p *profile.BuyerProfile) *BuyerProfileModel {
	m := &BuyerProfileModel{
		UserID:        p.UserID,
		DisplayName:   p.DisplayName,
		Segment:       p.Segment,
		Country:       p.Country,
		LifetimeValue: p.LifetimeValue,
		OrdersCount:   p.OrdersCount,
		LastActiveAt:  p.LastActiveAt,
		ChurnedAt:     p.ChurnedAt,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}
