package profile

import (
	"time"

	"github.com/bizportal/backend/internal/domain/profile"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellerDTO is the API view of a seller profile. Bank account numbers are masked.
type SellerDTO struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Company   profile.Company `json:"company"`
	Address   profile.Address `json:"address"`
	Bank      profile.Bank    `json:"bank"`
	Contact   profile.Contact `json:"contact"`
	Verified  bool            `json:"verified"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToSellerDTO converts a domain seller profile
func ToSellerDTO(p *profile.SellerProfile) SellerDTO {
	return SellerDTO{
		ID:        p.ID,
		TenantID:  p.TenantID,
		UserID:    p.UserID,
		Company:   p.Company,
		Address:   p.Address,
		Bank:      p.Bank.Masked(),
		Contact:   p.Contact,
		Verified:  p.Verified,
		Version:   p.Version,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// BuyerDTO is the API view of a buyer profile
type BuyerDTO struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	UserID        uuid.UUID       `json:"user_id"`
	DisplayName   string          `json:"display_name"`
	Segment       string          `json:"segment"`
	Country       string          `json:"country,omitempty"`
	LifetimeValue decimal.Decimal `json:"lifetime_value"`
	OrdersCount   int             `json:"orders_count"`
	LastActiveAt  *time.Time      `json:"last_active_at,omitempty"`
	ChurnedAt     *time.Time      `json:"churned_at,omitempty"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToBuyerDTO converts a domain buyer profile
func ToBuyerDTO(p *profile.BuyerProfile) BuyerDTO {
	return BuyerDTO{
		ID:            p.ID,
		TenantID:      p.TenantID,
		UserID:        p.UserID,
		DisplayName:   p.DisplayName,
		Segment:       string(p.Segment),
		Country:       p.Country,
		LifetimeValue: p.LifetimeValue,
		OrdersCount:   p.OrdersCount,
		LastActiveAt:  p.LastActiveAt,
		ChurnedAt:     p.ChurnedAt,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
