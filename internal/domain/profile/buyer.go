package profile

import (
	"strings"
	"time"

	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Segment classifies buyers for customer intelligence
type Segment string

const (
	SegmentEnterprise Segment = "enterprise"
	SegmentSMB        Segment = "smb"
	SegmentConsumer   Segment = "consumer"
)

// AllSegments lists segments in display order
var AllSegments = []Segment{SegmentEnterprise, SegmentSMB, SegmentConsumer}

// IsValid checks if the segment is known
func (s Segment) IsValid() bool {
	switch s {
	case SegmentEnterprise, SegmentSMB, SegmentConsumer:
		return true
	}
	return false
}

// BuyerProfile holds purchasing activity of a buyer account.
// There is at most one buyer profile per user.
type BuyerProfile struct {
	shared.TenantAggregateRoot
	UserID        uuid.UUID
	DisplayName   string
	Segment       Segment
	Country       string
	LifetimeValue decimal.Decimal
	OrdersCount   int
	LastActiveAt  *time.Time
	ChurnedAt     *time.Time
}

// NewBuyerProfile creates a buyer profile with no activity
func NewBuyerProfile(tenantID, userID uuid.UUID, displayName string, segment Segment, country string) (*BuyerProfile, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	b := &BuyerProfile{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		LifetimeValue:       decimal.Zero,
	}
	if err := b.setDetails(displayName, segment, country); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateDetails changes the descriptive fields
func (b *BuyerProfile) UpdateDetails(displayName string, segment Segment, country string) error {
	if err := b.setDetails(displayName, segment, country); err != nil {
		return err
	}
	b.Changed()
	return nil
}

func (b *BuyerProfile) setDetails(displayName string, segment Segment, country string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return shared.NewDomainError("INVALID_NAME", "Display name cannot be empty")
	}
	if len(displayName) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Display name cannot exceed 200 characters")
	}
	if !segment.IsValid() {
		return shared.NewDomainError("INVALID_SEGMENT", "Segment must be one of enterprise, smb, consumer")
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	if country != "" && !countryRegex.MatchString(country) {
		return shared.NewDomainError("INVALID_COUNTRY", "Country must be a two-letter ISO code")
	}
	b.DisplayName = displayName
	b.Segment = segment
	b.Country = country
	return nil
}

// RecordOrder adds an order to the buyer's history. An order from a churned
// buyer reactivates them.
func (b *BuyerProfile) RecordOrder(amount decimal.Decimal, at time.Time) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Order amount must be positive")
	}
	at = at.UTC()
	b.LifetimeValue = b.LifetimeValue.Add(amount)
	b.OrdersCount++
	if b.LastActiveAt == nil || at.After(*b.LastActiveAt) {
		b.LastActiveAt = &at
	}
	if b.ChurnedAt != nil && !at.Before(*b.ChurnedAt) {
		b.ChurnedAt = nil
	}
	b.Changed()
	return nil
}

// MarkChurned records that the buyer stopped buying
func (b *BuyerProfile) MarkChurned(at time.Time) error {
	if b.IsChurned() {
		return shared.NewDomainError("INVALID_STATE", "Buyer is already churned")
	}
	at = at.UTC()
	b.ChurnedAt = &at
	b.Changed()
	return nil
}

// Reactivate clears the churn marker
func (b *BuyerProfile) Reactivate(at time.Time) error {
	if !b.IsChurned() {
		return shared.NewDomainError("INVALID_STATE", "Buyer is not churned")
	}
	at = at.UTC()
	b.ChurnedAt = nil
	b.LastActiveAt = &at
	b.Changed()
	return nil
}

// IsChurned returns true if the buyer is marked as churned
func (b *BuyerProfile) IsChurned() bool {
	return b.ChurnedAt != nil
}

// ActiveAt reports whether the buyer existed and was not churned at t
func (b *BuyerProfile) ActiveAt(t time.Time) bool {
	if b.CreatedAt.After(t) {
		return false
	}
	return b.ChurnedAt == nil || b.ChurnedAt.After(t)
}
