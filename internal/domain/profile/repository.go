package profile

import (
	"context"

	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SellerFilter narrows seller listings
type SellerFilter struct {
	shared.Filter

	Verified *bool
}

// BuyerFilter narrows buyer listings
type BuyerFilter struct {
	shared.Filter

	Segment *Segment
	Churned *bool
}

// Repository defines persistence for seller and buyer profiles
type Repository interface {
	FindSellerByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*SellerProfile, error)

	// UpsertSeller inserts or replaces the seller profile keyed by user id.
	// The stored row is written back into p.
	UpsertSeller(ctx context.Context, p *SellerProfile) error

	ListSellers(ctx context.Context, tenantID uuid.UUID, filter SellerFilter) ([]*SellerProfile, int64, error)

	FindBuyerByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*BuyerProfile, error)

	// UpsertBuyer inserts or replaces the buyer profile keyed by user id.
	// The stored row is written back into p.
	UpsertBuyer(ctx context.Context, p *BuyerProfile) error

	ListBuyers(ctx context.Context, tenantID uuid.UUID, filter BuyerFilter) ([]*BuyerProfile, int64, error)

	// SaveBuyer persists activity changes of an existing buyer profile
	SaveBuyer(ctx context.Context, p *BuyerProfile) error

	CountSellersMissingContact(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// BackfillSellerContact copies the owning user's name and email into empty
	// contact fields and returns the number of profiles changed
	BackfillSellerContact(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
