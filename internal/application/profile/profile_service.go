// Package profile orchestrates seller and buyer profile maintenance.
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/bizportal/backend/internal/domain/identity"
	"github.com/bizportal/backend/internal/domain/profile"
	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ChangeNotifier is told when tenant data feeding dashboards changes
type ChangeNotifier func(ctx context.Context, tenantID uuid.UUID)

// ProfileService handles seller and buyer profiles
type ProfileService struct {
	profiles profile.Repository
	users    identity.UserRepository
	logger   *zap.Logger
	notify   ChangeNotifier
	now      func() time.Time
}

// Option configures a ProfileService
type Option func(*ProfileService)

// WithChangeNotifier registers a callback run after buyer activity changes
func WithChangeNotifier(fn ChangeNotifier) Option {
	return func(s *ProfileService) {
		s.notify = fn
	}
}

// WithClock overrides the time source used for activity timestamps
func WithClock(now func() time.Time) Option {
	return func(s *ProfileService) {
		s.now = now
	}
}

// NewProfileService creates a new profile service
func NewProfileService(profiles profile.Repository, users identity.UserRepository, logger *zap.Logger, opts ...Option) *ProfileService {
	s := &ProfileService{
		profiles: profiles,
		users:    users,
		logger:   logger,
		notify:   func(context.Context, uuid.UUID) {},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertSellerInput contains the full seller profile
type UpsertSellerInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Details  profile.SellerDetails
	Verified bool
}

// UpsertBuyerInput contains the descriptive buyer fields
type UpsertBuyerInput struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	DisplayName string
	Segment     profile.Segment
	Country     string
}

// UpsertSeller creates or replaces the seller profile of a seller user
func (s *ProfileService) UpsertSeller(ctx context.Context, input UpsertSellerInput) (*SellerDTO, error) {
	if err := s.requireRole(ctx, input.TenantID, input.UserID, identity.RoleSeller); err != nil {
		return nil, err
	}

	p, err := s.profiles.FindSellerByUserID(ctx, input.TenantID, input.UserID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		p, err = profile.NewSellerProfile(input.TenantID, input.UserID, input.Details)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := p.Update(input.Details); err != nil {
			return nil, err
		}
	}
	p.Verified = input.Verified

	if err := s.profiles.UpsertSeller(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Seller profile upserted",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("user_id", input.UserID.String()))

	dto := ToSellerDTO(p)
	return &dto, nil
}

// GetSeller returns the seller profile of a user
func (s *ProfileService) GetSeller(ctx context.Context, tenantID, userID uuid.UUID) (*SellerDTO, error) {
	p, err := s.profiles.FindSellerByUserID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	dto := ToSellerDTO(p)
	return &dto, nil
}

// ListSellers returns a page of seller profiles
func (s *ProfileService) ListSellers(ctx context.Context, tenantID uuid.UUID, filter profile.SellerFilter) (*shared.Paginated[SellerDTO], error) {
	items, total, err := s.profiles.ListSellers(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]SellerDTO, len(items))
	for i, p := range items {
		dtos[i] = ToSellerDTO(p)
	}
	page := shared.NewPaginated(dtos, total, filter.Page, filter.Limit())
	return &page, nil
}

// UpsertBuyer creates a buyer profile or updates its descriptive fields.
// Purchasing activity is never reset by an upsert.
func (s *ProfileService) UpsertBuyer(ctx context.Context, input UpsertBuyerInput) (*BuyerDTO, error) {
	if err := s.requireRole(ctx, input.TenantID, input.UserID, identity.RoleBuyer); err != nil {
		return nil, err
	}

	p, err := s.profiles.FindBuyerByUserID(ctx, input.TenantID, input.UserID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		p, err = profile.NewBuyerProfile(input.TenantID, input.UserID, input.DisplayName, input.Segment, input.Country)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := p.UpdateDetails(input.DisplayName, input.Segment, input.Country); err != nil {
			return nil, err
		}
	}

	if err := s.profiles.UpsertBuyer(ctx, p); err != nil {
		return nil, err
	}
	s.notify(ctx, input.TenantID)

	dto := ToBuyerDTO(p)
	return &dto, nil
}

// GetBuyer returns the buyer profile of a user
func (s *ProfileService) GetBuyer(ctx context.Context, tenantID, userID uuid.UUID) (*BuyerDTO, error) {
	p, err := s.profiles.FindBuyerByUserID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	dto := ToBuyerDTO(p)
	return &dto, nil
}

// ListBuyers returns a page of buyer profiles
func (s *ProfileService) ListBuyers(ctx context.Context, tenantID uuid.UUID, filter profile.BuyerFilter) (*shared.Paginated[BuyerDTO], error) {
	items, total, err := s.profiles.ListBuyers(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]BuyerDTO, len(items))
	for i, p := range items {
		dtos[i] = ToBuyerDTO(p)
	}
	page := shared.NewPaginated(dtos, total, filter.Page, filter.Limit())
	return &page, nil
}

// RecordBuyerOrder adds an order to a buyer's activity. A zero at means now.
func (s *ProfileService) RecordBuyerOrder(ctx context.Context, tenantID, userID uuid.UUID, amount decimal.Decimal, at time.Time) (*BuyerDTO, error) {
	if at.IsZero() {
		at = s.now()
	}
	return s.mutateBuyer(ctx, tenantID, userID, func(p *profile.BuyerProfile) error {
		return p.RecordOrder(amount, at)
	})
}

// MarkBuyerChurned flags a buyer as churned. A zero at means now.
func (s *ProfileService) MarkBuyerChurned(ctx context.Context, tenantID, userID uuid.UUID, at time.Time) (*BuyerDTO, error) {
	if at.IsZero() {
		at = s.now()
	}
	return s.mutateBuyer(ctx, tenantID, userID, func(p *profile.BuyerProfile) error {
		return p.MarkChurned(at)
	})
}

func (s *ProfileService) mutateBuyer(ctx context.Context, tenantID, userID uuid.UUID, fn func(*profile.BuyerProfile) error) (*BuyerDTO, error) {
	p, err := s.profiles.FindBuyerByUserID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.profiles.SaveBuyer(ctx, p); err != nil {
		return nil, err
	}
	s.notify(ctx, tenantID)

	dto := ToBuyerDTO(p)
	return &dto, nil
}

func (s *ProfileService) requireRole(ctx context.Context, tenantID, userID uuid.UUID, role identity.Role) error {
	user, err := s.users.FindByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if user.Role != role {
		return shared.NewDomainError("ROLE_MISMATCH", "User must have role "+string(role)+" for this profile")
	}
	return nil
}
