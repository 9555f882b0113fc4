package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bizportal/backend/internal/domain/profile"
	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/bizportal/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sellerUpsertColumns are overwritten when a seller profile already exists for the user
var sellerUpsertColumns = []string{
	"company_name", "company_registration_number", "company_tax_id", "company_website",
	"address_line1", "address_line2", "address_city", "address_state", "address_postal_code", "address_country",
	"bank_account_name", "bank_account_number", "bank_bank_name", "bank_swift_code",
	"contact_name", "contact_email", "contact_phone",
	"verified", "updated_at",
}

// buyerUpsertColumns are overwritten when a buyer profile already exists for the user.
// Activity columns are left alone.
var buyerUpsertColumns = []string{"display_name", "segment", "country", "updated_at"}

const missingContactCondition = "(contact_name = '' OR contact_email = '')"

// GormProfileRepository implements profile.Repository using GORM
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindSellerByUserID finds the seller profile owned by a user
func (r *GormProfileRepository) FindSellerByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*profile.SellerProfile, error) {
	var model models.SellerProfileModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpsertSeller inserts the seller profile or replaces the details of the one
// already stored for the same user
func (r *GormProfileRepository) UpsertSeller(ctx context.Context, p *profile.SellerProfile) error {
	model := models.SellerProfileModelFromDomain(p)
	model.UpdatedAt = time.Now().UTC()

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: append(
				clause.AssignmentColumns(sellerUpsertColumns),
				clause.Assignment{Column: clause.Column{Name: "version"}, Value: gorm.Expr("seller_profiles.version + 1")},
			),
		}).
		Create(model).Error; err != nil {
		return err
	}

	stored, err := r.FindSellerByUserID(ctx, p.TenantID, p.UserID)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

// ListSellers returns seller profiles for the tenant with pagination
func (r *GormProfileRepository) ListSellers(ctx context.Context, tenantID uuid.UUID, filter profile.SellerFilter) ([]*profile.SellerProfile, int64, error) {
	var sellerModels []*models.SellerProfileModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.SellerProfileModel{}).Scopes(TenantScope(tenantID))
	if filter.Search != "" {
		query = query.Where("LOWER(company_name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	if filter.Verified != nil {
		query = query.Where("verified = ?", *filter.Verified)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.
		Order(sellerSort.orderBy(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&sellerModels).Error; err != nil {
		return nil, 0, err
	}

	sellers := make([]*profile.SellerProfile, len(sellerModels))
	for i, model := range sellerModels {
		sellers[i] = model.ToDomain()
	}
	return sellers, total, nil
}

// FindBuyerByUserID finds the buyer profile owned by a user
func (r *GormProfileRepository) FindBuyerByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*profile.BuyerProfile, error) {
	var model models.BuyerProfileModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpsertBuyer inserts the buyer profile or updates the descriptive fields of
// the one already stored for the same user
func (r *GormProfileRepository) UpsertBuyer(ctx context.Context, p *profile.BuyerProfile) error {
	model := models.BuyerProfileModelFromDomain(p)
	model.UpdatedAt = time.Now().UTC()

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: append(
				clause.AssignmentColumns(buyerUpsertColumns),
				clause.Assignment{Column: clause.Column{Name: "version"}, Value: gorm.Expr("buyer_profiles.version + 1")},
			),
		}).
		Create(model).Error; err != nil {
		return err
	}

	stored, err := r.FindBuyerByUserID(ctx, p.TenantID, p.UserID)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

// SaveBuyer persists an existing buyer profile with an optimistic version check
func (r *GormProfileRepository) SaveBuyer(ctx context.Context, p *profile.BuyerProfile) error {
	model := models.BuyerProfileModelFromDomain(p)
	result := r.db.WithContext(ctx).
		Model(&models.BuyerProfileModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", p.ID, p.TenantID, p.Version-1).
		Updates(map[string]any{
			"display_name":   model.DisplayName,
			"segment":        model.Segment,
			"country":        model.Country,
			"lifetime_value": model.LifetimeValue,
			"orders_count":   model.OrdersCount,
			"last_active_at": model.LastActiveAt,
			"churned_at":     model.ChurnedAt,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BuyerProfileModel{}).
		Where("id = ? AND tenant_id = ?", p.ID, p.TenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}

// ListBuyers returns buyer profiles for the tenant with pagination
func (r *GormProfileRepository) ListBuyers(ctx context.Context, tenantID uuid.UUID, filter profile.BuyerFilter) ([]*profile.BuyerProfile, int64, error) {
	var buyerModels []*models.BuyerProfileModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.BuyerProfileModel{}).Scopes(TenantScope(tenantID))
	if filter.Search != "" {
		query = query.Where("LOWER(display_name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	if filter.Segment != nil {
		query = query.Where("segment = ?", *filter.Segment)
	}
	if filter.Churned != nil {
		if *filter.Churned {
			query = query.Where("churned_at IS NOT NULL")
		} else {
			query = query.Where("churned_at IS NULL")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.
		Order(buyerSort.orderBy(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&buyerModels).Error; err != nil {
		return nil, 0, err
	}

	buyers := make([]*profile.BuyerProfile, len(buyerModels))
	for i, model := range buyerModels {
		buyers[i] = model.ToDomain()
	}
	return buyers, total, nil
}

// CountSellersMissingContact counts seller profiles with an empty contact name or email
func (r *GormProfileRepository) CountSellersMissingContact(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SellerProfileModel{}).
		Scopes(TenantScope(tenantID)).
		Where(missingContactCondition).
		Count(&count).Error
	return count, err
}

// BackfillSellerContact copies the owning user's name and email into empty
// contact fields in a single UPDATE
func (r *GormProfileRepository) BackfillSellerContact(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SellerProfileModel{}).
		Scopes(TenantScope(tenantID)).
		Where(missingContactCondition).
		Where("EXISTS (SELECT 1 FROM users WHERE users.id = seller_profiles.user_id)").
		Updates(map[string]any{
			"contact_name": gorm.Expr("CASE WHEN contact_name = '' THEN (" +
				"SELECT users.name FROM users WHERE users.id = seller_profiles.user_id) ELSE contact_name END"),
			"contact_email": gorm.Expr("CASE WHEN contact_email = '' THEN (" +
				"SELECT users.email FROM users WHERE users.id = seller_profiles.user_id) ELSE contact_email END"),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}
