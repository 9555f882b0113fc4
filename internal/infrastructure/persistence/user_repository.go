package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bizportal/backend/internal/domain/identity"
	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/bizportal/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: tx}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "email"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("EMAIL_EXISTS", "A user with this email already exists")
	}
	return nil
}

// Update saves user if the stored version is user.Version-1
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", user.ID, user.TenantID, user.Version-1).
		Updates(map[string]any{
			"name":          model.Name,
			"role":          model.Role,
			"password_hash": model.PasswordHash,
			"status":        model.Status,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrConflict(ctx, user.TenantID, user.ID)
	}
	return nil
}

func (r *GormUserRepository) missingOrConflict(ctx context.Context, tenantID, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Scopes(TenantScope(tenantID)).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}

// FindByID finds a user by ID within the tenant
func (r *GormUserRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by email within the tenant
func (r *GormUserRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*identity.User, error) {
	email = identity.NormalizeEmail(email)
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("email = ?", email).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns users for the tenant with pagination
func (r *GormUserRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter identity.UserFilter) ([]*identity.User, int64, error) {
	var userModels []*models.UserModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.UserModel{}).Scopes(TenantScope(tenantID))
	if filter.Search != "" {
		keyword := "%" + filter.Search + "%"
		query = query.Where("(LOWER(name) LIKE LOWER(?) OR email LIKE LOWER(?))", keyword, keyword)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order(userSort.orderBy(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&userModels).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*identity.User, len(userModels))
	for i, model := range userModels {
		users[i] = model.ToDomain()
	}
	return users, total, nil
}

// UpsertByEmail inserts the user or updates name and role (and status when
// updateStatus is set) of the row with the same (tenant, email). The password
// of an existing user is kept.
func (r *GormUserRepository) UpsertByEmail(ctx context.Context, user *identity.User, updateStatus bool) error {
	model := models.UserModelFromDomain(user)
	model.UpdatedAt = time.Now().UTC()

	columns := []string{"name", "role", "updated_at"}
	if updateStatus {
		columns = append(columns, "status")
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "email"}},
			DoUpdates: append(
				clause.AssignmentColumns(columns),
				clause.Assignment{Column: clause.Column{Name: "version"}, Value: gorm.Expr("users.version + 1")},
			),
		}).
		Create(model).Error; err != nil {
		return err
	}

	stored, err := r.FindByEmail(ctx, user.TenantID, user.Email)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

// UpdateStatusWhere moves every user with the given role from one status to another
func (r *GormUserRepository) UpdateStatusWhere(ctx context.Context, tenantID uuid.UUID, from, to identity.UserStatus, role identity.Role) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Scopes(TenantScope(tenantID)).
		Where("status = ? AND role = ?", from, role).
		Updates(map[string]any{
			"status":     to,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// Count returns the total number of users for the tenant
func (r *GormUserRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Scopes(TenantScope(tenantID)).
		Count(&count).Error
	return count, err
}
