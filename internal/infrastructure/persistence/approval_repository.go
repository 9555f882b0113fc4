package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bizportal/backend/internal/domain/approval"
	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/bizportal/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormApprovalRepository implements approval.Repository using GORM
type GormApprovalRepository struct {
	db *gorm.DB
}

// NewGormApprovalRepository creates a new GormApprovalRepository
func NewGormApprovalRepository(db *gorm.DB) *GormApprovalRepository {
	return &GormApprovalRepository{db: db}
}

// Create creates a new approval request
func (r *GormApprovalRepository) Create(ctx context.Context, req *approval.Request) error {
	return r.db.WithContext(ctx).Create(models.ApprovalRequestModelFromDomain(req)).Error
}

// CreateBatch inserts approval requests in chunks
func (r *GormApprovalRepository) CreateBatch(ctx context.Context, reqs []*approval.Request) error {
	if len(reqs) == 0 {
		return nil
	}
	rows := make([]*models.ApprovalRequestModel, len(reqs))
	for i, req := range reqs {
		rows[i] = models.ApprovalRequestModelFromDomain(req)
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error
}

// Update saves a decided request if nobody else changed it first
func (r *GormApprovalRepository) Update(ctx context.Context, req *approval.Request) error {
	model := models.ApprovalRequestModelFromDomain(req)
	result := r.db.WithContext(ctx).
		Model(&models.ApprovalRequestModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", req.ID, req.TenantID, req.Version-1).
		Updates(map[string]any{
			"status":     model.Status,
			"decided_by": model.DecidedBy,
			"decided_at": model.DecidedAt,
			"comment":    model.Comment,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ApprovalRequestModel{}).
		Where("id = ? AND tenant_id = ?", req.ID, req.TenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}

// FindByID finds an approval request by ID within the tenant
func (r *GormApprovalRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*approval.Request, error) {
	var model models.ApprovalRequestModel
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

// FindAll returns approval requests for the tenant with pagination
func (r *GormApprovalRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter approval.Filter) ([]*approval.Request, int64, error) {
	var requestModels []*models.ApprovalRequestModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ApprovalRequestModel{}).Scopes(TenantScope(tenantID))
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.RequestedBy != nil {
		query = query.Where("requested_by = ?", *filter.RequestedBy)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.
		Order(approvalSort.orderBy(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&requestModels).Error; err != nil {
		return nil, 0, err
	}

	requests := make([]*approval.Request, len(requestModels))
	for i, model := range requestModels {
		requests[i] = model.ToDomain()
	}
	return requests, total, nil
}

// StatusCounts returns the number of requests per status. Every status is
// present in the result, zero when unused.
func (r *GormApprovalRepository) StatusCounts(ctx context.Context, tenantID uuid.UUID) (map[approval.Status]int64, error) {
	var rows []struct {
		Status approval.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ApprovalRequestModel{}).
		Scopes(TenantScope(tenantID)).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[approval.Status]int64, len(approval.AllStatuses))
	for _, s := range approval.AllStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// DecidedSince returns requests decided at or after since, oldest decision first
func (r *GormApprovalRepository) DecidedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]*approval.Request, error) {
	var requestModels []*models.ApprovalRequestModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("decided_at IS NOT NULL AND decided_at >= ?", since.UTC()).
		Order("decided_at ASC").
		Find(&requestModels).Error; err != nil {
		return nil, err
	}

	requests := make([]*approval.Request, len(requestModels))
	for i, model := range requestModels {
		requests[i] = model.ToDomain()
	}
	return requests, nil
}
