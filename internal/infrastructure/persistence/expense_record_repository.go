package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/bizportal/backend/internal/domain/finance"
	"github.com/bizportal/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const insertBatchSize = 200

// GormExpenseRecordRepository implements finance.ExpenseRepository using GORM
type GormExpenseRecordRepository struct {
	db *gorm.DB
}

// NewGormExpenseRecordRepository creates a new GormExpenseRecordRepository
func NewGormExpenseRecordRepository(db *gorm.DB) *GormExpenseRecordRepository {
	return &GormExpenseRecordRepository{db: db}
}

// Create creates a new expense record
func (r *GormExpenseRecordRepository) Create(ctx context.Context, expense *finance.ExpenseRecord) error {
	return r.db.WithContext(ctx).Create(models.ExpenseRecordModelFromDomain(expense)).Error
}

// CreateBatch inserts expense records in chunks
func (r *GormExpenseRecordRepository) CreateBatch(ctx context.Context, expenses []*finance.ExpenseRecord) error {
	if len(expenses) == 0 {
		return nil
	}
	rows := make([]*models.ExpenseRecordModel, len(expenses))
	for i, e := range expenses {
		rows[i] = models.ExpenseRecordModelFromDomain(e)
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error
}

// FindAll returns expense records for the tenant with pagination
func (r *GormExpenseRecordRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.ExpenseFilter) ([]*finance.ExpenseRecord, int64, error) {
	var expenseModels []*models.ExpenseRecordModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ExpenseRecordModel{}).Scopes(TenantScope(tenantID))
	if filter.From != nil {
		query = query.Where("incurred_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("incurred_at < ?", filter.To.UTC())
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(description) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.
		Order(expenseSort.orderBy(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&expenseModels).Error; err != nil {
		return nil, 0, err
	}

	expenses := make([]*finance.ExpenseRecord, len(expenseModels))
	for i, model := range expenseModels {
		expenses[i] = model.ToDomain()
	}
	return expenses, total, nil
}

// MonthlyTotals sums expenses per calendar month in [from, to). Months without
// expenses are omitted. Bucketing happens in Go so the query stays portable
// between PostgreSQL and SQLite date functions.
func (r *GormExpenseRecordRepository) MonthlyTotals(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]finance.MonthlyTotal, error) {
	var rows []struct {
		IncurredAt time.Time
		Amount     decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ExpenseRecordModel{}).
		Scopes(TenantScope(tenantID)).
		Select("incurred_at, amount").
		Where("incurred_at >= ? AND incurred_at < ?", from.UTC(), to.UTC()).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	sums := make(map[time.Time]decimal.Decimal)
	for _, row := range rows {
		month := finance.MonthStart(row.IncurredAt)
		sums[month] = sums[month].Add(row.Amount)
	}

	totals := make([]finance.MonthlyTotal, 0, len(sums))
	for month, total := range sums {
		totals = append(totals, finance.MonthlyTotal{Month: month, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Month.Before(totals[j].Month) })
	return totals, nil
}

// CategoryTotals sums expenses per category in [from, to)
func (r *GormExpenseRecordRepository) CategoryTotals(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]finance.CategoryTotal, error) {
	var rows []struct {
		Category finance.ExpenseCategory
		Total    decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ExpenseRecordModel{}).
		Scopes(TenantScope(tenantID)).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Where("incurred_at >= ? AND incurred_at < ?", from.UTC(), to.UTC()).
		Group("category").
		Order("category ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make([]finance.CategoryTotal, len(rows))
	for i, row := range rows {
		totals[i] = finance.CategoryTotal{Category: row.Category, Total: row.Total.Round(2)}
	}
	return totals, nil
}
