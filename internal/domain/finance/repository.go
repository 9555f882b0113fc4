package finance

import (
	"context"
	"time"

	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseFilter narrows expense listings. From is inclusive, To is exclusive.
type ExpenseFilter struct {
	shared.Filter

	From     *time.Time
	To       *time.Time
	Category *ExpenseCategory
}

// MonthlyTotal is the expense sum of one calendar month
type MonthlyTotal struct {
	Month time.Time // first day of month, UTC
	Total decimal.Decimal
}

// CategoryTotal is the expense sum of one category
type CategoryTotal struct {
	Category ExpenseCategory
	Total    decimal.Decimal
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	Create(ctx context.Context, expense *ExpenseRecord) error
	CreateBatch(ctx context.Context, expenses []*ExpenseRecord) error
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ExpenseFilter) ([]*ExpenseRecord, int64, error)

	// MonthlyTotals sums expenses per calendar month in [from, to)
	MonthlyTotals(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]MonthlyTotal, error)

	// CategoryTotals sums expenses per category in [from, to)
	CategoryTotals(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]CategoryTotal, error)
}

// MonthStart truncates t to the first instant of its month in UTC
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
