// Package finance records and lists tenant expenses.
package finance

import (
	"context"
	"time"

	"github.com/bizportal/backend/internal/domain/finance"
	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/bizportal/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ChangeNotifier is told when tenant data feeding dashboards changes
type ChangeNotifier func(ctx context.Context, tenantID uuid.UUID)

// ExpenseService handles expense tracking
type ExpenseService struct {
	repo            finance.ExpenseRepository
	defaultCurrency valueobject.Currency
	logger          *zap.Logger
	notify          ChangeNotifier
}

// NewExpenseService creates a new expense service. Expenses recorded without a
// currency use defaultCurrency.
func NewExpenseService(repo finance.ExpenseRepository, defaultCurrency valueobject.Currency, logger *zap.Logger, notify ChangeNotifier) *ExpenseService {
	if notify == nil {
		notify = func(context.Context, uuid.UUID) {}
	}
	if defaultCurrency == "" {
		defaultCurrency = valueobject.DefaultCurrency
	}
	return &ExpenseService{
		repo:            repo,
		defaultCurrency: defaultCurrency,
		logger:          logger,
		notify:          notify,
	}
}

// RecordExpenseInput contains input for recording an expense
type RecordExpenseInput struct {
	TenantID    uuid.UUID
	Category    finance.ExpenseCategory
	Amount      decimal.Decimal
	Currency    string
	Description string
	IncurredAt  time.Time
	SubmittedBy uuid.UUID
}

// ExpenseDTO is the API view of an expense record
type ExpenseDTO struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	IncurredAt  time.Time       `json:"incurred_at"`
	SubmittedBy uuid.UUID       `json:"submitted_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToExpenseDTO converts a domain expense record
func ToExpenseDTO(e *finance.ExpenseRecord) ExpenseDTO {
	return ExpenseDTO{
		ID:          e.ID,
		TenantID:    e.TenantID,
		Category:    string(e.Category),
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    string(e.Currency),
		IncurredAt:  e.IncurredAt,
		SubmittedBy: e.SubmittedBy,
		CreatedAt:   e.CreatedAt,
	}
}

// Record stores a new expense
func (s *ExpenseService) Record(ctx context.Context, input RecordExpenseInput) (*ExpenseDTO, error) {
	currency := s.defaultCurrency
	if input.Currency != "" {
		parsed, err := valueobject.ParseCurrency(input.Currency)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
		}
		currency = parsed
	}

	expense, err := finance.NewExpenseRecord(
		input.TenantID,
		input.Category,
		valueobject.NewMoney(input.Amount, currency),
		input.Description,
		input.IncurredAt,
		input.SubmittedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, expense); err != nil {
		s.logger.Error("Failed to record expense", zap.String("tenant_id", input.TenantID.String()), zap.Error(err))
		return nil, err
	}
	s.notify(ctx, input.TenantID)

	s.logger.Info("Expense recorded",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("expense_id", expense.ID.String()),
		zap.String("category", string(expense.Category)),
		zap.String("amount", expense.Amount.StringFixed(2)))

	dto := ToExpenseDTO(expense)
	return &dto, nil
}

// List returns a page of expenses
func (s *ExpenseService) List(ctx context.Context, tenantID uuid.UUID, filter finance.ExpenseFilter) (*shared.Paginated[ExpenseDTO], error) {
	items, total, err := s.repo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]ExpenseDTO, len(items))
	for i, e := range items {
		dtos[i] = ToExpenseDTO(e)
	}
	page := shared.NewPaginated(dtos, total, filter.Page, filter.Limit())
	return &page, nil
}
