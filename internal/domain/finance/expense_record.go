package finance

import (
	"strings"
	"time"

	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/bizportal/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCategory represents the category of an expense
type ExpenseCategory string

const (
	ExpenseCategoryTravel    ExpenseCategory = "travel"
	ExpenseCategorySoftware  ExpenseCategory = "software"
	ExpenseCategoryPayroll   ExpenseCategory = "payroll"
	ExpenseCategoryMarketing ExpenseCategory = "marketing"
	ExpenseCategoryOffice    ExpenseCategory = "office"
	ExpenseCategoryOther     ExpenseCategory = "other"
)

// AllExpenseCategories lists categories in display order
var AllExpenseCategories = []ExpenseCategory{
	ExpenseCategoryTravel,
	ExpenseCategorySoftware,
	ExpenseCategoryPayroll,
	ExpenseCategoryMarketing,
	ExpenseCategoryOffice,
	ExpenseCategoryOther,
}

// IsValid checks if the category is a valid ExpenseCategory
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryTravel, ExpenseCategorySoftware, ExpenseCategoryPayroll,
		ExpenseCategoryMarketing, ExpenseCategoryOffice, ExpenseCategoryOther:
		return true
	}
	return false
}

// String returns the string representation of ExpenseCategory
func (c ExpenseCategory) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the category
func (c ExpenseCategory) DisplayName() string {
	switch c {
	case ExpenseCategoryTravel:
		return "Travel"
	case ExpenseCategorySoftware:
		return "Software"
	case ExpenseCategoryPayroll:
		return "Payroll"
	case ExpenseCategoryMarketing:
		return "Marketing"
	case ExpenseCategoryOffice:
		return "Office"
	case ExpenseCategoryOther:
		return "Other"
	default:
		return string(c)
	}
}

// ExpenseRecord is a single tracked expense
type ExpenseRecord struct {
	shared.TenantAggregateRoot
	Category    ExpenseCategory
	Description string
	Amount      decimal.Decimal
	Currency    valueobject.Currency
	IncurredAt  time.Time
	SubmittedBy uuid.UUID
}

// NewExpenseRecord creates a new expense record
func NewExpenseRecord(
	tenantID uuid.UUID,
	category ExpenseCategory,
	amount valueobject.Money,
	description string,
	incurredAt time.Time,
	submittedBy uuid.UUID,
) (*ExpenseRecord, error) {
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Expense category is not valid")
	}
	if amount.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	description = strings.TrimSpace(description)
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if incurredAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Incurred date is required")
	}
	if submittedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Submitter user ID cannot be empty")
	}

	currency := amount.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	return &ExpenseRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Category:            category,
		Description:         description,
		Amount:              amount.Amount,
		Currency:            currency,
		IncurredAt:          incurredAt.UTC(),
		SubmittedBy:         submittedBy,
	}, nil
}

// Money returns the amount with its currency
func (e *ExpenseRecord) Money() valueobject.Money {
	return valueobject.NewMoney(e.Amount, e.Currency)
}
