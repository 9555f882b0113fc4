package models

import (
	"time"

	"github.com/bizportal/backend/internal/domain/finance"
	"github.com/bizportal/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseRecordModel is the persistence model for the ExpenseRecord aggregate.
type ExpenseRecordModel struct {
	TenantAggregateModel
	Category    finance.ExpenseCategory `gorm:"type:varchar(20);not null;index"`
	Description string                  `gorm:"type:varchar(500)"`
	Amount      decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	Currency    string                  `gorm:"type:varchar(3);not null;default:'USD'"`
	IncurredAt  time.Time               `gorm:"not null;index"`
	SubmittedBy uuid.UUID               `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (ExpenseRecordModel) TableName() string {
	return "expense_records"
}

// ToDomain converts the persistence model to a domain ExpenseRecord.
func (m *ExpenseRecordModel) ToDomain() *finance.ExpenseRecord {
	return &finance.ExpenseRecord{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Category:            m.Category,
		Description:         m.Description,
		Amount:              m.Amount,
		Currency:            valueobject.Currency(m.Currency),
		IncurredAt:          m.IncurredAt.UTC(),
		SubmittedBy:         m.SubmittedBy,
	}
}

// ExpenseRecordModelFromDomain creates a persistence model from a domain ExpenseRecord.
func ExpenseRecordModelFromDomain(e *finance.ExpenseRecord) *ExpenseRecordModel {
	m := &ExpenseRecordModel{
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    string(e.Currency),
		IncurredAt:  e.IncurredAt.UTC(),
		SubmittedBy: e.SubmittedBy,
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	return m
}
