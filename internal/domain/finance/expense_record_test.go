package finance

import (
	"testing"
	"time"

	"github.com/bizportal/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExpenseRecord(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	at := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	amount := valueobject.NewMoney(decimal.RequireFromString("129.99"), "")

	t.Run("creates record with default currency", func(t *testing.T) {
		rec, err := NewExpenseRecord(tenantID, ExpenseCategorySoftware, amount, " IDE licence ", at, userID)

		require.NoError(t, err)
		assert.Equal(t, tenantID, rec.TenantID)
		assert.Equal(t, "IDE licence", rec.Description)
		assert.Equal(t, valueobject.DefaultCurrency, rec.Currency)
		assert.True(t, rec.Amount.Equal(decimal.RequireFromString("129.99")))
		assert.Equal(t, at, rec.IncurredAt)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewExpenseRecord(tenantID, ExpenseCategoryTravel, valueobject.NewMoney(decimal.Zero, "USD"), "taxi", at, userID)
		assert.Error(t, err)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		_, err := NewExpenseRecord(tenantID, ExpenseCategory("RENT"), amount, "rent", at, userID)
		assert.Error(t, err)
	})

	t.Run("rejects missing submitter", func(t *testing.T) {
		_, err := NewExpenseRecord(tenantID, ExpenseCategoryOffice, amount, "paper", at, uuid.Nil)
		assert.Error(t, err)
	})

	t.Run("rejects zero date", func(t *testing.T) {
		_, err := NewExpenseRecord(tenantID, ExpenseCategoryOffice, amount, "paper", time.Time{}, userID)
		assert.Error(t, err)
	})
}

func TestMonthStart(t *testing.T) {
	in := time.Date(2024, 2, 29, 23, 59, 0, 0, time.FixedZone("X", -3*3600))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), MonthStart(in))
}
