package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appfinance "github.com/bizportal/backend/internal/application/finance"
	"github.com/bizportal/backend/internal/domain/finance"
)

// ExpenseHandler handles expense HTTP requests
type ExpenseHandler struct {
	BaseHandler
	expenseService *appfinance.ExpenseService
	now            func() time.Time
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseService *appfinance.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, now: time.Now}
}

// Record handles POST /expenses. incurred_at defaults to now.
func (h *ExpenseHandler) Record(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}
	incurredAt, err := timeOrNow(req.IncurredAt, h.now)
	if err != nil {
		h.BadRequest(c, "Invalid incurred_at: use RFC 3339 or YYYY-MM-DD")
		return
	}

	expense, err := h.expenseService.Record(c.Request.Context(), appfinance.RecordExpenseInput{
		TenantID:    tenantID,
		Category:    finance.ExpenseCategory(req.Category),
		Amount:      amount,
		Currency:    req.Currency,
		Description: req.Description,
		IncurredAt:  incurredAt,
		SubmittedBy: uuid.MustParse(req.SubmittedBy),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, expense)
}

// List handles GET /expenses. from is inclusive and to exclusive.
func (h *ExpenseHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var q ListExpensesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	filter := finance.ExpenseFilter{Filter: toFilter(q.ListRequest)}
	var err error
	if filter.From, err = parseTime(q.From); err != nil {
		h.BadRequest(c, "Invalid from date")
		return
	}
	if filter.To, err = parseTime(q.To); err != nil {
		h.BadRequest(c, "Invalid to date")
		return
	}
	if q.Category != "" {
		category := finance.ExpenseCategory(q.Category)
		filter.Category = &category
	}

	result, err := h.expenseService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
