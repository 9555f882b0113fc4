package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appapproval "github.com/bizportal/backend/internal/application/approval"
	"github.com/bizportal/backend/internal/domain/approval"
)

// ApprovalHandler handles approval request HTTP requests
type ApprovalHandler struct {
	BaseHandler
	approvalService *appapproval.ApprovalService
}

// NewApprovalHandler creates a new approval handler
func NewApprovalHandler(approvalService *appapproval.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

// Submit handles POST /approvals
func (h *ApprovalHandler) Submit(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req SubmitApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	result, err := h.approvalService.Submit(c.Request.Context(), appapproval.SubmitInput{
		TenantID:    tenantID,
		Title:       req.Title,
		Kind:        approval.Kind(req.Kind),
		Amount:      amount,
		RequestedBy: uuid.MustParse(req.RequestedBy),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID handles GET /approvals/:id
func (h *ApprovalHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.approvalService.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List handles GET /approvals
func (h *ApprovalHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var q ListApprovalsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	filter := approval.Filter{Filter: toFilter(q.ListRequest)}
	if q.Status != "" {
		status := approval.Status(q.Status)
		filter.Status = &status
	}
	if q.Kind != "" {
		kind := approval.Kind(q.Kind)
		filter.Kind = &kind
	}
	if q.RequestedBy != "" {
		by := uuid.MustParse(q.RequestedBy)
		filter.RequestedBy = &by
	}

	result, err := h.approvalService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Approve handles POST /approvals/:id/approve
func (h *ApprovalHandler) Approve(c *gin.Context) {
	h.decide(c, h.approvalService.Approve)
}

// Reject handles POST /approvals/:id/reject
func (h *ApprovalHandler) Reject(c *gin.Context) {
	h.decide(c, h.approvalService.Reject)
}

// Cancel handles POST /approvals/:id/cancel
func (h *ApprovalHandler) Cancel(c *gin.Context) {
	h.decide(c, h.approvalService.Cancel)
}

func (h *ApprovalHandler) decide(c *gin.Context, fn func(context.Context, appapproval.DecisionInput) (*appapproval.RequestDTO, error)) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := fn(c.Request.Context(), appapproval.DecisionInput{
		TenantID:  tenantID,
		RequestID: id,
		ActorID:   uuid.MustParse(req.ActorID),
		Comment:   req.Comment,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
