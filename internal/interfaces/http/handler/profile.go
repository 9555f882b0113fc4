package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appprofile "github.com/bizportal/backend/internal/application/profile"
	"github.com/bizportal/backend/internal/domain/profile"
)

// ProfileHandler handles seller and buyer profile HTTP requests
type ProfileHandler struct {
	BaseHandler
	profileService *appprofile.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *appprofile.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// UpsertSeller handles PUT /profiles/sellers/:userId
func (h *ProfileHandler) UpsertSeller(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "userId")
	if !ok {
		return
	}

	var req UpsertSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	seller, err := h.profileService.UpsertSeller(c.Request.Context(), appprofile.UpsertSellerInput{
		TenantID: tenantID,
		UserID:   userID,
		Details:  req.Details(),
		Verified: req.Verified,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, seller)
}

// GetSeller handles GET /profiles/sellers/:userId
func (h *ProfileHandler) GetSeller(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "userId")
	if !ok {
		return
	}

	seller, err := h.profileService.GetSeller(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, seller)
}

// ListSellers handles GET /profiles/sellers
func (h *ProfileHandler) ListSellers(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var q ListSellersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.profileService.ListSellers(c.Request.Context(), tenantID, profile.SellerFilter{
		Filter:   toFilter(q.ListRequest),
		Verified: q.Verified,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// UpsertBuyer handles PUT /profiles/buyers/:userId
func (h *ProfileHandler) UpsertBuyer(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "userId")
	if !ok {
		return
	}

	var req UpsertBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	buyer, err := h.profileService.UpsertBuyer(c.Request.Context(), appprofile.UpsertBuyerInput{
		TenantID:    tenantID,
		UserID:      userID,
		DisplayName: req.DisplayName,
		Segment:     profile.Segment(req.Segment),
		Country:     req.Country,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, buyer)
}

// GetBuyer handles GET /profiles/buyers/:userId
func (h *ProfileHandler) GetBuyer(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "userId")
	if !ok {
		return
	}

	buyer, err := h.profileService.GetBuyer(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, buyer)
}

// ListBuyers handles GET /profiles/buyers
func (h *ProfileHandler) ListBuyers(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var q ListBuyersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	filter := profile.BuyerFilter{Filter: toFilter(q.ListRequest), Churned: q.Churned}
	if q.Segment != "" {
		segment := profile.Segment(q.Segment)
		filter.Segment = &segment
	}

	result, err := h.profileService.ListBuyers(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// RecordOrder handles POST /profiles/buyers/:userId/orders
func (h *ProfileHandler) RecordOrder(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "userId")
	if !ok {
		return
	}

	var req RecordOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}
	at, ok := h.optionalTime(c, req.At, "at")
	if !ok {
		return
	}

	buyer, err := h.profileService.RecordBuyerOrder(c.Request.Context(), tenantID, userID, amount, at)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, buyer)
}

// MarkChurned handles POST /profiles/buyers/:userId/churn. The body is optional.
func (h *ProfileHandler) MarkChurned(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "userId")
	if !ok {
		return
	}

	var req MarkChurnedRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	at, ok := h.optionalTime(c, req.At, "at")
	if !ok {
		return
	}

	buyer, err := h.profileService.MarkBuyerChurned(c.Request.Context(), tenantID, userID, at)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, buyer)
}

// optionalTime parses s, returning the zero time when empty
func (h *BaseHandler) optionalTime(c *gin.Context, s, field string) (time.Time, bool) {
	t, err := parseTime(s)
	if err != nil {
		h.BadRequest(c, "Invalid "+field+": use RFC 3339 or YYYY-MM-DD")
		return time.Time{}, false
	}
	if t == nil {
		return time.Time{}, true
	}
	return *t, true
}
