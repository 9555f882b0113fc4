package handler

import (
	"github.com/gin-gonic/gin"

	appdashboard "github.com/bizportal/backend/internal/application/dashboard"
)

// DashboardHandler serves tenant dashboards and their exports
type DashboardHandler struct {
	BaseHandler
	dashboardService *appdashboard.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *appdashboard.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get handles GET /dashboards/:name
func (h *DashboardHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	d, err := h.dashboardService.Get(c.Request.Context(), tenantID, c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, d)
}

// Export handles POST /dashboards/:name/exports?format=csv|json
func (h *DashboardHandler) Export(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	result, err := h.dashboardService.Export(c.Request.Context(), tenantID, c.Param("name"), c.Query("format"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}
