package equipment

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careops/careops/internal/platform/apperr"
	"github.com/careops/careops/internal/platform/auth"
	"github.com/careops/careops/pkg/pagination"
)

type Handler struct {
	svc   *Service
	guard *auth.Guard
}

func NewHandler(svc *Service, guard *auth.Guard) *Handler {
	return &Handler{svc: svc, guard: guard}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/equipment", h.Create)
	api.GET("/equipment", h.List)
	api.GET("/equipment/:id", h.Get)
	api.POST("/equipment/:id/transition", h.Transition)
	api.POST("/equipment/:id/failure-reports", h.ReportFailure)
	api.GET("/equipment/:id/failure-reports", h.ListFailures)
	api.POST("/equipment/:id/maintenance", h.ScheduleMaintenance)
	api.GET("/equipment/:id/maintenance", h.ListMaintenance)
	api.POST("/maintenance/:id/complete", h.CompleteMaintenance)
	api.POST("/supplies", h.CreateSupply)
	api.GET("/supplies", h.ListSupplies)
	api.POST("/supplies/:id/adjust", h.AdjustSupplyStock)
}

func (h *Handler) ident(c echo.Context) (*auth.Identity, error) {
	return h.guard.RequireOrgAuth(c.Request().Context())
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.ErrNotFound
	}
	return id, nil
}

type createEquipmentRequest struct {
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	Category     string `json:"category"`
	Criticality  string `json:"criticality"`
}

func (h *Handler) Create(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	var req createEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}

	e := &Equipment{Name: req.Name, SerialNumber: req.SerialNumber, Category: req.Category, Criticality: req.Criticality}
	if err := h.svc.Create(c.Request().Context(), ident, e); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) Get(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	e, err := h.svc.Get(c.Request().Context(), ident, id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) List(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), ident, c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) Transition(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}
	e, err := h.svc.Transition(c.Request().Context(), ident, id, req.Status)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

type failureReportRequest struct {
	Urgency     string `json:"urgency"`
	Description string `json:"description"`
}

func (h *Handler) ReportFailure(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	var req failureReportRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}

	fr := &FailureReport{EquipmentID: id, Urgency: req.Urgency, Description: req.Description}
	if err := h.svc.ReportFailure(c.Request().Context(), ident, fr); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, fr)
}

func (h *Handler) ListFailures(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	items, err := h.svc.ListFailures(c.Request().Context(), ident, id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

type scheduleMaintenanceRequest struct {
	ScheduledAt string `json:"scheduled_at"`
	Notes       string `json:"notes"`
}

func (h *Handler) ScheduleMaintenance(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	var req scheduleMaintenanceRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return apperr.JSON(c, apperr.Validation("scheduled_at must be RFC 3339", "scheduled_at RFC 3339 प्रारूप में होना चाहिए"))
	}

	m := &MaintenanceRecord{EquipmentID: id, ScheduledAt: at, Notes: req.Notes}
	if err := h.svc.ScheduleMaintenance(c.Request().Context(), ident, m); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) CompleteMaintenance(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	if err := h.svc.CompleteMaintenance(c.Request().Context(), ident, id); err != nil {
		return apperr.JSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListMaintenance(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	items, err := h.svc.ListMaintenance(c.Request().Context(), ident, id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

type createSupplyRequest struct {
	Name         string `json:"name"`
	CurrentStock int    `json:"current_stock"`
	ReorderPoint int    `json:"reorder_point"`
}

func (h *Handler) CreateSupply(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	var req createSupplyRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}

	item := &SupplyItem{Name: req.Name, CurrentStock: req.CurrentStock, ReorderPoint: req.ReorderPoint}
	if err := h.svc.CreateSupply(c.Request().Context(), ident, item); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) AdjustSupplyStock(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	var req adjustStockRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}
	item, err := h.svc.AdjustSupplyStock(c.Request().Context(), ident, id, req.Delta)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) ListSupplies(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListSupplies(c.Request().Context(), ident, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
