package payment

import (
	"net/http"

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
	api.POST("/payments", h.Create)
	api.GET("/payments", h.List)
	api.GET("/payments/:id", h.Get)
	api.POST("/payments/:id/transition", h.Transition)
}

type createPaymentRequest struct {
	Amount int64 `json:"amount"`
}

func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}
	var req createPaymentRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}

	p := &Payment{Amount: req.Amount}
	if err := h.svc.Create(ctx, ident, p); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.JSON(c, apperr.ErrNotFound)
	}
	p, err := h.svc.Get(ctx, ident, id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(ctx, ident, c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) Transition(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.JSON(c, apperr.ErrNotFound)
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}
	p, err := h.svc.Transition(ctx, ident, id, req.Status)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
