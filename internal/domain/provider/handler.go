package provider

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
	api.POST("/providers", h.Create)
	api.GET("/providers", h.List)
	api.GET("/providers/:id", h.Get)
	api.PUT("/providers/:id", h.Update)
	api.POST("/providers/:id/certifications", h.AddCertification)
	api.GET("/providers/:id/certifications", h.ListCertifications)
	api.DELETE("/certifications/:id", h.RemoveCertification)
}

type accountRequest struct {
	CompanyName       string   `json:"company_name"`
	ServiceCategories []string `json:"service_categories"`
}

func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}
	var req accountRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}

	a := &Account{CompanyName: req.CompanyName, ServiceCategories: req.ServiceCategories}
	if err := h.svc.Create(ctx, ident, a); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, a)
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
	a, err := h.svc.Get(ctx, ident, id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(ctx, ident, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.JSON(c, apperr.ErrNotFound)
	}
	var req accountRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}
	a, err := h.svc.Update(ctx, ident, id, req.CompanyName, req.ServiceCategories)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

type certificationRequest struct {
	Name      string `json:"name"`
	ExpiresAt string `json:"expires_at"`
}

func (h *Handler) AddCertification(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.JSON(c, apperr.ErrNotFound)
	}
	var req certificationRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}

	cert := &Certification{ProviderID: providerID, Name: req.Name}
	if req.ExpiresAt != "" {
		at, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return apperr.JSON(c, apperr.Validation("expires_at must be RFC 3339", "expires_at RFC 3339 प्रारूप में होना चाहिए"))
		}
		cert.ExpiresAt = &at
	}

	if err := h.svc.AddCertification(ctx, ident, cert); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, cert)
}

func (h *Handler) RemoveCertification(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.JSON(c, apperr.ErrNotFound)
	}
	if err := h.svc.RemoveCertification(ctx, ident, id); err != nil {
		return apperr.JSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListCertifications(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.JSON(c, apperr.ErrNotFound)
	}
	items, err := h.svc.ListCertifications(ctx, ident, providerID)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, items)
}
