package audit

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
	api.GET("/audit-entries", h.ListEntries)
	api.GET("/audit-entries/:id", h.GetEntry)
	api.GET("/automation-runs", h.ListRuns)
}

// ListEntries returns the caller's organization's audit trail, or the trail
// of one resource when resource_type and resource_id are both given.
func (h *Handler) ListEntries(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}

	resourceType := c.QueryParam("resource_type")
	resourceID := c.QueryParam("resource_id")
	if resourceType != "" && resourceID != "" {
		rid, err := uuid.Parse(resourceID)
		if err != nil {
			return apperr.JSON(c, apperr.Validation("invalid resource_id", "resource_id मान्य नहीं है"))
		}
		items, err := h.svc.ListByResource(ctx, ident.OrganizationID, resourceType, rid)
		if err != nil {
			return apperr.JSON(c, err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, len(items), len(items), 0))
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByOrganization(ctx, ident.OrganizationID, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetEntry(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.JSON(c, apperr.ErrNotFound)
	}
	entry, err := h.svc.entries.GetByID(ctx, id)
	if err != nil {
		return apperr.JSON(c, apperr.ErrNotFound)
	}
	if err := auth.CheckRead(entry.OrganizationID, ident.OrganizationID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

// ListRuns is platform-admin only: run records span every tenant.
func (h *Handler) ListRuns(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.guard.RequirePlatformAdmin(ctx); err != nil {
		return apperr.JSON(c, err)
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRuns(ctx, c.QueryParam("rule"), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
