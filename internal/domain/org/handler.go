package org

import (
	"context"
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
	api.POST("/orgs", h.CreateOrganization)
	api.GET("/orgs", h.ListOrganizations)
	api.GET("/orgs/:id", h.GetOrganization)
	api.POST("/orgs/:id/suspend", h.SuspendOrganization)
	api.POST("/orgs/:id/reactivate", h.ReactivateOrganization)

	api.GET("/members", h.ListMembers)
	api.POST("/members", h.AddMember)
	api.PATCH("/members/:userId/role", h.ChangeMemberRole)
	api.DELETE("/members/:userId", h.RemoveMember)
}

type createOrgRequest struct {
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

func (h *Handler) CreateOrganization(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequirePlatformAdmin(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}

	var req createOrgRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}

	o := &Organization{Name: req.Name, Slug: req.Slug, Type: req.Type, Status: req.Status}
	if err := h.svc.CreateOrganization(ctx, ident, o); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) ListOrganizations(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.guard.RequirePlatformAdmin(ctx); err != nil {
		return apperr.JSON(c, err)
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListOrganizations(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetOrganization(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.JSON(c, apperr.ErrNotFound)
	}
	// Members may read their own organization; anything else needs the
	// platform role.
	if id != ident.OrganizationID && !ident.IsPlatformAdmin() {
		return apperr.JSON(c, apperr.ErrNotFound)
	}
	o, err := h.svc.GetOrganization(ctx, id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) SuspendOrganization(c echo.Context) error {
	return h.orgStatusAction(c, h.svc.Suspend)
}

func (h *Handler) ReactivateOrganization(c echo.Context) error {
	return h.orgStatusAction(c, h.svc.Reactivate)
}

func (h *Handler) orgStatusAction(c echo.Context, fn func(ctx context.Context, actor *auth.Identity, id uuid.UUID) error) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequirePlatformAdmin(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.JSON(c, apperr.ErrNotFound)
	}
	if err := fn(ctx, ident, id); err != nil {
		return apperr.JSON(c, err)
	}
	o, err := h.svc.GetOrganization(ctx, id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

type addMemberRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *Handler) AddMember(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}

	var req addMemberRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}
	m, err := h.svc.AddMember(ctx, ident, req.Email, req.Name, req.Role)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) ChangeMemberRole(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return apperr.JSON(c, apperr.ErrNotFound)
	}
	var req changeRoleRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}
	if err := h.svc.ChangeMemberRole(ctx, ident, userID, req.Role); err != nil {
		return apperr.JSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RemoveMember(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return apperr.JSON(c, apperr.ErrNotFound)
	}
	if err := h.svc.RemoveMember(ctx, ident, userID); err != nil {
		return apperr.JSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListMembers(c echo.Context) error {
	ctx := c.Request().Context()
	ident, err := h.guard.RequireOrgAuth(ctx)
	if err != nil {
		return apperr.JSON(c, err)
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListMembers(ctx, ident.OrganizationID, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
