package servicerequest

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
	api.POST("/service-requests", h.Create)
	api.GET("/service-requests", h.List)
	api.GET("/service-requests/:id", h.Get)
	api.POST("/service-requests/:id/transition", h.Transition)
	api.POST("/service-requests/:id/quotes", h.CreateQuote)
	api.GET("/service-requests/:id/quotes", h.ListQuotes)
	api.POST("/quotes/:id/transition", h.TransitionQuote)
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

type createRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

func (h *Handler) Create(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}

	sr := &ServiceRequest{Title: req.Title, Category: req.Category}
	if err := h.svc.Create(c.Request().Context(), ident, sr); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, sr)
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
	sr, err := h.svc.Get(c.Request().Context(), ident, id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, sr)
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
	sr, err := h.svc.Transition(c.Request().Context(), ident, id, req.Status)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, sr)
}

type createQuoteRequest struct {
	ProviderID string `json:"provider_id"`
	Amount     int64  `json:"amount"`
	ValidUntil string `json:"valid_until"`
}

func (h *Handler) CreateQuote(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	requestID, err := pathID(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	var req createQuoteRequest
	if err := c.Bind(&req); err != nil {
		return apperr.JSON(c, apperr.Validation("invalid request body", "अनुरोध का मुख्य भाग मान्य नहीं है"))
	}

	q := &Quote{RequestID: requestID, Amount: req.Amount}
	if req.ProviderID != "" {
		pid, err := uuid.Parse(req.ProviderID)
		if err != nil {
			return apperr.JSON(c, apperr.Validation("invalid provider_id", "provider_id मान्य नहीं है"))
		}
		q.ProviderID = &pid
	}
	if req.ValidUntil != "" {
		until, err := time.Parse(time.RFC3339, req.ValidUntil)
		if err != nil {
			return apperr.JSON(c, apperr.Validation("valid_until must be RFC 3339", "valid_until RFC 3339 प्रारूप में होना चाहिए"))
		}
		q.ValidUntil = &until
	}

	if err := h.svc.CreateQuote(c.Request().Context(), ident, q); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, q)
}

func (h *Handler) TransitionQuote(c echo.Context) error {
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
	q, err := h.svc.TransitionQuote(c.Request().Context(), ident, id, req.Status)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *Handler) ListQuotes(c echo.Context) error {
	ident, err := h.ident(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	requestID, err := pathID(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	items, err := h.svc.ListQuotes(c.Request().Context(), ident, requestID)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, items)
}
