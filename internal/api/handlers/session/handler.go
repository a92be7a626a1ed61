package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paygate/internal/api/utils"
	apierrors "paygate/internal/errors"
	"paygate/internal/core/registry"
	"paygate/internal/logger"
)

// Handler manages payment-session API endpoints.
type Handler struct {
	registry *registry.Registry
	log      logger.Logger
}

// NewHandler creates a new session handler instance.
func NewHandler(reg *registry.Registry, log logger.Logger) *Handler {
	return &Handler{registry: reg, log: log}
}

// SetupRoutes configures routes for payment-session management.
func (h *Handler) SetupRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/payment-sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("", h.ListSessions)
		sessions.GET("/:id", h.GetSession)
		sessions.POST("/:id/recreate", h.RecreateSession)
	}
}

// CreateSession handles POST /payment-sessions requests.
// @Summary Create a payment session
// @Description Create a time-bounded payment session against a single recipient address
// @Tags payment-sessions
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest true "Session creation parameters"
// @Success 200 {object} Response
// @Failure 400 {object} errors.AppError "Invalid request"
// @Router /payment-sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("failed to bind CreateSessionRequest", logger.Error(err))
		c.Error(apierrors.NewValidationError(map[string]any{"request": "invalid request format"}))
		return
	}

	session, err := h.registry.CreateSession(c.Request.Context(), toInput(req))
	if err != nil {
		h.log.Error("failed to create session", logger.Error(err), logger.Network(req.Network))
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToResponse(session))
}

// GetSession handles GET /payment-sessions/:id requests.
// @Summary Get a payment session
// @Tags payment-sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.AppError "Session not found"
// @Router /payment-sessions/{id} [get]
func (h *Handler) GetSession(c *gin.Context) {
	id := c.Param("id")

	session, err := h.registry.GetSession(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToResponse(session))
}

// ListSessions handles GET /payment-sessions requests.
// @Summary List payment sessions
// @Tags payment-sessions
// @Produce json
// @Param status query string false "Session status filter"
// @Param network query string false "Network filter"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Items per page (default 10, max 100)"
// @Success 200 {object} utils.PagedResponse[Response]
// @Router /payment-sessions [get]
func (h *Handler) ListSessions(c *gin.Context) {
	var req ListSessionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Error("failed to bind ListSessionsRequest", logger.Error(err))
		c.Error(apierrors.NewValidationError(map[string]any{"query": "invalid query parameters"}))
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	filter, err := toFilter(req)
	if err != nil {
		c.Error(apierrors.NewInvalidParameterError("fromDate/toDate", "must be RFC3339"))
		return
	}

	page, err := h.registry.ListSessions(c.Request.Context(), filter, req.Page, req.Limit)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, utils.NewPagedResponse(page, ToResponse))
}

// RecreateSession handles POST /payment-sessions/:id/recreate requests.
// @Summary Recreate an expired payment session
// @Tags payment-sessions
// @Produce json
// @Param id path string true "Original session ID"
// @Success 200 {object} Response
// @Failure 400 {object} errors.AppError "Session is not EXPIRED"
// @Failure 404 {object} errors.AppError "Session not found"
// @Router /payment-sessions/{id}/recreate [post]
func (h *Handler) RecreateSession(c *gin.Context) {
	id := c.Param("id")

	session, err := h.registry.RecreateSession(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToResponse(session))
}
