package transfer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paygate/internal/api/utils"
	apierrors "paygate/internal/errors"
	"paygate/internal/logger"
	"paygate/internal/store"
)

// Handler manages observed-transfer read endpoints. Transfers are written
// only by the registry's single-writer executor; reads go straight to the
// store, which guards itself for concurrent access (see store.Store).
type Handler struct {
	store store.Store
	log   logger.Logger
}

// NewHandler creates a new transfer handler instance.
func NewHandler(st store.Store, log logger.Logger) *Handler {
	return &Handler{store: st, log: log}
}

// SetupRoutes configures routes for transfer inspection.
func (h *Handler) SetupRoutes(router *gin.RouterGroup) {
	transfers := router.Group("/transactions")
	{
		transfers.GET("", h.ListTransfers)
		transfers.GET("/:id", h.GetTransfer)
	}
}

// GetTransfer handles GET /transactions/:id requests.
// @Summary Get an observed transfer
// @Tags transactions
// @Produce json
// @Param id path string true "Transfer ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.AppError "Transfer not found"
// @Router /transactions/{id} [get]
func (h *Handler) GetTransfer(c *gin.Context) {
	id := c.Param("id")

	t, err := h.store.GetTransfer(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToResponse(t))
}

// ListTransfers handles GET /transactions requests.
// @Summary List observed transfers
// @Tags transactions
// @Produce json
// @Param network query string false "Network filter"
// @Param sessionId query string false "Session ID filter"
// @Param status query string false "Status filter"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Items per page (default 10, max 100)"
// @Success 200 {object} utils.PagedResponse[Response]
// @Router /transactions [get]
func (h *Handler) ListTransfers(c *gin.Context) {
	var req ListTransfersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Error("failed to bind ListTransfersRequest", logger.Error(err))
		c.Error(apierrors.NewValidationError(map[string]any{"query": "invalid query parameters"}))
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	page, err := h.store.ListTransfers(c.Request.Context(), toFilter(req), req.Page, req.Limit)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, utils.NewPagedResponse(page, ToResponse))
}
