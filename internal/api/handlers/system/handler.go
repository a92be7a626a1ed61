package system

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"paygate/internal/core/watcher"
	"paygate/internal/logger"
)

// Handler exposes system-level diagnostics: one watcher per configured,
// active network.
type Handler struct {
	watchers map[string]*watcher.ChainWatcher
	log      logger.Logger
}

// NewHandler creates a new system handler instance over the given set of
// running chain watchers, keyed by network id.
func NewHandler(watchers map[string]*watcher.ChainWatcher, log logger.Logger) *Handler {
	return &Handler{watchers: watchers, log: log}
}

// SetupRoutes configures routes for system diagnostics.
func (h *Handler) SetupRoutes(router *gin.RouterGroup) {
	system := router.Group("/system")
	{
		system.GET("/network-status", h.NetworkStatus)
	}
}

// NetworkStatus handles GET /system/network-status requests.
// @Summary Report per-chain watcher status
// @Tags system
// @Produce json
// @Success 200 {array} NetworkStatusResponse
// @Router /system/network-status [get]
func (h *Handler) NetworkStatus(c *gin.Context) {
	responses := make([]NetworkStatusResponse, 0, len(h.watchers))
	for _, w := range h.watchers {
		responses = append(responses, toResponse(w.Status()))
	}
	sort.Slice(responses, func(i, j int) bool { return responses[i].ID < responses[j].ID })

	c.JSON(http.StatusOK, responses)
}
