package handlers

import (
	"errors"
	"io"
	"net/http"

	"crosslist_backend/internal/middleware"
	"crosslist_backend/internal/models"
	"crosslist_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	*BaseHandler
	syncService services.SyncService
}

func NewSyncHandler(base *BaseHandler, syncService services.SyncService) *SyncHandler {
	return &SyncHandler{
		BaseHandler: base,
		syncService: syncService,
	}
}

func (h *SyncHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/sync", middleware.AuthMiddleware(), h.Sync)

	// The browser extension posts to its own path but the behavior is the
	// same sync call.
	r.POST("/extension/sync", middleware.AuthMiddleware(), h.Sync)
}

func (h *SyncHandler) Sync(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	// The request body is optional; an empty body means "sync everything".
	var req models.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.HandleServiceError(c, err)
		return
	}

	report, err := h.syncService.Sync(c.Request.Context(), userID, &req)
	if err != nil {
		// A free user already at the cap gets a regular response telling the
		// client syncing is pointless, not an error status.
		if errors.Is(err, services.ErrQuotaExhausted) {
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"message": "Listing limit reached. Upgrade to Pro for unlimited listings.",
				"canSync": false,
			})
			return
		}
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
