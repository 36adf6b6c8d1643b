package handlers

import (
	"net/http"

	"crosslist_backend/internal/middleware"
	"crosslist_backend/internal/models"
	"crosslist_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ConnectionHandler struct {
	*BaseHandler
	connectionService services.ConnectionService
}

func NewConnectionHandler(base *BaseHandler, connectionService services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{
		BaseHandler:       base,
		connectionService: connectionService,
	}
}

func (h *ConnectionHandler) RegisterRoutes(r *gin.RouterGroup) {
	sites := r.Group("/sites")
	sites.Use(middleware.AuthMiddleware())
	{
		sites.GET("/available", h.GetAvailableSites)
		sites.GET("/connected", h.GetConnectedSites)
		sites.POST("/connect", h.ConnectSite)
		sites.DELETE("/:siteId/disconnect", h.DisconnectSite)
	}
}

func (h *ConnectionHandler) GetAvailableSites(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	sites, err := h.connectionService.ListAvailableSites()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sites": sites,
		"total": len(sites),
	})
}

func (h *ConnectionHandler) GetConnectedSites(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	connections, err := h.connectionService.ListConnectedSites(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connections": connections,
		"total":       len(connections),
	})
}

func (h *ConnectionHandler) ConnectSite(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req models.ConnectSiteRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	connection, err := h.connectionService.Connect(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, connection)
}

func (h *ConnectionHandler) DisconnectSite(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	siteID := c.Param("siteId")

	if err := h.connectionService.Disconnect(userID, siteID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Site disconnected successfully"})
}
