package handlers

import (
	"net/http"

	"crosslist_backend/internal/middleware"
	"crosslist_backend/internal/models"
	"crosslist_backend/internal/repositories"
	"crosslist_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	*BaseHandler
	listingService services.ListingService
}

func NewListingHandler(base *BaseHandler, listingService services.ListingService) *ListingHandler {
	return &ListingHandler{
		BaseHandler:    base,
		listingService: listingService,
	}
}

func (h *ListingHandler) RegisterRoutes(r *gin.RouterGroup) {
	listings := r.Group("/listings")
	listings.Use(middleware.AuthMiddleware())
	{
		listings.GET("", h.ListListings)
		listings.POST("", h.CreateListing)
		listings.GET("/:listingId", h.GetListing)
		listings.PUT("/:listingId", h.UpdateListing)
		listings.DELETE("/:listingId", h.DeleteListing)
	}
}

func (h *ListingHandler) ListListings(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, limit := ParsePagination(c)
	filter := repositories.ListingFilter{
		SiteID: c.Query("site_id"),
		Status: models.ListingStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	}

	result, err := h.listingService.List(userID, filter)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req models.CreateListingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	listing, err := h.listingService.Create(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

func (h *ListingHandler) GetListing(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	listingID := c.Param("listingId")

	listing, err := h.listingService.GetByID(userID, listingID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) UpdateListing(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	listingID := c.Param("listingId")

	var req models.UpdateListingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	listing, err := h.listingService.Update(userID, listingID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) DeleteListing(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	listingID := c.Param("listingId")

	if err := h.listingService.Delete(userID, listingID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted successfully"})
}
