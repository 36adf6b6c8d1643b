package handlers

import (
	"io"
	"net/http"

	"crosslist_backend/internal/middleware"
	"crosslist_backend/internal/services"
	"crosslist_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	*BaseHandler
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(base *BaseHandler, subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup) {
	subscriptions := r.Group("/subscriptions")
	subscriptions.Use(middleware.AuthMiddleware())
	{
		subscriptions.GET("/my", h.GetMySubscription)
		subscriptions.GET("/usage", h.GetUsage)
		subscriptions.POST("/cancel", h.CancelSubscription)
	}

	billing := r.Group("/billing")
	{
		billing.POST("/checkout", middleware.AuthMiddleware(), h.CreateCheckout)
		billing.POST("/webhook", h.StripeWebhook) // No auth - signed by Stripe
	}
}

func (h *SubscriptionHandler) GetMySubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	status, err := h.subscriptionService.GetCurrentSubscription(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *SubscriptionHandler) GetUsage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	usage, err := h.subscriptionService.GetUsage(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, usage)
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.subscriptionService.CancelSubscription(userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscription will be canceled at the end of the billing period"})
}

func (h *SubscriptionHandler) CreateCheckout(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	url, err := h.subscriptionService.CreateCheckoutSession(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *SubscriptionHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 65536))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Failed to read webhook payload"))
		return
	}

	if err := h.subscriptionService.ProcessWebhook(payload, c.GetHeader("Stripe-Signature")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
