package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"crosslist_backend/internal/auth"
	"crosslist_backend/internal/config"
	"crosslist_backend/internal/services"
	"crosslist_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSubscriptionService struct {
	cancelCalls int
}

func (s *stubSubscriptionService) GetEffectivePlan(string) (*services.EffectivePlan, error) {
	return nil, nil
}

func (s *stubSubscriptionService) GetCurrentSubscription(string) (*services.SubscriptionStatusResponse, error) {
	return &services.SubscriptionStatusResponse{}, nil
}

func (s *stubSubscriptionService) GetUsage(string) (*services.UsageSummary, error) {
	return &services.UsageSummary{}, nil
}

func (s *stubSubscriptionService) CreateCheckoutSession(string) (string, error) {
	return "", nil
}

func (s *stubSubscriptionService) CancelSubscription(string) error {
	s.cancelCalls++
	return nil
}

func (s *stubSubscriptionService) ProcessWebhook([]byte, string) error {
	return nil
}

func (s *stubSubscriptionService) ApplyCheckoutCompleted(*stripe.CheckoutSession) error {
	return nil
}

func (s *stubSubscriptionService) ApplySubscriptionUpdated(*stripe.Subscription) error {
	return nil
}

func (s *stubSubscriptionService) ApplySubscriptionDeleted(*stripe.Subscription) error {
	return nil
}

func newSubscriptionRouter(service services.SubscriptionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewSubscriptionHandler(NewBaseHandler(validator.New()), service)
	api := router.Group("/api")
	handler.RegisterRoutes(api)
	return router
}

func TestCancelSubscriptionRoutedAsPost(t *testing.T) {
	config.AppConfig = &config.Config{}
	config.AppConfig.JWT.Secret = "test-secret"
	config.AppConfig.JWT.TTL = 60

	token, err := auth.GenerateToken("user-1")
	require.NoError(t, err)

	service := &stubSubscriptionService{}
	router := newSubscriptionRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/subscriptions/cancel", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, service.cancelCalls)

	// The old method must no longer resolve.
	req = httptest.NewRequest(http.MethodPut, "/api/subscriptions/cancel", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
