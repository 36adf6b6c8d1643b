package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crosslist_backend/internal/models"
	"crosslist_backend/internal/services"
	"crosslist_backend/internal/validator"
	"crosslist_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSyncService struct {
	report *models.SyncReport
	err    error
}

func (s *stubSyncService) Sync(_ context.Context, _ string, _ *models.SyncRequest) (*models.SyncReport, error) {
	return s.report, s.err
}

func newSyncRouter(service services.SyncService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Inject the user directly instead of going through the JWT middleware.
	router.Use(func(c *gin.Context) {
		c.Set("userID", "user-1")
	})

	handler := NewSyncHandler(NewBaseHandler(validator.New()), service)
	router.POST("/sync", handler.Sync)
	return router
}

func postSync(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSyncEndpointReturnsReport(t *testing.T) {
	report := &models.SyncReport{
		Success: true,
		Message: "Sync completed",
		Results: []models.SiteSyncResult{
			{SiteID: "ebay", SiteName: "eBay", Success: true, ListingsAdded: 2},
		},
		TotalNewListings: 2,
		Timestamp:        time.Now(),
	}
	router := newSyncRouter(&stubSyncService{report: report})

	rec := postSync(router, `{"platformId":"ebay"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body models.SyncReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.TotalNewListings)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "ebay", body.Results[0].SiteID)
}

func TestSyncEndpointQuotaExhausted(t *testing.T) {
	router := newSyncRouter(&stubSyncService{err: services.ErrQuotaExhausted})

	rec := postSync(router, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, false, body["canSync"])
	assert.NotEmpty(t, body["message"])
}

func TestSyncEndpointNoActiveConnections(t *testing.T) {
	router := newSyncRouter(&stubSyncService{err: apperrors.ErrNoActiveConnections})

	rec := postSync(router, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncEndpointEmptyBodyAllowed(t *testing.T) {
	report := &models.SyncReport{Success: true, Results: []models.SiteSyncResult{}, Timestamp: time.Now()}
	router := newSyncRouter(&stubSyncService{report: report})

	rec := postSync(router, "")

	assert.Equal(t, http.StatusOK, rec.Code)
}
