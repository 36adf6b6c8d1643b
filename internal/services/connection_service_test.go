package services

import (
	"testing"

	"crosslist_backend/internal/models"
	"crosslist_backend/internal/repositories"
	"crosslist_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newConnectionService(t *testing.T) (ConnectionService, *gorm.DB) {
	db := newTestDB(t)
	service := NewConnectionService(
		repositories.NewConnectionRepository(db),
		repositories.NewUserRepository(db),
	)
	return service, db
}

func TestConnectSite(t *testing.T) {
	service, db := newConnectionService(t)
	user := seedUser(t, db, models.PlanFree, 0)
	seedSite(t, db, "ebay", "eBay")

	conn, err := service.Connect(user.ID, &models.ConnectSiteRequest{
		SiteID:      "ebay",
		Credentials: map[string]any{"token": "abc"},
	})
	require.NoError(t, err)

	assert.True(t, conn.IsActive)
	assert.Equal(t, "eBay", conn.Site.Name)
	assert.NotEmpty(t, conn.Credentials)
}

func TestConnectUnknownSite(t *testing.T) {
	service, db := newConnectionService(t)
	user := seedUser(t, db, models.PlanFree, 0)

	_, err := service.Connect(user.ID, &models.ConnectSiteRequest{SiteID: "nope"})

	require.ErrorIs(t, err, apperrors.ErrSiteNotFound)
}

func TestConnectDisabledSite(t *testing.T) {
	service, db := newConnectionService(t)
	user := seedUser(t, db, models.PlanFree, 0)
	site := &models.Site{ID: "amazon", Name: "Amazon", Enabled: false}
	require.NoError(t, db.Create(site).Error)

	_, err := service.Connect(user.ID, &models.ConnectSiteRequest{SiteID: "amazon"})

	require.ErrorIs(t, err, apperrors.ErrSiteDisabled)
}

func TestDisconnectAndReconnect(t *testing.T) {
	service, db := newConnectionService(t)
	user := seedUser(t, db, models.PlanFree, 0)
	seedSite(t, db, "ebay", "eBay")

	first, err := service.Connect(user.ID, &models.ConnectSiteRequest{
		SiteID:      "ebay",
		Credentials: map[string]any{"token": "old"},
	})
	require.NoError(t, err)

	require.NoError(t, service.Disconnect(user.ID, "ebay"))

	var stored models.ConnectedSite
	require.NoError(t, db.First(&stored, "id = ?", first.ID).Error)
	assert.False(t, stored.IsActive)
	assert.Empty(t, stored.Credentials, "credentials are discarded on disconnect")

	// Reconnecting reuses the row instead of duplicating it.
	second, err := service.Connect(user.ID, &models.ConnectSiteRequest{
		SiteID:      "ebay",
		Credentials: map[string]any{"token": "new"},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.IsActive)

	var count int64
	require.NoError(t, db.Model(&models.ConnectedSite{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDisconnectUnknownConnection(t *testing.T) {
	service, db := newConnectionService(t)
	user := seedUser(t, db, models.PlanFree, 0)

	err := service.Disconnect(user.ID, "ebay")

	require.ErrorIs(t, err, apperrors.ErrConnectionNotFound)
}

func TestListConnectedSitesHidesCredentials(t *testing.T) {
	service, db := newConnectionService(t)
	user := seedUser(t, db, models.PlanFree, 0)
	seedSite(t, db, "ebay", "eBay")

	_, err := service.Connect(user.ID, &models.ConnectSiteRequest{
		SiteID:      "ebay",
		Credentials: map[string]any{"token": "secret"},
	})
	require.NoError(t, err)

	connections, err := service.ListConnectedSites(user.ID)
	require.NoError(t, err)

	require.Len(t, connections, 1)
	assert.True(t, connections[0].HasCredentials)
	assert.Equal(t, "eBay", connections[0].Site.Name)
}
