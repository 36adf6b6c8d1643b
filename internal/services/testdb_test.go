package services

import (
	"testing"

	"crosslist_backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A uniquely named shared-cache memory db keeps the schema visible across
	// the pool's connections without leaking between tests.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Site{},
		&models.ConnectedSite{},
		&models.Listing{},
		&models.Subscription{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, plan models.PlanType, listingsCount int) *models.User {
	t.Helper()

	user := &models.User{
		Email:         uuid.NewString() + "@example.com",
		PasswordHash:  "x",
		PlanType:      plan,
		ListingsCount: listingsCount,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedSite(t *testing.T, db *gorm.DB, id, name string) *models.Site {
	t.Helper()

	site := &models.Site{ID: id, Name: name, URL: "https://" + id + ".example.com", Enabled: true}
	require.NoError(t, db.Create(site).Error)
	return site
}

func seedConnection(t *testing.T, db *gorm.DB, userID, siteID string) *models.ConnectedSite {
	t.Helper()

	conn := &models.ConnectedSite{UserID: userID, SiteID: siteID, IsActive: true}
	require.NoError(t, db.Create(conn).Error)
	return conn
}
