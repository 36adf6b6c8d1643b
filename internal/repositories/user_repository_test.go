package repositories

import (
	"sync"
	"testing"

	"crosslist_backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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

func newUser(t *testing.T, repo UserRepository, count int) *models.User {
	t.Helper()
	user := &models.User{
		Email:         uuid.NewString() + "@example.com",
		PasswordHash:  "x",
		PlanType:      models.PlanFree,
		ListingsCount: count,
	}
	require.NoError(t, repo.Create(user))
	return user
}

func TestReserveListingSlotsFullGrant(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	user := newUser(t, repo, 0)

	granted, err := repo.ReserveListingSlots(user.ID, 5, models.FreePlanListingLimit)
	require.NoError(t, err)
	assert.Equal(t, 5, granted)

	fresh, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.ListingsCount)
}

func TestReserveListingSlotsPartialGrant(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	user := newUser(t, repo, 23)

	granted, err := repo.ReserveListingSlots(user.ID, 5, models.FreePlanListingLimit)
	require.NoError(t, err)
	assert.Equal(t, 2, granted)

	fresh, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FreePlanListingLimit, fresh.ListingsCount)
}

func TestReserveListingSlotsRejectedAtCap(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	user := newUser(t, repo, models.FreePlanListingLimit)

	granted, err := repo.ReserveListingSlots(user.ID, 3, models.FreePlanListingLimit)
	require.NoError(t, err)
	assert.Zero(t, granted)

	fresh, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FreePlanListingLimit, fresh.ListingsCount)
}

func TestReserveListingSlotsUnlimited(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	user := newUser(t, repo, 1000)

	granted, err := repo.ReserveListingSlots(user.ID, 50, models.QuotaUnlimited)
	require.NoError(t, err)
	assert.Equal(t, 50, granted)

	fresh, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1050, fresh.ListingsCount)
}

func TestReleaseListingSlotsFloorsAtZero(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	user := newUser(t, repo, 2)

	require.NoError(t, repo.ReleaseListingSlots(user.ID, 5))

	fresh, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Zero(t, fresh.ListingsCount)
}

func TestReserveListingSlotsConcurrentNoOvershoot(t *testing.T) {
	db := newTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection forces the goroutines' reads and conditional updates to
	// interleave instead of erroring on sqlite's table locks.
	sqlDB.SetMaxOpenConns(1)

	repo := NewUserRepository(db)
	user := newUser(t, repo, 0)

	const workers = 5
	granted := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := repo.ReserveListingSlots(user.ID, 10, models.FreePlanListingLimit)
			assert.NoError(t, err)
			granted[i] = n
		}(i)
	}
	wg.Wait()

	total := 0
	for _, n := range granted {
		total += n
	}
	assert.LessOrEqual(t, total, models.FreePlanListingLimit)

	fresh, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, total, fresh.ListingsCount)
	assert.LessOrEqual(t, fresh.ListingsCount, models.FreePlanListingLimit)
}

func TestEnsureUserDistinctLazyUsers(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	first, err := repo.EnsureUser("lazy-user-1", "")
	require.NoError(t, err)

	second, err := repo.EnsureUser("lazy-user-2", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Email, second.Email)
	assert.Equal(t, models.PlanFree, second.PlanType)
}

func TestEnsureUserIdempotent(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	first, err := repo.EnsureUser("user-1", "u@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, first.PlanType)

	require.NoError(t, repo.UpdatePlan("user-1", models.PlanPro))

	// A second ensure must not reset the existing row.
	second, err := repo.EnsureUser("user-1", "u@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, second.PlanType)
}
