package services

import (
	"testing"
	"time"

	"crosslist_backend/internal/config"
	"crosslist_backend/internal/models"
	"crosslist_backend/internal/repositories"
	"crosslist_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"
)

type subscriptionFixture struct {
	db       *gorm.DB
	service  SubscriptionService
	userRepo repositories.UserRepository
	subRepo  repositories.SubscriptionRepository
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	db := newTestDB(t)
	userRepo := repositories.NewUserRepository(db)
	subRepo := repositories.NewSubscriptionRepository(db)
	return &subscriptionFixture{
		db:       db,
		service:  NewSubscriptionService(subRepo, userRepo),
		userRepo: userRepo,
		subRepo:  subRepo,
	}
}

func checkoutSession(userID, customerID, subscriptionID string, periodEnd time.Time) *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		Customer: &stripe.Customer{ID: customerID},
		Subscription: &stripe.Subscription{
			ID:               subscriptionID,
			CurrentPeriodEnd: periodEnd.Unix(),
		},
		Metadata: map[string]string{"userId": userID},
	}
}

func TestApplyCheckoutCompletedUpgradesUser(t *testing.T) {
	f := newSubscriptionFixture(t)
	user := seedUser(t, f.db, models.PlanFree, 0)
	periodEnd := time.Now().Add(30 * 24 * time.Hour)

	err := f.service.ApplyCheckoutCompleted(checkoutSession(user.ID, "cus_1", "sub_1", periodEnd))
	require.NoError(t, err)

	fresh, err := f.userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, fresh.PlanType)
	require.NotNil(t, fresh.StripeCustomerID)
	assert.Equal(t, "cus_1", *fresh.StripeCustomerID)

	sub, err := f.subRepo.FindActiveByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, models.PlanPro, sub.PlanType)
	assert.Equal(t, "sub_1", sub.StripeSubscriptionID)
}

func TestApplyCheckoutCompletedReplayIsNoop(t *testing.T) {
	f := newSubscriptionFixture(t)
	user := seedUser(t, f.db, models.PlanFree, 0)
	sess := checkoutSession(user.ID, "cus_1", "sub_1", time.Now().Add(24*time.Hour))

	require.NoError(t, f.service.ApplyCheckoutCompleted(sess))
	require.NoError(t, f.service.ApplyCheckoutCompleted(sess))

	var count int64
	require.NoError(t, f.db.Model(&models.Subscription{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApplyCheckoutCompletedRejectsMissingMetadata(t *testing.T) {
	f := newSubscriptionFixture(t)

	err := f.service.ApplyCheckoutCompleted(&stripe.CheckoutSession{
		Customer:     &stripe.Customer{ID: "cus_1"},
		Subscription: &stripe.Subscription{ID: "sub_1"},
	})

	require.Error(t, err)
}

func TestApplySubscriptionUpdatedMarksCanceling(t *testing.T) {
	f := newSubscriptionFixture(t)
	user := seedUser(t, f.db, models.PlanFree, 0)
	require.NoError(t, f.service.ApplyCheckoutCompleted(
		checkoutSession(user.ID, "cus_1", "sub_1", time.Now().Add(24*time.Hour))))

	err := f.service.ApplySubscriptionUpdated(&stripe.Subscription{
		ID:                "sub_1",
		Status:            stripe.SubscriptionStatusActive,
		CancelAtPeriodEnd: true,
	})
	require.NoError(t, err)

	sub, err := f.subRepo.FindByStripeSubscriptionID("sub_1")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCanceling, sub.Status)

	// Still effective until the period ends.
	fresh, err := f.userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, fresh.PlanType)
}

func TestApplySubscriptionDeletedRevertsToFree(t *testing.T) {
	f := newSubscriptionFixture(t)
	user := seedUser(t, f.db, models.PlanFree, 0)
	require.NoError(t, f.service.ApplyCheckoutCompleted(
		checkoutSession(user.ID, "cus_1", "sub_1", time.Now().Add(24*time.Hour))))

	err := f.service.ApplySubscriptionDeleted(&stripe.Subscription{ID: "sub_1"})
	require.NoError(t, err)

	sub, err := f.subRepo.FindByStripeSubscriptionID("sub_1")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCanceled, sub.Status)

	fresh, err := f.userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, fresh.PlanType)
}

func TestApplySubscriptionUpdatedUnknownIsIgnored(t *testing.T) {
	f := newSubscriptionFixture(t)

	err := f.service.ApplySubscriptionUpdated(&stripe.Subscription{ID: "sub_ghost"})

	require.NoError(t, err)
}

func TestGetEffectivePlanCreatesMissingUser(t *testing.T) {
	f := newSubscriptionFixture(t)

	plan, err := f.service.GetEffectivePlan("ext-user-1")
	require.NoError(t, err)

	assert.Equal(t, models.PlanFree, plan.PlanType)
	assert.Zero(t, plan.ListingsCount)

	// Second call resolves the same row.
	again, err := f.service.GetEffectivePlan("ext-user-1")
	require.NoError(t, err)
	assert.Equal(t, plan, again)
}

func TestGetUsage(t *testing.T) {
	f := newSubscriptionFixture(t)
	free := seedUser(t, f.db, models.PlanFree, 10)
	pro := seedUser(t, f.db, models.PlanPro, 500)

	usage, err := f.service.GetUsage(free.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FreePlanListingLimit, usage.ListingLimit)
	assert.Equal(t, 15, usage.Remaining)

	usage, err = f.service.GetUsage(pro.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuotaUnlimited, usage.ListingLimit)
	assert.Equal(t, models.QuotaUnlimited, usage.Remaining)
}

func TestCancelSubscription(t *testing.T) {
	config.AppConfig = &config.Config{} // no Stripe credentials, local state only
	f := newSubscriptionFixture(t)
	user := seedUser(t, f.db, models.PlanFree, 0)
	require.NoError(t, f.service.ApplyCheckoutCompleted(
		checkoutSession(user.ID, "cus_1", "sub_1", time.Now().Add(24*time.Hour))))

	require.NoError(t, f.service.CancelSubscription(user.ID))

	sub, err := f.subRepo.FindByStripeSubscriptionID("sub_1")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCanceling, sub.Status)

	// A second cancel is rejected.
	err = f.service.CancelSubscription(user.ID)
	require.ErrorIs(t, err, apperrors.ErrSubscriptionCanceled)
}

func TestCancelSubscriptionWithoutSubscription(t *testing.T) {
	config.AppConfig = &config.Config{}
	f := newSubscriptionFixture(t)
	user := seedUser(t, f.db, models.PlanFree, 0)

	err := f.service.CancelSubscription(user.ID)

	require.ErrorIs(t, err, apperrors.ErrSubscriptionNotFound)
}
