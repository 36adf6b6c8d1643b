package workers

import (
	"testing"
	"time"

	"crosslist_backend/internal/models"
	"crosslist_backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) Send(to, _, _ string) error {
	m.sent = append(m.sent, to)
	return nil
}

func (m *recordingMailer) SendSubscriptionEnded(to string) error {
	return m.Send(to, "", "")
}

func newWorkerFixture(t *testing.T) (*SubscriptionWorker, *gorm.DB, *recordingMailer) {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Subscription{}))

	mailer := &recordingMailer{}
	worker := NewSubscriptionWorker(
		repositories.NewSubscriptionRepository(db),
		repositories.NewUserRepository(db),
		mailer,
	)
	return worker, db, mailer
}

func TestFinalizeLapsed(t *testing.T) {
	worker, db, mailer := newWorkerFixture(t)

	user := &models.User{Email: "pro@example.com", PasswordHash: "x", PlanType: models.PlanPro}
	require.NoError(t, db.Create(user).Error)

	ended := time.Now().Add(-time.Hour)
	sub := &models.Subscription{
		UserID:               user.ID,
		Status:               models.SubscriptionStatusCanceling,
		PlanType:             models.PlanPro,
		CurrentPeriodStart:   time.Now().Add(-30 * 24 * time.Hour),
		CurrentPeriodEnd:     &ended,
		StripeSubscriptionID: "sub_lapsed",
	}
	require.NoError(t, db.Create(sub).Error)

	worker.FinalizeLapsed(time.Now())

	var freshSub models.Subscription
	require.NoError(t, db.First(&freshSub, "id = ?", sub.ID).Error)
	assert.Equal(t, models.SubscriptionStatusCanceled, freshSub.Status)

	var freshUser models.User
	require.NoError(t, db.First(&freshUser, "id = ?", user.ID).Error)
	assert.Equal(t, models.PlanFree, freshUser.PlanType)

	assert.Equal(t, []string{"pro@example.com"}, mailer.sent)
}

func TestFinalizeLapsedLeavesCurrentSubscriptionsAlone(t *testing.T) {
	worker, db, mailer := newWorkerFixture(t)

	user := &models.User{Email: "still-pro@example.com", PasswordHash: "x", PlanType: models.PlanPro}
	require.NoError(t, db.Create(user).Error)

	future := time.Now().Add(10 * 24 * time.Hour)
	sub := &models.Subscription{
		UserID:               user.ID,
		Status:               models.SubscriptionStatusCanceling,
		PlanType:             models.PlanPro,
		CurrentPeriodStart:   time.Now(),
		CurrentPeriodEnd:     &future,
		StripeSubscriptionID: "sub_current",
	}
	require.NoError(t, db.Create(sub).Error)

	worker.FinalizeLapsed(time.Now())

	var freshSub models.Subscription
	require.NoError(t, db.First(&freshSub, "id = ?", sub.ID).Error)
	assert.Equal(t, models.SubscriptionStatusCanceling, freshSub.Status)

	var freshUser models.User
	require.NoError(t, db.First(&freshUser, "id = ?", user.ID).Error)
	assert.Equal(t, models.PlanPro, freshUser.PlanType)
	assert.Empty(t, mailer.sent)
}
