package repositories

import (
	"errors"
	"time"

	"crosslist_backend/internal/models"

	"gorm.io/gorm"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	FindActiveByUser(userID string) (*models.Subscription, error)
	FindByUser(userID string) (*models.Subscription, error)
	FindByStripeSubscriptionID(stripeSubID string) (*models.Subscription, error)
	Update(sub *models.Subscription) error
	UpdateStatus(stripeSubID string, status models.SubscriptionStatus) error

	// FindLapsedCanceling returns canceling subscriptions whose period ended
	// before now; the worker finalizes them.
	FindLapsedCanceling(now time.Time) ([]models.Subscription, error)
}

type SubscriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db}
}

func (r *SubscriptionRepositoryImpl) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepositoryImpl) FindActiveByUser(userID string) (*models.Subscription, error) {
	var sub models.Subscription
	// Canceling subscriptions remain effective until the period ends, so both
	// states count as "active" here. At most one such row exists per user.
	err := r.db.Where("user_id = ? AND status IN ?", userID,
		[]models.SubscriptionStatus{models.SubscriptionStatusActive, models.SubscriptionStatusCanceling}).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) FindByUser(userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) FindByStripeSubscriptionID(stripeSubID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("stripe_subscription_id = ?", stripeSubID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) Update(sub *models.Subscription) error {
	result := r.db.Model(sub).Updates(map[string]interface{}{
		"status":               sub.Status,
		"plan_type":            sub.PlanType,
		"current_period_start": sub.CurrentPeriodStart,
		"current_period_end":   sub.CurrentPeriodEnd,
		"updated_at":           time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) UpdateStatus(stripeSubID string, status models.SubscriptionStatus) error {
	result := r.db.Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) FindLapsedCanceling(now time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("status = ? AND current_period_end IS NOT NULL AND current_period_end < ?",
		models.SubscriptionStatusCanceling, now).
		Order("current_period_end ASC").
		Find(&subs).Error
	return subs, err
}
