package workers

import (
	"context"
	"time"

	"crosslist_backend/internal/email"
	"crosslist_backend/internal/logger"
	"crosslist_backend/internal/models"
	"crosslist_backend/internal/repositories"
)

// SubscriptionWorker finalizes canceling subscriptions whose billing period
// has ended. Stripe normally delivers customer.subscription.deleted for these,
// so the worker is the fallback for lost webhooks, not the primary path.
type SubscriptionWorker struct {
	subscriptionRepo repositories.SubscriptionRepository
	userRepo         repositories.UserRepository
	mailer           email.Provider
	interval         time.Duration
}

func NewSubscriptionWorker(
	subscriptionRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository,
	mailer email.Provider,
) *SubscriptionWorker {
	return &SubscriptionWorker{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		mailer:           mailer,
		interval:         time.Hour,
	}
}

func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *SubscriptionWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("subscription worker stopped")
			return
		case <-ticker.C:
			w.FinalizeLapsed(time.Now())
		}
	}
}

// FinalizeLapsed marks lapsed canceling subscriptions as canceled and reverts
// their owners to the free plan. Exported so tests can drive it directly.
func (w *SubscriptionWorker) FinalizeLapsed(now time.Time) {
	subs, err := w.subscriptionRepo.FindLapsedCanceling(now)
	if err != nil {
		logger.WorkerLog("subscription", "query lapsed subscriptions", err)
		return
	}

	for _, sub := range subs {
		if err := w.subscriptionRepo.UpdateStatus(sub.StripeSubscriptionID, models.SubscriptionStatusCanceled); err != nil {
			logger.WorkerLog("subscription", "finalize subscription "+sub.ID, err)
			continue
		}
		if err := w.userRepo.UpdatePlan(sub.UserID, models.PlanFree); err != nil {
			logger.WorkerLog("subscription", "revert plan for user "+sub.UserID, err)
			continue
		}

		logger.WorkerLog("subscription", "finalized lapsed subscription "+sub.ID, nil)

		if user, err := w.userRepo.FindByID(sub.UserID); err == nil && user.Email != "" {
			if err := w.mailer.SendSubscriptionEnded(user.Email); err != nil {
				logger.WithError(err).Warn("failed to send subscription ended notice", "user_id", sub.UserID)
			}
		}
	}
}
