package services

import (
	"encoding/json"
	"fmt"
	"time"

	"crosslist_backend/internal/config"
	"crosslist_backend/internal/logger"
	"crosslist_backend/internal/models"
	"crosslist_backend/internal/repositories"
	"crosslist_backend/pkg/apperrors"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	stripesub "github.com/stripe/stripe-go/v79/subscription"
	"github.com/stripe/stripe-go/v79/webhook"
)

// EffectivePlan is what the subscription gate exposes to the sync engine:
// the resolved plan plus the current denormalized listing count. The gate
// offers no mutation entry points; plan transitions happen only through
// billing webhooks.
type EffectivePlan struct {
	PlanType      models.PlanType `json:"plan_type"`
	ListingsCount int             `json:"listings_count"`
}

// UsageSummary backs GET /subscriptions/usage.
type UsageSummary struct {
	PlanType      models.PlanType `json:"plan_type"`
	ListingsCount int             `json:"listings_count"`
	ListingLimit  int             `json:"listing_limit"` // -1 for unlimited
	Remaining     int             `json:"remaining"`     // -1 for unlimited
}

// SubscriptionStatusResponse backs GET /subscriptions/my.
type SubscriptionStatusResponse struct {
	IsPro            bool                 `json:"isPro"`
	PlanType         models.PlanType      `json:"planType"`
	ListingsCount    int                  `json:"listingsCount"`
	Subscription     *models.Subscription `json:"subscription"`
	CurrentPeriodEnd *time.Time           `json:"currentPeriodEnd,omitempty"`
}

type SubscriptionService interface {
	// GetEffectivePlan resolves the user's plan and listing count, lazily
	// creating a default free-plan user row when absent.
	GetEffectivePlan(userID string) (*EffectivePlan, error)

	GetCurrentSubscription(userID string) (*SubscriptionStatusResponse, error)
	GetUsage(userID string) (*UsageSummary, error)

	CreateCheckoutSession(userID string) (string, error)
	CancelSubscription(userID string) error

	// ProcessWebhook verifies a Stripe webhook payload and applies the event.
	ProcessWebhook(payload []byte, sigHeader string) error

	// Apply* are the event handlers behind ProcessWebhook, exposed so the
	// webhook transport and tests share one code path per transition.
	ApplyCheckoutCompleted(sess *stripe.CheckoutSession) error
	ApplySubscriptionUpdated(sub *stripe.Subscription) error
	ApplySubscriptionDeleted(sub *stripe.Subscription) error
}

type subscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
	userRepo         repositories.UserRepository
}

func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
	}
}

// Plan resolution reads users.plan_type only. The subscriptions row mirrors
// provider state for display; webhook processing keeps the two in step. (The
// predecessor of this service had a second resolution path deriving the plan
// from the subscription row, which disagreed with this one whenever a webhook
// was delayed — consolidated here on the column the sync path already reads.)
func (s *subscriptionService) GetEffectivePlan(userID string) (*EffectivePlan, error) {
	user, err := s.userRepo.EnsureUser(userID, "")
	if err != nil {
		return nil, err
	}

	return &EffectivePlan{
		PlanType:      user.PlanType,
		ListingsCount: user.ListingsCount,
	}, nil
}

func (s *subscriptionService) GetCurrentSubscription(userID string) (*SubscriptionStatusResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	resp := &SubscriptionStatusResponse{
		IsPro:         user.PlanType == models.PlanPro,
		PlanType:      user.PlanType,
		ListingsCount: user.ListingsCount,
	}

	sub, err := s.subscriptionRepo.FindByUser(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return resp, nil
		}
		return nil, err
	}

	resp.Subscription = sub
	resp.CurrentPeriodEnd = sub.CurrentPeriodEnd
	return resp, nil
}

func (s *subscriptionService) GetUsage(userID string) (*UsageSummary, error) {
	plan, err := s.GetEffectivePlan(userID)
	if err != nil {
		return nil, err
	}

	summary := &UsageSummary{
		PlanType:      plan.PlanType,
		ListingsCount: plan.ListingsCount,
		ListingLimit:  models.QuotaUnlimited,
		Remaining:     models.QuotaUnlimited,
	}
	if plan.PlanType == models.PlanFree {
		summary.ListingLimit = models.FreePlanListingLimit
		summary.Remaining = RemainingQuota(plan.PlanType, plan.ListingsCount)
	}
	return summary, nil
}

func (s *subscriptionService) CreateCheckoutSession(userID string) (string, error) {
	cfg := config.GetConfig()
	if cfg.Stripe.SecretKey == "" || cfg.Stripe.PriceIDProMonthly == "" || cfg.Stripe.FrontendURL == "" {
		return "", apperrors.ErrBillingNotConfigured
	}
	stripe.Key = cfg.Stripe.SecretKey

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return "", apperrors.ErrUserNotFound
		}
		return "", err
	}

	customerID, err := s.ensureStripeCustomer(user)
	if err != nil {
		return "", fmt.Errorf("failed to prepare stripe customer: %w", err)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(cfg.Stripe.PriceIDProMonthly),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(cfg.Stripe.FrontendURL + "/billing/success"),
		CancelURL:  stripe.String(cfg.Stripe.FrontendURL + "/billing/cancel"),
	}
	params.AddMetadata("userId", user.ID)

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (s *subscriptionService) ensureStripeCustomer(user *models.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{Email: stripe.String(user.Email)}
	params.AddMetadata("userId", user.ID)

	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.SetStripeCustomerID(user.ID, cust.ID); err != nil {
		return "", err
	}
	return cust.ID, nil
}

// CancelSubscription requests cancellation at period end. The subscription
// stays effective (status canceling) until the provider confirms the end via
// webhook; the worker is the fallback when that confirmation never arrives.
func (s *subscriptionService) CancelSubscription(userID string) error {
	sub, err := s.subscriptionRepo.FindActiveByUser(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return apperrors.ErrSubscriptionNotFound
		}
		return err
	}
	if sub.Status == models.SubscriptionStatusCanceling {
		return apperrors.ErrSubscriptionCanceled
	}

	cfg := config.GetConfig()
	if cfg.Stripe.SecretKey != "" && sub.StripeSubscriptionID != "" {
		stripe.Key = cfg.Stripe.SecretKey
		_, err = stripesub.Update(sub.StripeSubscriptionID, &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		})
		if err != nil {
			return fmt.Errorf("failed to cancel stripe subscription: %w", err)
		}
	}

	return s.subscriptionRepo.UpdateStatus(sub.StripeSubscriptionID, models.SubscriptionStatusCanceling)
}

func (s *subscriptionService) ProcessWebhook(payload []byte, sigHeader string) error {
	cfg := config.GetConfig()
	if cfg.Stripe.WebhookSecret == "" {
		return apperrors.ErrBillingNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, cfg.Stripe.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return apperrors.ErrWebhookVerification
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return apperrors.NewBadRequestError("invalid checkout session payload")
		}
		return s.ApplyCheckoutCompleted(&sess)

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return apperrors.NewBadRequestError("invalid subscription payload")
		}
		return s.ApplySubscriptionUpdated(&sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return apperrors.NewBadRequestError("invalid subscription payload")
		}
		return s.ApplySubscriptionDeleted(&sub)

	default:
		logger.Debug("ignoring stripe event", "type", event.Type)
		return nil
	}
}

// ApplyCheckoutCompleted activates a pro subscription: it records the
// provider identifiers and flips users.plan_type in the same transition, so
// the two representations cannot drift on the upgrade path.
func (s *subscriptionService) ApplyCheckoutCompleted(sess *stripe.CheckoutSession) error {
	userID := sess.Metadata["userId"]
	if userID == "" {
		return apperrors.NewBadRequestError("no user id in session metadata")
	}
	if sess.Customer == nil || sess.Subscription == nil {
		return apperrors.NewBadRequestError("checkout session missing customer or subscription")
	}

	now := time.Now()
	var periodEnd *time.Time
	if sess.Subscription.CurrentPeriodEnd > 0 {
		t := time.Unix(sess.Subscription.CurrentPeriodEnd, 0)
		periodEnd = &t
	}

	// Replays of the same event are no-ops.
	if existing, err := s.subscriptionRepo.FindByStripeSubscriptionID(sess.Subscription.ID); err == nil {
		if existing.Status == models.SubscriptionStatusActive {
			return nil
		}
	} else if !apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
		return err
	}

	sub := &models.Subscription{
		UserID:               userID,
		Status:               models.SubscriptionStatusActive,
		PlanType:             models.PlanPro,
		CurrentPeriodStart:   now,
		CurrentPeriodEnd:     periodEnd,
		StripeCustomerID:     sess.Customer.ID,
		StripeSubscriptionID: sess.Subscription.ID,
	}
	if err := s.subscriptionRepo.Create(sub); err != nil {
		return err
	}

	if err := s.userRepo.SetStripeCustomerID(userID, sess.Customer.ID); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePlan(userID, models.PlanPro); err != nil {
		return err
	}

	logger.Info("activated pro subscription", "user_id", userID, "stripe_subscription_id", sess.Subscription.ID)
	return nil
}

func (s *subscriptionService) ApplySubscriptionUpdated(stripeSub *stripe.Subscription) error {
	sub, err := s.subscriptionRepo.FindByStripeSubscriptionID(stripeSub.ID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			// Update for a subscription we never saw the checkout for.
			logger.Warn("subscription update for unknown subscription", "stripe_subscription_id", stripeSub.ID)
			return nil
		}
		return err
	}

	switch {
	case stripeSub.Status == stripe.SubscriptionStatusCanceled:
		return s.finalizeCancellation(sub)
	case stripeSub.CancelAtPeriodEnd:
		sub.Status = models.SubscriptionStatusCanceling
	case stripeSub.Status == stripe.SubscriptionStatusActive:
		sub.Status = models.SubscriptionStatusActive
	}

	if stripeSub.CurrentPeriodStart > 0 {
		sub.CurrentPeriodStart = time.Unix(stripeSub.CurrentPeriodStart, 0)
	}
	if stripeSub.CurrentPeriodEnd > 0 {
		t := time.Unix(stripeSub.CurrentPeriodEnd, 0)
		sub.CurrentPeriodEnd = &t
	}

	return s.subscriptionRepo.Update(sub)
}

func (s *subscriptionService) ApplySubscriptionDeleted(stripeSub *stripe.Subscription) error {
	sub, err := s.subscriptionRepo.FindByStripeSubscriptionID(stripeSub.ID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			logger.Warn("subscription delete for unknown subscription", "stripe_subscription_id", stripeSub.ID)
			return nil
		}
		return err
	}
	return s.finalizeCancellation(sub)
}

func (s *subscriptionService) finalizeCancellation(sub *models.Subscription) error {
	if err := s.subscriptionRepo.UpdateStatus(sub.StripeSubscriptionID, models.SubscriptionStatusCanceled); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePlan(sub.UserID, models.PlanFree); err != nil {
		return err
	}
	logger.Info("subscription canceled, user reverted to free", "user_id", sub.UserID)
	return nil
}
