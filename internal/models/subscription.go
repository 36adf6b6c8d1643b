package models

import "time"

// Subscription mirrors the billing provider's state for one user. It is
// created and updated only in response to Stripe webhook events; at most one
// subscription per user is active at a time.
//
// Status lifecycle, all transitions billing-driven:
//
//	none -> active (checkout completed)
//	     -> canceling (cancel requested, stays effective until period end)
//	     -> canceled (provider confirms end; user reverts to free)
type Subscription struct {
	BaseModel
	UserID               string             `gorm:"not null;index" json:"user_id"`
	Status               SubscriptionStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	PlanType             PlanType           `gorm:"type:varchar(20);not null" json:"plan_type"`
	CurrentPeriodStart   time.Time          `json:"current_period_start"`
	CurrentPeriodEnd     *time.Time         `json:"current_period_end,omitempty"`
	StripeCustomerID     string             `gorm:"index" json:"-"`
	StripeSubscriptionID string             `gorm:"uniqueIndex" json:"-"`
}
