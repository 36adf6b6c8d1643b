package models

type PlanType string
type ListingStatus string
type SubscriptionStatus string

const (
	PlanFree PlanType = "free"
	PlanPro  PlanType = "pro"

	ListingStatusDraft    ListingStatus = "draft"
	ListingStatusActive   ListingStatus = "active"
	ListingStatusSold     ListingStatus = "sold"
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusArchived ListingStatus = "archived"

	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCanceling SubscriptionStatus = "canceling"
	SubscriptionStatusCanceled  SubscriptionStatus = "canceled"
)

// ValidListingStatus reports whether s is one of the listing states the app
// understands. Platform clients return free-form status strings, so candidate
// statuses are normalized through this check before persisting.
func ValidListingStatus(s ListingStatus) bool {
	switch s {
	case ListingStatusDraft, ListingStatusActive, ListingStatusSold,
		ListingStatusPending, ListingStatusArchived:
		return true
	}
	return false
}
