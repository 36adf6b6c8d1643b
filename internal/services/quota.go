package services

import "crosslist_backend/internal/models"

// RemainingQuota decides how many more listings a user under the given plan
// may add. Pro has no cap and returns models.QuotaUnlimited; free returns the
// slots left under the 25-listing limit, never negative. Pure function.
func RemainingQuota(plan models.PlanType, currentCount int) int {
	if plan == models.PlanPro {
		return models.QuotaUnlimited
	}
	remaining := models.FreePlanListingLimit - currentCount
	if remaining < 0 {
		return 0
	}
	return remaining
}
