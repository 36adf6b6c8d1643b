package models

import "time"

const (
	// FreePlanListingLimit caps the total number of listings a free-plan user
	// may hold across all connected platforms.
	FreePlanListingLimit = 25

	// QuotaUnlimited is returned by the quota policy for plans with no cap.
	QuotaUnlimited = -1

	// FreeSyncCooldown is the minimum interval between syncs of the same
	// connection on the free plan.
	FreeSyncCooldown = time.Hour
)

// CurrencySymbols maps the symbols recognized in platform price text to ISO
// currency codes. Price text with no recognized symbol defaults to USD.
var CurrencySymbols = map[rune]string{
	'$': "USD",
	'€': "EUR",
	'£': "GBP",
	'¥': "JPY",
}
