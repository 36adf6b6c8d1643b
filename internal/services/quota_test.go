package services

import (
	"testing"

	"crosslist_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRemainingQuota(t *testing.T) {
	tests := []struct {
		name     string
		plan     models.PlanType
		count    int
		expected int
	}{
		{"free plan with no listings", models.PlanFree, 0, 25},
		{"free plan mid-way", models.PlanFree, 10, 15},
		{"free plan one slot left", models.PlanFree, 24, 1},
		{"free plan at the cap", models.PlanFree, 25, 0},
		{"free plan over the cap", models.PlanFree, 30, 0},
		{"pro plan is unlimited", models.PlanPro, 0, models.QuotaUnlimited},
		{"pro plan ignores count", models.PlanPro, 10000, models.QuotaUnlimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RemainingQuota(tt.plan, tt.count))
		})
	}
}
