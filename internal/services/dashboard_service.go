package services

import (
	"crosslist_backend/internal/models"
	"crosslist_backend/internal/repositories"
)

// DashboardStats is the aggregate view backing the dashboard landing page.
type DashboardStats struct {
	TotalListings  int64                      `json:"total_listings"`
	ListingLimit   int                        `json:"listing_limit"` // -1 for unlimited
	PlanType       models.PlanType            `json:"plan_type"`
	ByStatus       []repositories.StatusCount `json:"by_status"`
	BySite         []repositories.SiteCount   `json:"by_site"`
	ConnectedSites int                        `json:"connected_sites"`
}

type DashboardService interface {
	GetStats(userID string) (*DashboardStats, error)
	GetRecentListings(userID string, limit int) ([]models.Listing, error)
}

type dashboardService struct {
	listingRepo    repositories.ListingRepository
	connectionRepo repositories.ConnectionRepository
	userRepo       repositories.UserRepository
}

func NewDashboardService(
	listingRepo repositories.ListingRepository,
	connectionRepo repositories.ConnectionRepository,
	userRepo repositories.UserRepository,
) DashboardService {
	return &dashboardService{
		listingRepo:    listingRepo,
		connectionRepo: connectionRepo,
		userRepo:       userRepo,
	}
}

func (s *dashboardService) GetStats(userID string) (*DashboardStats, error) {
	user, err := s.userRepo.EnsureUser(userID, "")
	if err != nil {
		return nil, err
	}

	total, err := s.listingRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.listingRepo.CountByStatus(userID)
	if err != nil {
		return nil, err
	}
	bySite, err := s.listingRepo.CountBySite(userID)
	if err != nil {
		return nil, err
	}
	conns, err := s.connectionRepo.FindActiveConnections(userID)
	if err != nil {
		return nil, err
	}

	limit := models.QuotaUnlimited
	if user.PlanType == models.PlanFree {
		limit = models.FreePlanListingLimit
	}

	return &DashboardStats{
		TotalListings:  total,
		ListingLimit:   limit,
		PlanType:       user.PlanType,
		ByStatus:       byStatus,
		BySite:         bySite,
		ConnectedSites: len(conns),
	}, nil
}

func (s *dashboardService) GetRecentListings(userID string, limit int) ([]models.Listing, error) {
	return s.listingRepo.RecentByUser(userID, limit)
}
