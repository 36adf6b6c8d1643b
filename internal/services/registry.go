package services

import (
	"crosslist_backend/internal/platforms"
	"crosslist_backend/internal/repositories"
)

// ServiceContainer bundles every service the handlers depend on.
type ServiceContainer struct {
	Auth         AuthService
	User         UserService
	Connection   ConnectionService
	Listing      ListingService
	Sync         SyncService
	Subscription SubscriptionService
	Dashboard    DashboardService
}

func NewServiceContainer(
	userRepo repositories.UserRepository,
	connectionRepo repositories.ConnectionRepository,
	listingRepo repositories.ListingRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	registry *platforms.Registry,
) *ServiceContainer {
	return &ServiceContainer{
		Auth:         NewAuthService(userRepo),
		User:         NewUserService(userRepo),
		Connection:   NewConnectionService(connectionRepo, userRepo),
		Listing:      NewListingService(listingRepo, userRepo),
		Sync:         NewSyncService(userRepo, connectionRepo, listingRepo, registry),
		Subscription: NewSubscriptionService(subscriptionRepo, userRepo),
		Dashboard:    NewDashboardService(listingRepo, connectionRepo, userRepo),
	}
}
