package handlers

import (
	"crosslist_backend/internal/services"
	"crosslist_backend/internal/validator"
)

// AppHandlers holds every handler of the application.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	UserHandler         *UserHandler
	ConnectionHandler   *ConnectionHandler
	ListingHandler      *ListingHandler
	SyncHandler         *SyncHandler
	SubscriptionHandler *SubscriptionHandler
	DashboardHandler    *DashboardHandler
}

func NewAppHandlers(container *services.ServiceContainer, v *validator.Validator) *AppHandlers {
	base := NewBaseHandler(v)
	return &AppHandlers{
		AuthHandler:         NewAuthHandler(base, container.Auth),
		UserHandler:         NewUserHandler(base, container.User),
		ConnectionHandler:   NewConnectionHandler(base, container.Connection),
		ListingHandler:      NewListingHandler(base, container.Listing),
		SyncHandler:         NewSyncHandler(base, container.Sync),
		SubscriptionHandler: NewSubscriptionHandler(base, container.Subscription),
		DashboardHandler:    NewDashboardHandler(base, container.Dashboard),
	}
}
