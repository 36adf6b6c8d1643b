// Package platforms abstracts the marketplace APIs the sync engine pulls
// listings from. The core never depends on a concrete platform's transport:
// it sees only the Client interface and CandidateListing records.
package platforms

import (
	"context"
	"errors"

	"crosslist_backend/internal/models"
)

var ErrUnknownSite = errors.New("no platform client registered for site")

// CandidateListing is a listing record obtained from a platform, not yet
// deduplicated or accepted. PriceText is the raw price string as platforms
// return it ("$123.45", "€50"); ParsePrice normalizes it.
type CandidateListing struct {
	ExternalID  string
	Title       string
	Description string
	PriceText   string
	Status      models.ListingStatus
	URL         string
	Metadata    map[string]any
}

// Client fetches candidate listings for one connected site. Implementations
// must not write to the database; persistence belongs to the sync engine.
type Client interface {
	FetchCandidateListings(ctx context.Context, conn *models.ConnectedSite) ([]CandidateListing, error)
}

// Registry maps site ids to their platform clients.
type Registry struct {
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func (r *Registry) Register(siteID string, client Client) {
	r.clients[siteID] = client
}

func (r *Registry) Client(siteID string) (Client, error) {
	client, ok := r.clients[siteID]
	if !ok {
		return nil, ErrUnknownSite
	}
	return client, nil
}
