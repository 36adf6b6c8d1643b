package platforms

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"crosslist_backend/internal/models"

	"github.com/google/uuid"
)

// SimulatedClient generates randomized candidate listings shaped like real
// marketplace API responses. Real adapters would call the site's API with the
// connection's credentials; until those integrations land, every enabled site
// is backed by this client.
type SimulatedClient struct {
	SiteName string
	SiteURL  string

	// MaxListings bounds the batch size per fetch (1..MaxListings).
	MaxListings int

	rng *rand.Rand
}

func NewSimulatedClient(siteName, siteURL string) *SimulatedClient {
	return &SimulatedClient{
		SiteName:    siteName,
		SiteURL:     siteURL,
		MaxListings: 5,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var (
	simCategories    = []string{"Electronics", "Clothing", "Home", "Sports", "Collectibles"}
	simStatuses      = []models.ListingStatus{models.ListingStatusActive, models.ListingStatusDraft, models.ListingStatusSold, models.ListingStatusPending}
	simTitlePrefixes = []string{"New", "Used", "Like New", "Vintage", "Rare", "Brand New"}
	simTitleItems    = []string{"Laptop", "Phone", "Camera", "Shirt", "Shoes", "Watch", "Desk", "Chair", "Bike"}
)

func (c *SimulatedClient) FetchCandidateListings(ctx context.Context, conn *models.ConnectedSite) ([]CandidateListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := c.rng.Intn(c.MaxListings) + 1
	candidates := make([]CandidateListing, 0, n)

	for i := 0; i < n; i++ {
		prefix := simTitlePrefixes[c.rng.Intn(len(simTitlePrefixes))]
		item := simTitleItems[c.rng.Intn(len(simTitleItems))]
		category := simCategories[c.rng.Intn(len(simCategories))]
		status := simStatuses[c.rng.Intn(len(simStatuses))]
		price := float64(c.rng.Intn(20000))/100 + 10

		externalID := fmt.Sprintf("ext-%s-%s", conn.SiteID, uuid.NewString())

		condition := "used"
		if prefix == "New" || prefix == "Brand New" {
			condition = "new"
		}

		candidates = append(candidates, CandidateListing{
			ExternalID:  externalID,
			Title:       fmt.Sprintf("%s %s - %s", prefix, item, category),
			Description: fmt.Sprintf("A %s %s in the %s category, listed on %s.", prefix, item, category, c.SiteName),
			PriceText:   fmt.Sprintf("$%.2f", price),
			Status:      status,
			URL:         fmt.Sprintf("%s/listing/%s", c.SiteURL, externalID),
			Metadata: map[string]any{
				"category":    category,
				"condition":   condition,
				"source_site": c.SiteName,
			},
		})
	}

	return candidates, nil
}

// DefaultRegistry wires a simulated client for every enabled site in the
// catalog.
func DefaultRegistry(sites []models.Site) *Registry {
	registry := NewRegistry()
	for _, site := range sites {
		if !site.Enabled {
			continue
		}
		registry.Register(site.ID, NewSimulatedClient(site.Name, site.URL))
	}
	return registry
}
