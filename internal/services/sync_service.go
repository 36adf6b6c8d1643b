package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"crosslist_backend/internal/logger"
	"crosslist_backend/internal/models"
	"crosslist_backend/internal/platforms"
	"crosslist_backend/internal/repositories"
	"crosslist_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

// ErrQuotaExhausted signals that a free-plan user is already at the listing
// cap when a sync starts. The transport layer turns it into a non-error
// response telling the client syncing is pointless until an upgrade.
var ErrQuotaExhausted = errors.New("listing quota exhausted")

const (
	msgQuotaExhausted = "Listing limit reached. Upgrade to Pro for unlimited listings."
	msgCooldown       = "Synced recently. Free plan allows one sync per site per hour."
	msgNoNewListings  = "No new listings found"
)

type SyncService interface {
	// Sync pulls listings from the user's active connections and persists the
	// ones not seen before, respecting the plan quota. Connections are
	// processed sequentially; one platform failing never aborts the batch.
	Sync(ctx context.Context, userID string, req *models.SyncRequest) (*models.SyncReport, error)
}

type syncService struct {
	userRepo       repositories.UserRepository
	connectionRepo repositories.ConnectionRepository
	listingRepo    repositories.ListingRepository
	registry       *platforms.Registry
	now            func() time.Time
}

func NewSyncService(
	userRepo repositories.UserRepository,
	connectionRepo repositories.ConnectionRepository,
	listingRepo repositories.ListingRepository,
	registry *platforms.Registry,
) SyncService {
	return &syncService{
		userRepo:       userRepo,
		connectionRepo: connectionRepo,
		listingRepo:    listingRepo,
		registry:       registry,
		now:            time.Now,
	}
}

func (s *syncService) Sync(ctx context.Context, userID string, req *models.SyncRequest) (*models.SyncReport, error) {
	user, err := s.userRepo.EnsureUser(userID, "")
	if err != nil {
		return nil, err
	}

	limit := models.QuotaUnlimited
	if user.PlanType == models.PlanFree {
		limit = models.FreePlanListingLimit
		if RemainingQuota(user.PlanType, user.ListingsCount) == 0 {
			return nil, ErrQuotaExhausted
		}
	}

	conns, err := s.resolveConnections(userID, req)
	if err != nil {
		return nil, err
	}
	if len(conns) == 0 {
		return nil, apperrors.ErrNoActiveConnections
	}

	report := &models.SyncReport{
		Success:   true,
		Results:   make([]models.SiteSyncResult, 0, len(conns)),
		Timestamp: s.now(),
	}

	// Once a free user hits the cap mid-batch, the remaining connections are
	// reported as skipped instead of fetched.
	exhausted := false

	for i := range conns {
		conn := &conns[i]
		entry := models.SiteSyncResult{
			SiteID:   conn.SiteID,
			SiteName: conn.Site.Name,
		}

		switch {
		case exhausted:
			entry.Message = msgQuotaExhausted
		case user.PlanType == models.PlanFree && s.onCooldown(conn):
			// A cooldown skip is not a failure; the connection is simply not
			// due yet.
			entry.Success = true
			entry.Message = msgCooldown
		default:
			entry, exhausted = s.syncConnection(ctx, user, conn, limit)
		}

		if !entry.Success {
			report.Success = false
		}
		report.TotalNewListings += entry.ListingsAdded
		report.Results = append(report.Results, entry)
	}

	if report.Success {
		report.Message = "Sync completed"
	} else {
		report.Message = "Sync completed with errors"
	}
	return report, nil
}

func (s *syncService) resolveConnections(userID string, req *models.SyncRequest) ([]models.ConnectedSite, error) {
	conns, err := s.connectionRepo.FindActiveConnections(userID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.PlatformID == "" {
		return conns, nil
	}

	for _, conn := range conns {
		if conn.SiteID == req.PlatformID {
			return []models.ConnectedSite{conn}, nil
		}
	}
	return nil, nil
}

func (s *syncService) onCooldown(conn *models.ConnectedSite) bool {
	return conn.LastSyncedAt != nil && s.now().Sub(*conn.LastSyncedAt) < models.FreeSyncCooldown
}

// syncConnection processes one connection end to end and returns its report
// entry plus whether the quota ran out along the way.
func (s *syncService) syncConnection(
	ctx context.Context,
	user *models.User,
	conn *models.ConnectedSite,
	limit int,
) (models.SiteSyncResult, bool) {
	entry := models.SiteSyncResult{
		SiteID:   conn.SiteID,
		SiteName: conn.Site.Name,
	}
	started := s.now()

	client, err := s.registry.Client(conn.SiteID)
	if err != nil {
		entry.Error = "platform is not supported"
		return entry, false
	}

	candidates, fetchErr := client.FetchCandidateListings(ctx, conn)

	// The sync attempt itself is what the timestamp records, successful or
	// not, so a flapping platform cannot be hammered every minute.
	if err := s.connectionRepo.TouchLastSynced(conn.ID, s.now()); err != nil {
		logger.CtxWithError(ctx, "failed to update last_synced_at", err, "site_id", conn.SiteID)
	}

	if fetchErr != nil {
		logger.SyncLog(user.ID, conn.SiteID, 0, s.now().Sub(started), fetchErr)
		entry.Error = "failed to fetch listings from platform"
		return entry, false
	}

	known, err := s.listingRepo.KnownExternalIDs(user.ID, conn.SiteID)
	if err != nil {
		entry.Error = "failed to load existing listings"
		return entry, false
	}
	fresh := DedupeCandidates(candidates, known)

	entry.Success = true
	if len(fresh) == 0 {
		entry.Message = msgNoNewListings
		logger.SyncLog(user.ID, conn.SiteID, 0, s.now().Sub(started), nil)
		return entry, false
	}

	granted, err := s.userRepo.ReserveListingSlots(user.ID, len(fresh), limit)
	if err != nil {
		entry.Success = false
		entry.Error = "failed to reserve listing quota"
		return entry, false
	}
	exhausted := limit >= 0 && granted < len(fresh)

	inserted := make([]models.ListingSummary, 0, granted)
	seen := make(map[string]struct{}, granted)
	unused := granted

	for _, candidate := range fresh[:granted] {
		// Platforms occasionally repeat an id within one page.
		if _, dup := seen[candidate.ExternalID]; dup {
			continue
		}
		seen[candidate.ExternalID] = struct{}{}

		listing, err := s.buildListing(user.ID, conn.SiteID, candidate)
		if err != nil {
			logger.CtxWithError(ctx, "skipping malformed candidate", err,
				"site_id", conn.SiteID, "external_id", candidate.ExternalID)
			continue
		}
		if err := s.listingRepo.Create(listing); err != nil {
			logger.CtxWithError(ctx, "failed to persist listing", err,
				"site_id", conn.SiteID, "external_id", candidate.ExternalID)
			continue
		}

		unused--
		inserted = append(inserted, models.ListingSummary{
			ID:     listing.ID,
			Title:  listing.Title,
			Status: listing.Status,
		})
	}

	// Reserved slots that never turned into rows go back to the pool.
	if unused > 0 {
		if err := s.userRepo.ReleaseListingSlots(user.ID, unused); err != nil {
			logger.CtxWithError(ctx, "failed to release unused listing slots", err, "count", unused)
		}
	}

	entry.ListingsAdded = len(inserted)
	entry.Listings = inserted
	if exhausted {
		entry.Message = msgQuotaExhausted
	}

	logger.SyncLog(user.ID, conn.SiteID, len(inserted), s.now().Sub(started), nil)
	return entry, exhausted
}

func (s *syncService) buildListing(userID, siteID string, candidate platforms.CandidateListing) (*models.Listing, error) {
	price, currency, err := platforms.ParsePrice(candidate.PriceText)
	if err != nil {
		return nil, err
	}

	status := candidate.Status
	if !models.ValidListingStatus(status) {
		status = models.ListingStatusActive
	}

	externalID := candidate.ExternalID
	listing := &models.Listing{
		UserID:      userID,
		SiteID:      siteID,
		ExternalID:  &externalID,
		Title:       candidate.Title,
		Description: candidate.Description,
		Price:       price,
		Currency:    currency,
		Status:      status,
		URL:         candidate.URL,
	}
	if status == models.ListingStatusActive {
		now := s.now()
		listing.PublishedAt = &now
	}
	if len(candidate.Metadata) > 0 {
		raw, err := json.Marshal(candidate.Metadata)
		if err != nil {
			return nil, err
		}
		listing.Metadata = datatypes.JSON(raw)
	}
	return listing, nil
}
