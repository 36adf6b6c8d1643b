package services

import (
	"encoding/json"
	"fmt"

	"crosslist_backend/internal/models"
	"crosslist_backend/internal/repositories"
	"crosslist_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

// ConnectedSiteResponse is the API shape of a connection. Credentials stay
// server-side; only their presence is reported.
type ConnectedSiteResponse struct {
	ID             string      `json:"id"`
	Site           models.Site `json:"site"`
	IsActive       bool        `json:"is_active"`
	LastSyncedAt   *string     `json:"last_synced_at,omitempty"`
	HasCredentials bool        `json:"has_credentials"`
}

type ConnectionService interface {
	ListAvailableSites() ([]models.Site, error)
	ListConnectedSites(userID string) ([]ConnectedSiteResponse, error)
	Connect(userID string, req *models.ConnectSiteRequest) (*models.ConnectedSite, error)
	Disconnect(userID, siteID string) error
}

type connectionService struct {
	connectionRepo repositories.ConnectionRepository
	userRepo       repositories.UserRepository
}

func NewConnectionService(
	connectionRepo repositories.ConnectionRepository,
	userRepo repositories.UserRepository,
) ConnectionService {
	return &connectionService{
		connectionRepo: connectionRepo,
		userRepo:       userRepo,
	}
}

func (s *connectionService) ListAvailableSites() ([]models.Site, error) {
	return s.connectionRepo.FindAllSites()
}

func (s *connectionService) ListConnectedSites(userID string) ([]ConnectedSiteResponse, error) {
	conns, err := s.connectionRepo.FindConnectionsByUser(userID)
	if err != nil {
		return nil, err
	}

	resp := make([]ConnectedSiteResponse, 0, len(conns))
	for _, conn := range conns {
		item := ConnectedSiteResponse{
			ID:             conn.ID,
			Site:           conn.Site,
			IsActive:       conn.IsActive,
			HasCredentials: len(conn.Credentials) > 0,
		}
		if conn.LastSyncedAt != nil {
			ts := conn.LastSyncedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
			item.LastSyncedAt = &ts
		}
		resp = append(resp, item)
	}
	return resp, nil
}

// Connect activates a connection between the user and a site. Reconnecting a
// previously disconnected site reactivates the existing row with the new
// credentials instead of creating a duplicate.
func (s *connectionService) Connect(userID string, req *models.ConnectSiteRequest) (*models.ConnectedSite, error) {
	site, err := s.connectionRepo.FindSiteByID(req.SiteID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSiteNotFound) {
			return nil, apperrors.ErrSiteNotFound
		}
		return nil, err
	}
	if !site.Enabled {
		return nil, apperrors.ErrSiteDisabled
	}

	if _, err := s.userRepo.EnsureUser(userID, ""); err != nil {
		return nil, err
	}

	var credentials datatypes.JSON
	if len(req.Credentials) > 0 {
		raw, err := json.Marshal(req.Credentials)
		if err != nil {
			return nil, fmt.Errorf("failed to encode credentials: %w", err)
		}
		credentials = datatypes.JSON(raw)
	}

	existing, err := s.connectionRepo.FindConnection(userID, req.SiteID)
	if err == nil {
		if err := s.connectionRepo.ReactivateConnection(existing.ID, credentials); err != nil {
			return nil, err
		}
		return s.connectionRepo.FindConnection(userID, req.SiteID)
	}
	if !apperrors.Is(err, repositories.ErrConnectionNotFound) {
		return nil, err
	}

	conn := &models.ConnectedSite{
		UserID:      userID,
		SiteID:      req.SiteID,
		IsActive:    true,
		Credentials: credentials,
	}
	if err := s.connectionRepo.CreateConnection(conn); err != nil {
		return nil, err
	}
	return s.connectionRepo.FindConnection(userID, req.SiteID)
}

// Disconnect deactivates the connection and discards its credentials. The
// user's listings from that site are left untouched.
func (s *connectionService) Disconnect(userID, siteID string) error {
	err := s.connectionRepo.DeactivateConnection(userID, siteID)
	if apperrors.Is(err, repositories.ErrConnectionNotFound) {
		return apperrors.ErrConnectionNotFound
	}
	return err
}
