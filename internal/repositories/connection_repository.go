package repositories

import (
	"errors"
	"time"

	"crosslist_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSiteNotFound       = errors.New("site not found")
	ErrConnectionNotFound = errors.New("site connection not found")
)

type ConnectionRepository interface {
	// Site catalog
	FindSiteByID(id string) (*models.Site, error)
	FindAllSites() ([]models.Site, error)
	FindEnabledSites() ([]models.Site, error)
	SeedSites(sites []models.Site) error

	// Connections
	CreateConnection(conn *models.ConnectedSite) error
	FindConnection(userID, siteID string) (*models.ConnectedSite, error)
	FindActiveConnections(userID string) ([]models.ConnectedSite, error)
	FindConnectionsByUser(userID string) ([]models.ConnectedSite, error)
	ReactivateConnection(id string, credentials datatypes.JSON) error
	DeactivateConnection(userID, siteID string) error
	TouchLastSynced(id string, at time.Time) error
}

type ConnectionRepositoryImpl struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &ConnectionRepositoryImpl{db: db}
}

func (r *ConnectionRepositoryImpl) FindSiteByID(id string) (*models.Site, error) {
	var site models.Site
	err := r.db.First(&site, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}
	return &site, nil
}

func (r *ConnectionRepositoryImpl) FindAllSites() ([]models.Site, error) {
	var sites []models.Site
	err := r.db.Order("name ASC").Find(&sites).Error
	return sites, err
}

func (r *ConnectionRepositoryImpl) FindEnabledSites() ([]models.Site, error) {
	var sites []models.Site
	err := r.db.Where("enabled = ?", true).Order("name ASC").Find(&sites).Error
	return sites, err
}

// SeedSites inserts missing catalog rows. Existing rows are left untouched so
// manual toggles of the enabled flag survive restarts.
func (r *ConnectionRepositoryImpl) SeedSites(sites []models.Site) error {
	for i := range sites {
		err := r.db.Where("id = ?", sites[i].ID).FirstOrCreate(&sites[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ConnectionRepositoryImpl) CreateConnection(conn *models.ConnectedSite) error {
	return r.db.Create(conn).Error
}

func (r *ConnectionRepositoryImpl) FindConnection(userID, siteID string) (*models.ConnectedSite, error) {
	var conn models.ConnectedSite
	err := r.db.Preload("Site").Where("user_id = ? AND site_id = ?", userID, siteID).First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}
	return &conn, nil
}

func (r *ConnectionRepositoryImpl) FindActiveConnections(userID string) ([]models.ConnectedSite, error) {
	var conns []models.ConnectedSite
	err := r.db.Preload("Site").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&conns).Error
	return conns, err
}

func (r *ConnectionRepositoryImpl) FindConnectionsByUser(userID string) ([]models.ConnectedSite, error) {
	var conns []models.ConnectedSite
	err := r.db.Preload("Site").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&conns).Error
	return conns, err
}

func (r *ConnectionRepositoryImpl) ReactivateConnection(id string, credentials datatypes.JSON) error {
	result := r.db.Model(&models.ConnectedSite{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_active":   true,
		"credentials": credentials,
		"updated_at":  time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConnectionNotFound
	}
	return nil
}

// DeactivateConnection flips is_active off and clears the credentials blob.
// Sync paths never hard-delete a connection.
func (r *ConnectionRepositoryImpl) DeactivateConnection(userID, siteID string) error {
	result := r.db.Model(&models.ConnectedSite{}).
		Where("user_id = ? AND site_id = ?", userID, siteID).
		Updates(map[string]interface{}{
			"is_active":   false,
			"credentials": nil,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConnectionNotFound
	}
	return nil
}

func (r *ConnectionRepositoryImpl) TouchLastSynced(id string, at time.Time) error {
	result := r.db.Model(&models.ConnectedSite{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_synced_at": at,
		"updated_at":     time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConnectionNotFound
	}
	return nil
}
