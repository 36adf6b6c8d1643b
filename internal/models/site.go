package models

import (
	"time"

	"gorm.io/datatypes"
)

// Site is a catalog entry for a marketplace platform users can connect.
type Site struct {
	ID          string `gorm:"primaryKey" json:"id"` // slug: "facebook", "ebay", ...
	Name        string `gorm:"not null" json:"name"`
	URL         string `json:"url"`
	APIEndpoint string `json:"api_endpoint,omitempty"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `gorm:"default:true" json:"enabled"`
}

func (Site) TableName() string {
	return "sites"
}

// ConnectedSite links a user to one marketplace platform. Credentials are an
// opaque blob owned exclusively by the connection. Disconnecting deactivates
// the row; sync paths never hard-delete it.
type ConnectedSite struct {
	BaseModel
	UserID       string         `gorm:"not null;index:idx_user_site,unique" json:"user_id"`
	SiteID       string         `gorm:"not null;index:idx_user_site,unique" json:"site_id"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	LastSyncedAt *time.Time     `json:"last_synced_at,omitempty"`
	Credentials  datatypes.JSON `gorm:"type:jsonb" json:"-"`

	// Relations
	Site Site `gorm:"foreignKey:SiteID" json:"site"`
}

func (ConnectedSite) TableName() string {
	return "connected_sites"
}

type ConnectSiteRequest struct {
	SiteID      string         `json:"site_id" validate:"required"`
	Credentials map[string]any `json:"credentials"`
}
