package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Listing belongs to exactly one user and one platform. ExternalID is nil for
// listings created directly in the app and set for listings ingested from a
// platform during sync.
type Listing struct {
	BaseModel
	UserID      string          `gorm:"not null;index" json:"user_id"`
	SiteID      string          `gorm:"not null;index" json:"site_id"`
	ExternalID  *string         `gorm:"index" json:"external_id,omitempty"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	Currency    string          `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	Status      ListingStatus   `gorm:"type:varchar(20);default:'draft'" json:"status"`
	URL         string          `json:"url,omitempty"`
	Metadata    datatypes.JSON  `gorm:"type:jsonb" json:"metadata,omitempty"`

	// PublishedAt is set exactly once, when the listing first transitions
	// into the active status.
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type CreateListingRequest struct {
	SiteID      string         `json:"site_id" validate:"required"`
	Title       string         `json:"title" validate:"required,max=255"`
	Description string         `json:"description"`
	Price       string         `json:"price" validate:"required"`
	Currency    string         `json:"currency" validate:"omitempty,len=3"`
	Status      ListingStatus  `json:"status" validate:"omitempty,oneof=draft active sold pending archived"`
	URL         string         `json:"url" validate:"omitempty,url"`
	Metadata    map[string]any `json:"metadata"`
}

type UpdateListingRequest struct {
	Title       *string        `json:"title" validate:"omitempty,max=255"`
	Description *string        `json:"description"`
	Price       *string        `json:"price"`
	Currency    *string        `json:"currency" validate:"omitempty,len=3"`
	Status      *ListingStatus `json:"status" validate:"omitempty,oneof=draft active sold pending archived"`
	URL         *string        `json:"url" validate:"omitempty,url"`
	Metadata    map[string]any `json:"metadata"`
}

// ListingSummary is the trimmed listing shape embedded in sync reports.
type ListingSummary struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Status ListingStatus `json:"status"`
}
