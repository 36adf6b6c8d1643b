package models

import "time"

// SiteSyncResult is the per-connection outcome entry in a sync report.
// Exactly one of Message and Error is set for non-success entries.
type SiteSyncResult struct {
	SiteID        string           `json:"site_id"`
	SiteName      string           `json:"site_name"`
	Success       bool             `json:"success"`
	ListingsAdded int              `json:"listings_added"`
	Listings      []ListingSummary `json:"listings,omitempty"`
	Message       string           `json:"message,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// SyncReport aggregates the per-connection results of one sync invocation.
// It is built once at the end of the batch and never mutated afterwards.
type SyncReport struct {
	Success          bool             `json:"success"`
	Message          string           `json:"message,omitempty"`
	Results          []SiteSyncResult `json:"results"`
	TotalNewListings int              `json:"total_new_listings"`
	Timestamp        time.Time        `json:"timestamp"`
}

type SyncRequest struct {
	// PlatformID restricts the sync to one connected platform; empty means
	// all active connections.
	PlatformID string `json:"platformId"`
}
