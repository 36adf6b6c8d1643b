package repositories

import (
	"errors"
	"time"

	"crosslist_backend/internal/models"

	"gorm.io/gorm"
)

var ErrListingNotFound = errors.New("listing not found")

// ListingFilter narrows ListByUser results. Zero values mean "no filter".
type ListingFilter struct {
	SiteID string
	Status models.ListingStatus
	Page   int
	Limit  int
}

// StatusCount is one row of the per-status listing breakdown.
type StatusCount struct {
	Status models.ListingStatus `json:"status"`
	Count  int64                `json:"count"`
}

// SiteCount is one row of the per-site listing breakdown.
type SiteCount struct {
	SiteID string `json:"site_id"`
	Count  int64  `json:"count"`
}

type ListingRepository interface {
	Create(listing *models.Listing) error
	FindByID(id string) (*models.Listing, error)
	FindByUserAndID(userID, id string) (*models.Listing, error)
	ListByUser(userID string, filter ListingFilter) ([]models.Listing, int64, error)
	Update(listing *models.Listing) error
	Delete(userID, id string) error

	// KnownExternalIDs returns the set of external ids already persisted for
	// (user, site). Computed once per sync call, not refreshed mid-batch.
	KnownExternalIDs(userID, siteID string) (map[string]struct{}, error)

	CountByUser(userID string) (int64, error)
	CountByStatus(userID string) ([]StatusCount, error)
	CountBySite(userID string) ([]SiteCount, error)
	RecentByUser(userID string, limit int) ([]models.Listing, error)
}

type ListingRepositoryImpl struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &ListingRepositoryImpl{db: db}
}

func (r *ListingRepositoryImpl) Create(listing *models.Listing) error {
	return r.db.Create(listing).Error
}

func (r *ListingRepositoryImpl) FindByID(id string) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.First(&listing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepositoryImpl) FindByUserAndID(userID, id string) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepositoryImpl) ListByUser(userID string, filter ListingFilter) ([]models.Listing, int64, error) {
	query := r.db.Model(&models.Listing{}).Where("user_id = ?", userID)
	if filter.SiteID != "" {
		query = query.Where("site_id = ?", filter.SiteID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var listings []models.Listing
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&listings).Error
	return listings, total, err
}

func (r *ListingRepositoryImpl) Update(listing *models.Listing) error {
	result := r.db.Model(listing).Updates(map[string]interface{}{
		"title":        listing.Title,
		"description":  listing.Description,
		"price":        listing.Price,
		"currency":     listing.Currency,
		"status":       listing.Status,
		"url":          listing.URL,
		"metadata":     listing.Metadata,
		"published_at": listing.PublishedAt,
		"updated_at":   time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *ListingRepositoryImpl) Delete(userID, id string) error {
	result := r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&models.Listing{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *ListingRepositoryImpl) KnownExternalIDs(userID, siteID string) (map[string]struct{}, error) {
	var ids []string
	err := r.db.Model(&models.Listing{}).
		Where("user_id = ? AND site_id = ? AND external_id IS NOT NULL", userID, siteID).
		Pluck("external_id", &ids).Error
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	return known, nil
}

func (r *ListingRepositoryImpl) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Listing{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *ListingRepositoryImpl) CountByStatus(userID string) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.Model(&models.Listing{}).
		Select("status, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&counts).Error
	return counts, err
}

func (r *ListingRepositoryImpl) CountBySite(userID string) ([]SiteCount, error) {
	var counts []SiteCount
	err := r.db.Model(&models.Listing{}).
		Select("site_id, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("site_id").
		Scan(&counts).Error
	return counts, err
}

func (r *ListingRepositoryImpl) RecentByUser(userID string, limit int) ([]models.Listing, error) {
	if limit <= 0 {
		limit = 5
	}
	var listings []models.Listing
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&listings).Error
	return listings, err
}
