package services

import (
	"encoding/json"
	"fmt"
	"time"

	"crosslist_backend/internal/models"
	"crosslist_backend/internal/repositories"
	"crosslist_backend/pkg/apperrors"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ListingPage is the paginated response shape for listing queries.
type ListingPage struct {
	Listings []models.Listing `json:"listings"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

type ListingService interface {
	Create(userID string, req *models.CreateListingRequest) (*models.Listing, error)
	GetByID(userID, listingID string) (*models.Listing, error)
	List(userID string, filter repositories.ListingFilter) (*ListingPage, error)
	Update(userID, listingID string, req *models.UpdateListingRequest) (*models.Listing, error)
	Delete(userID, listingID string) error
}

type listingService struct {
	listingRepo repositories.ListingRepository
	userRepo    repositories.UserRepository
}

func NewListingService(
	listingRepo repositories.ListingRepository,
	userRepo repositories.UserRepository,
) ListingService {
	return &listingService{
		listingRepo: listingRepo,
		userRepo:    userRepo,
	}
}

// Create persists a manually authored listing. The free-plan cap applies the
// same way it does during sync: a slot is reserved against listings_count
// before the insert and released if the insert fails.
func (s *listingService) Create(userID string, req *models.CreateListingRequest) (*models.Listing, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, apperrors.ErrInvalidPrice
	}

	limit := models.QuotaUnlimited
	if user.PlanType == models.PlanFree {
		limit = models.FreePlanListingLimit
	}
	granted, err := s.userRepo.ReserveListingSlots(userID, 1, limit)
	if err != nil {
		return nil, err
	}
	if granted == 0 {
		return nil, apperrors.ErrListingLimit
	}

	listing := &models.Listing{
		UserID:      userID,
		SiteID:      req.SiteID,
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		Currency:    defaultCurrency(req.Currency),
		Status:      req.Status,
		URL:         req.URL,
	}
	if listing.Status == "" {
		listing.Status = models.ListingStatusDraft
	}
	if listing.Status == models.ListingStatusActive {
		now := time.Now()
		listing.PublishedAt = &now
	}
	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata: %w", err)
		}
		listing.Metadata = datatypes.JSON(raw)
	}

	if err := s.listingRepo.Create(listing); err != nil {
		if relErr := s.userRepo.ReleaseListingSlots(userID, 1); relErr != nil {
			return nil, fmt.Errorf("failed to release listing slot after insert error: %w", relErr)
		}
		return nil, err
	}
	return listing, nil
}

func (s *listingService) GetByID(userID, listingID string) (*models.Listing, error) {
	listing, err := s.listingRepo.FindByUserAndID(userID, listingID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrListingNotFound) {
			return nil, apperrors.ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

func (s *listingService) List(userID string, filter repositories.ListingFilter) (*ListingPage, error) {
	listings, total, err := s.listingRepo.ListByUser(userID, filter)
	if err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	return &ListingPage{
		Listings: listings,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}

func (s *listingService) Update(userID, listingID string, req *models.UpdateListingRequest) (*models.Listing, error) {
	listing, err := s.listingRepo.FindByUserAndID(userID, listingID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrListingNotFound) {
			return nil, apperrors.ErrListingNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			return nil, apperrors.ErrInvalidPrice
		}
		listing.Price = price
	}
	if req.Currency != nil {
		listing.Currency = *req.Currency
	}
	if req.Status != nil {
		if !models.ValidListingStatus(*req.Status) {
			return nil, apperrors.NewBadRequestError("invalid listing status")
		}
		// First transition into active stamps the publication time, once.
		if *req.Status == models.ListingStatusActive && listing.PublishedAt == nil {
			now := time.Now()
			listing.PublishedAt = &now
		}
		listing.Status = *req.Status
	}
	if req.URL != nil {
		listing.URL = *req.URL
	}
	if req.Metadata != nil {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata: %w", err)
		}
		listing.Metadata = datatypes.JSON(raw)
	}

	if err := s.listingRepo.Update(listing); err != nil {
		if apperrors.Is(err, repositories.ErrListingNotFound) {
			return nil, apperrors.ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

func (s *listingService) Delete(userID, listingID string) error {
	err := s.listingRepo.Delete(userID, listingID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrListingNotFound) {
			return apperrors.ErrListingNotFound
		}
		return err
	}
	return s.userRepo.ReleaseListingSlots(userID, 1)
}

func defaultCurrency(currency string) string {
	if currency == "" {
		return "USD"
	}
	return currency
}
