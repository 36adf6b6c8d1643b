package repositories

import (
	"errors"
	"time"

	"crosslist_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(user *models.User) error
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByStripeCustomerID(customerID string) (*models.User, error)

	// EnsureUser creates a default free-plan row for id if none exists and
	// returns the row either way. Safe to call concurrently.
	EnsureUser(id, email string) (*models.User, error)

	UpdatePlan(userID string, plan models.PlanType) error
	SetStripeCustomerID(userID, customerID string) error

	// ReserveListingSlots atomically increments listings_count by up to n and
	// returns how many slots were granted. limit < 0 means unlimited; with a
	// limit the increment only applies while the resulting count stays within
	// it, shrinking n under contention instead of overshooting.
	ReserveListingSlots(userID string, n, limit int) (int, error)

	// ReleaseListingSlots decrements listings_count by n, flooring at zero.
	// Used when reserved slots go unused (failed inserts) and on deletes.
	ReleaseListingSlots(userID string, n int) error
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepositoryImpl) FindByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByStripeCustomerID(customerID string) (*models.User, error) {
	var user models.User
	err := r.db.Where("stripe_customer_id = ?", customerID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) EnsureUser(id, email string) (*models.User, error) {
	if email == "" {
		// Callers that only know the user id pass an empty email. The column
		// is unique and not null, so derive a placeholder from the id.
		email = id + "@pending.invalid"
	}

	user := &models.User{
		BaseModel: models.BaseModel{ID: id},
		Email:     email,
		PlanType:  models.PlanFree,
	}

	// Idempotent upsert: the auth webhook that normally creates the user may
	// not have landed yet when the first API call arrives.
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(user).Error
	if err != nil {
		return nil, err
	}

	return r.FindByID(id)
}

func (r *UserRepositoryImpl) UpdatePlan(userID string, plan models.PlanType) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"plan_type":  plan,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) SetStripeCustomerID(userID, customerID string) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"stripe_customer_id": customerID,
		"updated_at":         time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) ReserveListingSlots(userID string, n, limit int) (int, error) {
	if n <= 0 {
		return 0, nil
	}

	if limit < 0 {
		result := r.db.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("listings_count", gorm.Expr("listings_count + ?", n))
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 0 {
			return 0, ErrUserNotFound
		}
		return n, nil
	}

	// Conditional update, retried with a shrunken n when a concurrent sync
	// took some of the remaining slots between our read and write.
	want := n
	for attempt := 0; attempt < 3; attempt++ {
		user, err := r.FindByID(userID)
		if err != nil {
			return 0, err
		}

		remaining := limit - user.ListingsCount
		if remaining <= 0 {
			return 0, nil
		}
		if want > remaining {
			want = remaining
		}

		result := r.db.Model(&models.User{}).
			Where("id = ? AND listings_count + ? <= ?", userID, want, limit).
			UpdateColumn("listings_count", gorm.Expr("listings_count + ?", want))
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 1 {
			return want, nil
		}
	}

	return 0, nil
}

func (r *UserRepositoryImpl) ReleaseListingSlots(userID string, n int) error {
	if n <= 0 {
		return nil
	}
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("listings_count", gorm.Expr(
			"CASE WHEN listings_count >= ? THEN listings_count - ? ELSE 0 END", n, n)).Error
}
