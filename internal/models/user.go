package models

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	PlanType     PlanType `gorm:"type:varchar(20);default:'free'" json:"plan_type"`

	// ListingsCount is a denormalized running total of the user's listings.
	// Mutated only through UserRepository.ReserveListingSlots and
	// ReleaseListingSlots so the free-plan cap is enforced in one conditional
	// update rather than a read-then-write.
	ListingsCount    int     `gorm:"not null;default:0" json:"listings_count"`
	StripeCustomerID *string `gorm:"uniqueIndex" json:"stripe_customer_id,omitempty"`

	// Relations
	ConnectedSites []ConnectedSite `gorm:"foreignKey:UserID" json:"-"`
	Subscription   *Subscription   `gorm:"foreignKey:UserID" json:"-"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
