package domain

import (
	"time"

	"github.com/google/uuid"
)

// Listing is a secondary-market resale offer of license-token balance.
// The listed units are held in market custody for the life of the listing,
// so the same balance can never be listed twice. Remaining only decreases;
// Active flips false when it reaches zero (or on cancel) and never back.
type Listing struct {
	ListingID uint64    `gorm:"column:listing_id;primaryKey;autoIncrement" json:"listing_id"`
	TokenID   uint64    `gorm:"column:token_id;not null;index" json:"token_id"`
	Seller    uuid.UUID `gorm:"column:seller;type:uuid;not null;index" json:"seller"`
	UnitPrice int64     `gorm:"column:unit_price;not null" json:"unit_price"`
	Remaining int64     `gorm:"column:remaining;not null" json:"remaining"`
	Active    bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Listing) TableName() string {
	return "Listings"
}
