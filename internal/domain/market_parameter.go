package domain

import "time"

// Market parameter names.
const (
	ParamListingFee = "listing_fee"
)

// MarketParameter is an admin-maintained numeric setting, keyed by name.
type MarketParameter struct {
	Name      string    `gorm:"column:name;type:varchar(40);primaryKey" json:"name"`
	Value     int64     `gorm:"column:value;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MarketParameter) TableName() string {
	return "MarketParameters"
}
