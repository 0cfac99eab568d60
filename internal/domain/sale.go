package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sale is a primary, time-bounded, fixed-supply offer of a license token.
// EndTime is absolute (unix seconds); it is derived at creation from the
// start time plus the requested duration. Once Active flips to false it is
// never set back to true.
type Sale struct {
	SaleID     uint64    `gorm:"column:sale_id;primaryKey;autoIncrement" json:"sale_id"`
	TokenID    uint64    `gorm:"column:token_id;not null;index" json:"token_id"`
	Provider   uuid.UUID `gorm:"column:provider;type:uuid;not null;index" json:"provider"`
	MaxSupply  int64     `gorm:"column:max_supply;not null" json:"max_supply"`
	Sold       int64     `gorm:"column:sold;not null;default:0" json:"sold"`
	StartTime  int64     `gorm:"column:start_time;not null" json:"start_time"`
	EndTime    int64     `gorm:"column:end_time;not null" json:"end_time"`
	UnitPrice  int64     `gorm:"column:unit_price;not null" json:"unit_price"`
	RoyaltyBps int64     `gorm:"column:royalty_bps;not null" json:"royalty_bps"`
	Active     bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Sale) TableName() string {
	return "Sales"
}

// Remaining returns the unsold supply.
func (s *Sale) Remaining() int64 {
	return s.MaxSupply - s.Sold
}

// WithinWindow reports whether now falls inside [StartTime, EndTime).
func (s *Sale) WithinWindow(now int64) bool {
	return now >= s.StartTime && now < s.EndTime
}
