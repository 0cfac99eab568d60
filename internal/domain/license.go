package domain

import (
	"time"

	"github.com/google/uuid"
)

// LicenseToken anchors a registry token id. A row is allocated when a sale is
// created; the auto-increment primary key is the id space.
type LicenseToken struct {
	TokenID   uint64    `gorm:"column:token_id;primaryKey;autoIncrement" json:"token_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (LicenseToken) TableName() string {
	return "LicenseTokens"
}

// LicenseBalance is one account's holding of one license token id.
type LicenseBalance struct {
	TokenID   uint64    `gorm:"column:token_id;primaryKey;autoIncrement:false" json:"token_id"`
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;primaryKey" json:"account_id"`
	Amount    int64     `gorm:"column:amount;not null;default:0" json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LicenseBalance) TableName() string {
	return "LicenseBalances"
}

// RoyaltyRecord stores the royalty terms registered for a token id when its
// sale is created: every secondary purchase routes Bps/10000 of the proceeds
// to Beneficiary.
type RoyaltyRecord struct {
	TokenID     uint64    `gorm:"column:token_id;primaryKey;autoIncrement:false" json:"token_id"`
	Beneficiary uuid.UUID `gorm:"column:beneficiary;type:uuid;not null" json:"beneficiary"`
	Bps         int64     `gorm:"column:bps;not null" json:"bps"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (RoyaltyRecord) TableName() string {
	return "RoyaltyRecords"
}
