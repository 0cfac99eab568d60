package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction value-movement types.
const (
	TxParticipate = "participate"
	TxListingFee  = "listing_fee"
	TxPurchase    = "purchase"
	TxRoyalty     = "royalty"
	TxWithdraw    = "withdraw"
)

// Transaction is one audited value movement in the smallest token unit.
type Transaction struct {
	TxID        uuid.UUID  `gorm:"column:tx_id;type:uuid;primaryKey" json:"tx_id"`
	Type        string     `gorm:"column:type;type:varchar(20);not null" json:"type"`
	FromAccount *uuid.UUID `gorm:"column:from_account;type:uuid;index" json:"from_account"`
	ToAccount   *uuid.UUID `gorm:"column:to_account;type:uuid;index" json:"to_account"`
	Amount      int64      `gorm:"column:amount;not null" json:"amount"`
	TokenID     *uint64    `gorm:"column:token_id" json:"token_id"`
	SaleID      *uint64    `gorm:"column:sale_id" json:"sale_id"`
	ListingID   *uint64    `gorm:"column:listing_id" json:"listing_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Transaction) TableName() string {
	return "Transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TxID == uuid.Nil {
		t.TxID = uuid.New()
	}
	return nil
}
