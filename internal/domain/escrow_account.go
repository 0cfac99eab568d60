package domain

import (
	"time"

	"github.com/google/uuid"
)

// EscrowAccount tracks the pending-withdrawal balance owed to one principal.
// Rows are created implicitly on first deposit. The sum of all Pending values
// must never exceed the value-token balance held by the escrow principal.
type EscrowAccount struct {
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;primaryKey" json:"account_id"`
	Pending   int64     `gorm:"column:pending;not null;default:0" json:"pending"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (EscrowAccount) TableName() string {
	return "EscrowAccounts"
}
