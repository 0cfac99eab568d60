package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenAccount is a fungible value-token balance, in the smallest token unit.
type TokenAccount struct {
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;primaryKey" json:"account_id"`
	Balance   int64     `gorm:"column:balance;not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TokenAccount) TableName() string {
	return "TokenAccounts"
}

// TokenAllowance is the amount a spender may move out of an owner's balance.
type TokenAllowance struct {
	Owner     uuid.UUID `gorm:"column:owner;type:uuid;primaryKey" json:"owner"`
	Spender   uuid.UUID `gorm:"column:spender;type:uuid;primaryKey" json:"spender"`
	Amount    int64     `gorm:"column:amount;not null;default:0" json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TokenAllowance) TableName() string {
	return "TokenAllowances"
}
