package domain

import (
	"time"

	"github.com/google/uuid"
)

// Capability names. Grants are explicit rows, never inferred from roles.
const (
	CapEscrowDeposit = "escrow:deposit"
	CapMarketAdmin   = "market:admin"
)

// CapabilityGrant permits one principal to invoke one privileged operation.
type CapabilityGrant struct {
	Principal  uuid.UUID `gorm:"column:principal;type:uuid;primaryKey" json:"principal"`
	Capability string    `gorm:"column:capability;type:varchar(40);primaryKey" json:"capability"`
	CreatedAt  time.Time `json:"created_at"`
}

func (CapabilityGrant) TableName() string {
	return "CapabilityGrants"
}
