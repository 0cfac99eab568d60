// Package capability holds the explicit principal-to-capability grant table.
// Privileged operations (escrow deposit, admin paths) check a grant row at
// call time; nothing is inferred from roles or types.
package capability

import (
	"errors"

	"lumen-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Checker struct{}

func NewChecker() *Checker {
	return &Checker{}
}

// Grant gives principal the capability. Granting twice is a no-op.
func (c *Checker) Grant(tx *gorm.DB, principal uuid.UUID, capability string) error {
	has, err := c.Has(tx, principal, capability)
	if err != nil || has {
		return err
	}
	return tx.Create(&domain.CapabilityGrant{Principal: principal, Capability: capability}).Error
}

// Revoke removes the capability from principal. Revoking an absent grant is a no-op.
func (c *Checker) Revoke(tx *gorm.DB, principal uuid.UUID, capability string) error {
	return tx.Where("principal = ? AND capability = ?", principal, capability).
		Delete(&domain.CapabilityGrant{}).Error
}

// Has reports whether principal holds the capability.
func (c *Checker) Has(tx *gorm.DB, principal uuid.UUID, capability string) (bool, error) {
	var grant domain.CapabilityGrant
	err := tx.Where("principal = ? AND capability = ?", principal, capability).First(&grant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
