// Package registry implements the license registry: per-token-id ownership
// balances and the royalty record registered for each id at sale creation.
package registry

import (
	"errors"
	"fmt"

	"lumen-backend/internal/domain"
	"lumen-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Registry is the license-registry surface the marketplace services consume.
type Registry interface {
	NextTokenID(tx *gorm.DB) (uint64, error)
	Mint(tx *gorm.DB, tokenID uint64, account uuid.UUID, amount int64) error
	Transfer(tx *gorm.DB, tokenID uint64, from, to uuid.UUID, amount int64) error
	BalanceOf(tx *gorm.DB, tokenID uint64, account uuid.UUID) (int64, error)
	SetRoyalty(tx *gorm.DB, tokenID uint64, beneficiary uuid.UUID, bps int64) error
	Royalty(tx *gorm.DB, tokenID uint64) (uuid.UUID, int64, error)
}

// Store is the GORM-backed Registry.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// NextTokenID allocates a fresh token id from the registry's id space.
func (s *Store) NextTokenID(tx *gorm.DB) (uint64, error) {
	t := domain.LicenseToken{}
	if err := tx.Create(&t).Error; err != nil {
		return 0, err
	}
	return t.TokenID, nil
}

// Mint credits newly issued units of tokenID to account.
func (s *Store) Mint(tx *gorm.DB, tokenID uint64, account uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: mint amount must be positive", apperrors.ErrValidation)
	}
	return s.credit(tx, tokenID, account, amount)
}

// Transfer moves units of tokenID between accounts. Fails with
// ErrInsufficientBalance when the source holds fewer than amount; an account
// that never held the token surfaces the same way, since the registry tracks
// balances, not provenance.
func (s *Store) Transfer(tx *gorm.DB, tokenID uint64, from, to uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive", apperrors.ErrValidation)
	}
	var bal domain.LicenseBalance
	err := tx.Where("token_id = ? AND account_id = ?", tokenID, from).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && bal.Amount < amount) {
		return apperrors.ErrInsufficientBalance
	}
	if err != nil {
		return err
	}
	bal.Amount -= amount
	if err := tx.Save(&bal).Error; err != nil {
		return err
	}
	return s.credit(tx, tokenID, to, amount)
}

func (s *Store) BalanceOf(tx *gorm.DB, tokenID uint64, account uuid.UUID) (int64, error) {
	var bal domain.LicenseBalance
	if err := tx.Where("token_id = ? AND account_id = ?", tokenID, account).First(&bal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return bal.Amount, nil
}

// SetRoyalty registers the royalty terms for a token id. Called once, when
// the sale owning the id is created.
func (s *Store) SetRoyalty(tx *gorm.DB, tokenID uint64, beneficiary uuid.UUID, bps int64) error {
	if bps < 0 || bps > 10000 {
		return fmt.Errorf("%w: royalty bps out of range", apperrors.ErrValidation)
	}
	var rec domain.RoyaltyRecord
	err := tx.Where("token_id = ?", tokenID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&domain.RoyaltyRecord{TokenID: tokenID, Beneficiary: beneficiary, Bps: bps}).Error
	}
	if err != nil {
		return err
	}
	rec.Beneficiary = beneficiary
	rec.Bps = bps
	return tx.Save(&rec).Error
}

// Royalty returns the beneficiary and basis points registered for tokenID.
func (s *Store) Royalty(tx *gorm.DB, tokenID uint64) (uuid.UUID, int64, error) {
	var rec domain.RoyaltyRecord
	if err := tx.Where("token_id = ?", tokenID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, 0, fmt.Errorf("%w: no royalty record for token %d", apperrors.ErrNotFound, tokenID)
		}
		return uuid.Nil, 0, err
	}
	return rec.Beneficiary, rec.Bps, nil
}

func (s *Store) credit(tx *gorm.DB, tokenID uint64, account uuid.UUID, amount int64) error {
	var bal domain.LicenseBalance
	err := tx.Where("token_id = ? AND account_id = ?", tokenID, account).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&domain.LicenseBalance{TokenID: tokenID, AccountID: account, Amount: amount}).Error
	}
	if err != nil {
		return err
	}
	bal.Amount += amount
	return tx.Save(&bal).Error
}
