// Package token implements the fungible value-token ledger the marketplace
// settles in: per-account balances plus owner-to-spender allowances, all in
// the smallest token unit.
package token

import (
	"errors"
	"fmt"

	"lumen-backend/internal/domain"
	"lumen-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger is the value-token surface the marketplace services consume. Every
// method takes the caller's transaction handle so token movement commits or
// rolls back with the caller's own state change.
type Ledger interface {
	BalanceOf(tx *gorm.DB, account uuid.UUID) (int64, error)
	Allowance(tx *gorm.DB, owner, spender uuid.UUID) (int64, error)
	Approve(tx *gorm.DB, owner, spender uuid.UUID, amount int64) error
	Mint(tx *gorm.DB, account uuid.UUID, amount int64) error
	Transfer(tx *gorm.DB, from, to uuid.UUID, amount int64) error
	TransferFrom(tx *gorm.DB, payer, spender, recipient uuid.UUID, amount int64) error
}

// Store is the GORM-backed Ledger.
type Store struct{}

// NewStore returns a Ledger over the marketplace database.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) BalanceOf(tx *gorm.DB, account uuid.UUID) (int64, error) {
	var acct domain.TokenAccount
	if err := tx.Where("account_id = ?", account).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return acct.Balance, nil
}

func (s *Store) Allowance(tx *gorm.DB, owner, spender uuid.UUID) (int64, error) {
	var al domain.TokenAllowance
	if err := tx.Where("owner = ? AND spender = ?", owner, spender).First(&al).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return al.Amount, nil
}

// Approve sets (not adds to) the spender's allowance over owner's balance.
func (s *Store) Approve(tx *gorm.DB, owner, spender uuid.UUID, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative allowance", apperrors.ErrValidation)
	}
	var al domain.TokenAllowance
	err := tx.Where("owner = ? AND spender = ?", owner, spender).First(&al).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&domain.TokenAllowance{Owner: owner, Spender: spender, Amount: amount}).Error
	}
	if err != nil {
		return err
	}
	al.Amount = amount
	return tx.Save(&al).Error
}

// Mint credits new units to an account. Privilege is enforced by the caller.
func (s *Store) Mint(tx *gorm.DB, account uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: mint amount must be positive", apperrors.ErrValidation)
	}
	return s.credit(tx, account, amount)
}

// Transfer moves amount from one balance to another with no allowance check.
// Used for outbound payments from an account the caller itself controls.
func (s *Store) Transfer(tx *gorm.DB, from, to uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive", apperrors.ErrValidation)
	}
	if err := s.debit(tx, from, amount); err != nil {
		return err
	}
	return s.credit(tx, to, amount)
}

// TransferFrom moves amount from payer to recipient on behalf of spender,
// consuming the payer's allowance. Fails with ErrInsufficientFunds when
// either allowance or balance is too low.
func (s *Store) TransferFrom(tx *gorm.DB, payer, spender, recipient uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive", apperrors.ErrValidation)
	}
	var al domain.TokenAllowance
	err := tx.Where("owner = ? AND spender = ?", payer, spender).First(&al).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && al.Amount < amount) {
		return fmt.Errorf("%w: allowance too low", apperrors.ErrInsufficientFunds)
	}
	if err != nil {
		return err
	}
	if err := s.debit(tx, payer, amount); err != nil {
		return err
	}
	al.Amount -= amount
	if err := tx.Save(&al).Error; err != nil {
		return err
	}
	return s.credit(tx, recipient, amount)
}

func (s *Store) debit(tx *gorm.DB, account uuid.UUID, amount int64) error {
	var acct domain.TokenAccount
	err := tx.Where("account_id = ?", account).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && acct.Balance < amount) {
		return fmt.Errorf("%w: balance too low", apperrors.ErrInsufficientFunds)
	}
	if err != nil {
		return err
	}
	acct.Balance -= amount
	return tx.Save(&acct).Error
}

func (s *Store) credit(tx *gorm.DB, account uuid.UUID, amount int64) error {
	var acct domain.TokenAccount
	err := tx.Where("account_id = ?", account).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&domain.TokenAccount{AccountID: account, Balance: amount}).Error
	}
	if err != nil {
		return err
	}
	acct.Balance += amount
	return tx.Save(&acct).Error
}
