// Package escrow implements the pull-payment ledger: proceeds owed to
// providers and sellers accumulate as pending balances and are withdrawn on
// demand, never pushed.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lumen-backend/internal/domain"
	"lumen-backend/internal/pkg/apperrors"
	"lumen-backend/internal/token"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service is the escrow ledger. Account is the principal whose value-token
// balance holds all escrowed funds; the solvency invariant is that the sum
// of pending balances never exceeds that token balance.
type Service struct {
	DB      *gorm.DB
	Token   token.Ledger
	Caps    CapabilityChecker
	Account uuid.UUID

	// Mu serializes mutating marketplace operations. Shared with the sale
	// and listing managers so every mutation observes the previous one fully
	// committed.
	Mu *sync.Mutex
}

// CapabilityChecker gates the privileged deposit path.
type CapabilityChecker interface {
	Has(tx *gorm.DB, principal uuid.UUID, capability string) (bool, error)
}

// DepositTx credits account's pending balance inside the caller's
// transaction. The caller must hold the escrow-deposit capability and must
// move the corresponding value tokens into the escrow account in the same
// transaction, so bookkeeping and custody commit as one step.
func (s *Service) DepositTx(tx *gorm.DB, caller, account uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: deposit amount must be positive", apperrors.ErrValidation)
	}
	ok, err := s.Caps.Has(tx, caller, domain.CapEscrowDeposit)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: caller lacks escrow deposit capability", apperrors.ErrUnauthorized)
	}

	var acct domain.EscrowAccount
	err = tx.Where("account_id = ?", account).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&domain.EscrowAccount{AccountID: account, Pending: amount}).Error
	}
	if err != nil {
		return err
	}
	acct.Pending += amount
	return tx.Save(&acct).Error
}

// Deposit is DepositTx in its own transaction, for privileged callers
// operating outside a larger marketplace mutation.
func (s *Service) Deposit(ctx context.Context, caller, account uuid.UUID, amount int64) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.DepositTx(tx, caller, account, amount)
	})
}

// Withdraw pays out the caller's entire pending balance and returns the
// amount transferred. The pending balance is zeroed before the outbound
// token transfer, inside the same transaction, so a concurrent withdraw can
// never observe a stale nonzero balance.
func (s *Service) Withdraw(ctx context.Context, caller uuid.UUID) (int64, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	var amount int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acct domain.EscrowAccount
		err := tx.Where("account_id = ?", caller).First(&acct).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && acct.Pending == 0) {
			return apperrors.ErrEmptyBalance
		}
		if err != nil {
			return err
		}

		amount = acct.Pending
		acct.Pending = 0
		if err := tx.Save(&acct).Error; err != nil {
			return err
		}
		if err := s.Token.Transfer(tx, s.Account, caller, amount); err != nil {
			return err
		}

		from := s.Account
		to := caller
		return tx.Create(&domain.Transaction{
			Type:        domain.TxWithdraw,
			FromAccount: &from,
			ToAccount:   &to,
			Amount:      amount,
		}).Error
	})
	if err != nil {
		return 0, err
	}

	log.Info().Str("account", caller.String()).Int64("amount", amount).Msg("escrow withdrawal")
	return amount, nil
}

// BalanceOf returns account's pending balance.
func (s *Service) BalanceOf(ctx context.Context, account uuid.UUID) (int64, error) {
	var acct domain.EscrowAccount
	if err := s.DB.WithContext(ctx).Where("account_id = ?", account).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return acct.Pending, nil
}
