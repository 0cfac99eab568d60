// Package transactions exposes the audited value-movement ledger: one row
// per token transfer the marketplace performed (participations, listing
// fees, purchase cuts, escrow withdrawals).
package transactions

import (
	"context"

	"lumen-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// ViewAccountTransactions returns the rows where the account is payer or
// payee, newest first.
func (s *Service) ViewAccountTransactions(ctx context.Context, account uuid.UUID) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := s.DB.WithContext(ctx).
		Where("from_account = ? OR to_account = ?", account, account).
		Order("created_at DESC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}
