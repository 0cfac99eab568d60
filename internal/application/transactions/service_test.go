package transactions

import (
	"context"
	"testing"
	"time"

	"lumen-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTxTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Transaction{}))
	return &Service{DB: db}, db
}

func TestViewAccountTransactions_PayerOrPayee(t *testing.T) {
	svc, db := setupTxTest(t)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, db.Create(&domain.Transaction{Type: domain.TxParticipate, FromAccount: &a, ToAccount: &b, Amount: 10}).Error)
	require.NoError(t, db.Create(&domain.Transaction{Type: domain.TxPurchase, FromAccount: &b, ToAccount: &c, Amount: 20}).Error)
	require.NoError(t, db.Create(&domain.Transaction{Type: domain.TxWithdraw, FromAccount: &c, ToAccount: &a, Amount: 30}).Error)

	txs, err := svc.ViewAccountTransactions(context.Background(), a)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	txs, err = svc.ViewAccountTransactions(context.Background(), b)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	txs, err = svc.ViewAccountTransactions(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestViewAccountTransactions_NewestFirst(t *testing.T) {
	svc, db := setupTxTest(t)
	a, b := uuid.New(), uuid.New()

	old := domain.Transaction{Type: domain.TxParticipate, FromAccount: &a, ToAccount: &b, Amount: 1, CreatedAt: time.Now().Add(-time.Hour)}
	recent := domain.Transaction{Type: domain.TxPurchase, FromAccount: &a, ToAccount: &b, Amount: 2, CreatedAt: time.Now()}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	txs, err := svc.ViewAccountTransactions(context.Background(), a)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(2), txs[0].Amount)
	assert.Equal(t, int64(1), txs[1].Amount)
}
