package escrow

import (
	"context"
	"sync"
	"testing"

	"lumen-backend/internal/capability"
	"lumen-backend/internal/domain"
	"lumen-backend/internal/pkg/apperrors"
	"lumen-backend/internal/token"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type escrowFixture struct {
	svc     *Service
	db      *gorm.DB
	token   *token.Store
	caps    *capability.Checker
	manager uuid.UUID
}

func setupEscrowTest(t *testing.T) *escrowFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.TokenAccount{}, &domain.TokenAllowance{},
		&domain.EscrowAccount{}, &domain.CapabilityGrant{}, &domain.Transaction{},
	))

	tok := token.NewStore()
	caps := capability.NewChecker()
	manager := uuid.New()
	require.NoError(t, caps.Grant(db, manager, domain.CapEscrowDeposit))

	svc := &Service{
		DB:      db,
		Token:   tok,
		Caps:    caps,
		Account: uuid.New(),
		Mu:      &sync.Mutex{},
	}
	return &escrowFixture{svc: svc, db: db, token: tok, caps: caps, manager: manager}
}

func TestDeposit_RequiresCapability(t *testing.T) {
	f := setupEscrowTest(t)
	stranger := uuid.New()

	err := f.svc.Deposit(context.Background(), stranger, uuid.New(), 100)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestDeposit_AccumulatesPending(t *testing.T) {
	f := setupEscrowTest(t)
	payee := uuid.New()

	require.NoError(t, f.svc.Deposit(context.Background(), f.manager, payee, 100))
	require.NoError(t, f.svc.Deposit(context.Background(), f.manager, payee, 50))

	pending, err := f.svc.BalanceOf(context.Background(), payee)
	require.NoError(t, err)
	assert.Equal(t, int64(150), pending)
}

func TestDeposit_RejectsNonPositive(t *testing.T) {
	f := setupEscrowTest(t)

	err := f.svc.Deposit(context.Background(), f.manager, uuid.New(), 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestWithdraw_PaysFullPendingBalance(t *testing.T) {
	f := setupEscrowTest(t)
	payee := uuid.New()

	// Fund the escrow token account to back the pending balance.
	require.NoError(t, f.token.Mint(f.db, f.svc.Account, 150))
	require.NoError(t, f.svc.Deposit(context.Background(), f.manager, payee, 150))

	amount, err := f.svc.Withdraw(context.Background(), payee)
	require.NoError(t, err)
	assert.Equal(t, int64(150), amount)

	pending, _ := f.svc.BalanceOf(context.Background(), payee)
	assert.Equal(t, int64(0), pending)
	bal, _ := f.token.BalanceOf(f.db, payee)
	assert.Equal(t, int64(150), bal)

	// Withdrawal leaves a ledger row.
	var tx domain.Transaction
	require.NoError(t, f.db.Where("type = ?", domain.TxWithdraw).First(&tx).Error)
	assert.Equal(t, int64(150), tx.Amount)
}

func TestWithdraw_EmptyBalance(t *testing.T) {
	f := setupEscrowTest(t)

	_, err := f.svc.Withdraw(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrEmptyBalance)
}

func TestWithdraw_TwiceFailsSecondTime(t *testing.T) {
	f := setupEscrowTest(t)
	payee := uuid.New()
	require.NoError(t, f.token.Mint(f.db, f.svc.Account, 80))
	require.NoError(t, f.svc.Deposit(context.Background(), f.manager, payee, 80))

	_, err := f.svc.Withdraw(context.Background(), payee)
	require.NoError(t, err)

	_, err = f.svc.Withdraw(context.Background(), payee)
	assert.ErrorIs(t, err, apperrors.ErrEmptyBalance)
}

func TestWithdraw_RollsBackWhenEscrowUnderfunded(t *testing.T) {
	f := setupEscrowTest(t)
	payee := uuid.New()

	// Pending balance recorded but the escrow token account holds nothing,
	// so the payout transfer must fail and the zeroing must roll back.
	require.NoError(t, f.svc.Deposit(context.Background(), f.manager, payee, 60))

	_, err := f.svc.Withdraw(context.Background(), payee)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	pending, _ := f.svc.BalanceOf(context.Background(), payee)
	assert.Equal(t, int64(60), pending)
}

func TestBalanceOf_UnknownIsZero(t *testing.T) {
	f := setupEscrowTest(t)

	pending, err := f.svc.BalanceOf(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending)
}
