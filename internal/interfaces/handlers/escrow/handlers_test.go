package escrow

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	escsvc "lumen-backend/internal/application/escrow"
	"lumen-backend/internal/capability"
	"lumen-backend/internal/domain"
	"lumen-backend/internal/token"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupEscrowHandlers(t *testing.T) (*Handlers, *gorm.DB, uuid.UUID) {
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

	svc := &escsvc.Service{
		DB:      db,
		Token:   tok,
		Caps:    caps,
		Account: uuid.New(),
		Mu:      &sync.Mutex{},
	}
	return &Handlers{Service: svc}, db, manager
}

func appWithActor(actor uuid.UUID) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id": actor.String(),
			"role":    "provider",
		})
		return c.Next()
	})
	return app
}

func TestWithdraw_EmptyBalanceIsConflict(t *testing.T) {
	h, _, _ := setupEscrowHandlers(t)
	app := appWithActor(uuid.New())
	app.Post("/withdraw", h.Withdraw)

	resp, err := app.Test(httptest.NewRequest("POST", "/withdraw", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestWithdraw_PaysOutPending(t *testing.T) {
	h, db, manager := setupEscrowHandlers(t)
	payee := uuid.New()
	tok := token.NewStore()
	require.NoError(t, tok.Mint(db, h.Service.Account, 120))
	require.NoError(t, h.Service.Deposit(context.Background(), manager, payee, 120))

	app := appWithActor(payee)
	app.Post("/withdraw", h.Withdraw)

	resp, err := app.Test(httptest.NewRequest("POST", "/withdraw", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, float64(120), data["amount"])
}

func TestBalance(t *testing.T) {
	h, _, manager := setupEscrowHandlers(t)
	payee := uuid.New()
	require.NoError(t, h.Service.Deposit(context.Background(), manager, payee, 75))

	app := appWithActor(payee)
	app.Get("/balance", h.Balance)

	resp, err := app.Test(httptest.NewRequest("GET", "/balance", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, float64(75), data["pending"])
}

func TestBalance_NoSessionUser(t *testing.T) {
	h, _, _ := setupEscrowHandlers(t)
	app := fiber.New()
	app.Get("/balance", h.Balance)

	resp, err := app.Test(httptest.NewRequest("GET", "/balance", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
