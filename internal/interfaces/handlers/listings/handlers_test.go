package listings

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"lumen-backend/internal/application/escrow"
	listsvc "lumen-backend/internal/application/listings"
	"lumen-backend/internal/capability"
	"lumen-backend/internal/domain"
	"lumen-backend/internal/registry"
	"lumen-backend/internal/token"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type handlersFixture struct {
	h       *Handlers
	db      *gorm.DB
	token   *token.Store
	reg     *registry.Store
	tokenID uint64
}

func setupListingsHandlers(t *testing.T) *handlersFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Listing{}, &domain.TokenAccount{}, &domain.TokenAllowance{},
		&domain.LicenseToken{}, &domain.LicenseBalance{}, &domain.RoyaltyRecord{},
		&domain.EscrowAccount{}, &domain.CapabilityGrant{},
		&domain.Transaction{}, &domain.MarketEvent{}, &domain.MarketParameter{},
	))

	tok := token.NewStore()
	reg := registry.NewStore()
	caps := capability.NewChecker()
	mu := &sync.Mutex{}
	esc := &escrow.Service{DB: db, Token: tok, Caps: caps, Account: uuid.New(), Mu: mu}
	svc := &listsvc.Service{
		DB:        db,
		Token:     tok,
		Registry:  reg,
		Escrow:    esc,
		Caps:      caps,
		Principal: uuid.New(),
		Treasury:  uuid.New(),
		Mu:        mu,
	}
	require.NoError(t, caps.Grant(db, svc.Principal, domain.CapEscrowDeposit))

	tokenID, err := reg.NextTokenID(db)
	require.NoError(t, err)
	require.NoError(t, reg.SetRoyalty(db, tokenID, uuid.New(), 500))

	return &handlersFixture{h: &Handlers{Service: svc}, db: db, token: tok, reg: reg, tokenID: tokenID}
}

func appWithActor(actor uuid.UUID) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id": actor.String(),
			"role":    "trader",
		})
		return c.Next()
	})
	return app
}

func TestListLicense_Success(t *testing.T) {
	f := setupListingsHandlers(t)
	seller := uuid.New()
	require.NoError(t, f.reg.Mint(f.db, f.tokenID, seller, 10))

	app := appWithActor(seller)
	app.Post("/list-license", f.h.ListLicense)

	body, _ := json.Marshal(map[string]interface{}{
		"token_id":   f.tokenID,
		"unit_price": 20,
		"amount":     6,
	})
	req := httptest.NewRequest("POST", "/list-license", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, float64(6), data["remaining"])
	assert.Equal(t, true, data["active"])
}

func TestListLicense_WithoutBalanceIsPaymentRequired(t *testing.T) {
	f := setupListingsHandlers(t)
	app := appWithActor(uuid.New())
	app.Post("/list-license", f.h.ListLicense)

	body, _ := json.Marshal(map[string]interface{}{
		"token_id":   f.tokenID,
		"unit_price": 20,
		"amount":     6,
	})
	req := httptest.NewRequest("POST", "/list-license", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
}

func TestPurchaseLicense_UnknownListing(t *testing.T) {
	f := setupListingsHandlers(t)
	app := appWithActor(uuid.New())
	app.Post("/purchase-license", f.h.PurchaseLicense)

	body, _ := json.Marshal(map[string]interface{}{"listing_id": 42, "amount": 1})
	req := httptest.NewRequest("POST", "/purchase-license", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCancelListing_NotSellerIsForbidden(t *testing.T) {
	f := setupListingsHandlers(t)
	seller := uuid.New()
	require.NoError(t, f.reg.Mint(f.db, f.tokenID, seller, 5))
	listing, err := f.h.Service.List(httptest.NewRequest("GET", "/", nil).Context(), seller, listsvc.ListLicenseInput{
		TokenID: f.tokenID, UnitPrice: 10, Amount: 5,
	})
	require.NoError(t, err)

	app := appWithActor(uuid.New())
	app.Post("/cancel-listing", f.h.CancelListing)

	body, _ := json.Marshal(map[string]interface{}{"listing_id": listing.ListingID})
	req := httptest.NewRequest("POST", "/cancel-listing", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGetListedLicenses(t *testing.T) {
	f := setupListingsHandlers(t)
	seller := uuid.New()
	require.NoError(t, f.reg.Mint(f.db, f.tokenID, seller, 5))
	_, err := f.h.Service.List(httptest.NewRequest("GET", "/", nil).Context(), seller, listsvc.ListLicenseInput{
		TokenID: f.tokenID, UnitPrice: 10, Amount: 5,
	})
	require.NoError(t, err)

	app := appWithActor(uuid.New())
	app.Get("/get-listed-licenses", f.h.GetListedLicenses)

	resp, err := app.Test(httptest.NewRequest("GET", "/get-listed-licenses", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data, _ := result["data"].([]interface{})
	assert.Len(t, data, 1)
}

func TestGetListingFee(t *testing.T) {
	f := setupListingsHandlers(t)
	require.NoError(t, f.db.Create(&domain.MarketParameter{Name: domain.ParamListingFee, Value: 30}).Error)

	app := appWithActor(uuid.New())
	app.Get("/get-listing-fee", f.h.GetListingFee)

	resp, err := app.Test(httptest.NewRequest("GET", "/get-listing-fee", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, float64(30), data["fee"])
}
