package sales

import (
	"strconv"

	salesvc "lumen-backend/internal/application/sales"
	"lumen-backend/internal/middleware"
	"lumen-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *salesvc.Service
}

// CreateSale POST /api/v1/sales/create-sale
func (h *Handlers) CreateSale(c *fiber.Ctx) error {
	var body struct {
		MaxSupply       int64 `json:"max_supply"`
		StartTime       int64 `json:"start_time"`
		DurationSeconds int64 `json:"duration_seconds"`
		UnitPrice       int64 `json:"unit_price"`
		RoyaltyBps      int64 `json:"royalty_bps"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	provider := middleware.Actor(c)
	if provider == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	sale, err := h.Service.Create(c.Context(), provider, salesvc.CreateSaleInput{
		MaxSupply:       body.MaxSupply,
		StartTime:       body.StartTime,
		DurationSeconds: body.DurationSeconds,
		UnitPrice:       body.UnitPrice,
		RoyaltyBps:      body.RoyaltyBps,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Sale created successfully", sale, nil)
}

// Participate POST /api/v1/sales/participate
func (h *Handlers) Participate(c *fiber.Ctx) error {
	var body struct {
		SaleID uint64 `json:"sale_id"`
		Amount int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	buyer := middleware.Actor(c)
	if buyer == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	tokenID, err := h.Service.Participate(c.Context(), buyer, body.SaleID, body.Amount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Sale participation successful", fiber.Map{
		"sale_id":  body.SaleID,
		"token_id": tokenID,
		"amount":   body.Amount,
	}, nil)
}

// ForceClose POST /api/v1/sales/force-close
func (h *Handlers) ForceClose(c *fiber.Ctx) error {
	var body struct {
		SaleID uint64 `json:"sale_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	caller := middleware.Actor(c)
	if caller == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.ForceClose(c.Context(), caller, body.SaleID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Sale closed successfully", fiber.Map{"sale_id": body.SaleID}, nil)
}

// GetSale GET /api/v1/sales/get-sale/:sale_id
func (h *Handlers) GetSale(c *fiber.Ctx) error {
	saleID, err := parseID(c, "sale_id")
	if err != nil {
		return response.Error(c, "Invalid sale_id format", fiber.StatusBadRequest, nil)
	}
	sale, err := h.Service.Fetch(c.Context(), saleID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Sale fetched successfully", sale, nil)
}

// GetActiveSales GET /api/v1/sales/get-active-sales
func (h *Handlers) GetActiveSales(c *fiber.Ctx) error {
	sales, err := h.Service.FetchActive(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Active sales fetched successfully", sales, nil)
}

// SetListingFee PATCH /api/v1/sales/set-listing-fee
func (h *Handlers) SetListingFee(c *fiber.Ctx) error {
	var body struct {
		Fee int64 `json:"fee"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	caller := middleware.Actor(c)
	if caller == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.SetListingFee(c.Context(), caller, body.Fee); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listing fee updated successfully", fiber.Map{"fee": body.Fee}, nil)
}

func parseID(c *fiber.Ctx, name string) (uint64, error) {
	return strconv.ParseUint(c.Params(name), 10, 64)
}
