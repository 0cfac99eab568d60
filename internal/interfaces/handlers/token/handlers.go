package token

import (
	"lumen-backend/internal/middleware"
	"lumen-backend/internal/pkg/response"
	"lumen-backend/internal/pkg/validation"
	toksto "lumen-backend/internal/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Handlers struct {
	DB    *gorm.DB
	Token toksto.Ledger
}

// Approve POST /api/v1/token/approve: lets a spender move the caller's funds.
func (h *Handlers) Approve(c *fiber.Ctx) error {
	var body struct {
		Spender string `json:"spender"`
		Amount  int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	spender, err := uuid.Parse(body.Spender)
	if err != nil {
		return response.Error(c, "Invalid spender format", fiber.StatusBadRequest, nil)
	}
	if body.Amount < 0 {
		return response.Error(c, "Amount must not be negative", fiber.StatusBadRequest, nil)
	}
	owner := middleware.Actor(c)
	if owner == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	err = h.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		return h.Token.Approve(tx, owner, spender, body.Amount)
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Allowance approved successfully", fiber.Map{
		"spender": spender,
		"amount":  body.Amount,
	}, nil)
}

// Balance GET /api/v1/token/balance: the caller's token balance.
func (h *Handlers) Balance(c *fiber.Ctx) error {
	owner := middleware.Actor(c)
	if owner == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	balance, err := h.Token.BalanceOf(h.DB.WithContext(c.Context()), owner)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Token balance fetched successfully", fiber.Map{"balance": balance}, nil)
}

// Allowance GET /api/v1/token/allowance/:spender: caller's allowance for spender.
func (h *Handlers) Allowance(c *fiber.Ctx) error {
	spender, err := uuid.Parse(c.Params("spender"))
	if err != nil {
		return response.Error(c, "Invalid spender format", fiber.StatusBadRequest, nil)
	}
	owner := middleware.Actor(c)
	if owner == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	amount, err := h.Token.Allowance(h.DB.WithContext(c.Context()), owner, spender)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Allowance fetched successfully", fiber.Map{"amount": amount}, nil)
}

// Mint POST /api/v1/token/mint: admin-only funding of an account.
func (h *Handlers) Mint(c *fiber.Ctx) error {
	var body struct {
		Account string `json:"account"`
		Amount  int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	account, err := uuid.Parse(body.Account)
	if err != nil {
		return response.Error(c, "Invalid account format", fiber.StatusBadRequest, nil)
	}
	if !validation.IsPositiveAmount(body.Amount) {
		return response.Error(c, "Amount must be a positive number", fiber.StatusBadRequest, nil)
	}

	err = h.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		return h.Token.Mint(tx, account, body.Amount)
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Tokens minted successfully", fiber.Map{
		"account": account,
		"amount":  body.Amount,
	}, nil)
}
