package registry

import (
	"strconv"

	"lumen-backend/internal/middleware"
	"lumen-backend/internal/pkg/response"
	regsto "lumen-backend/internal/registry"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Handlers struct {
	DB       *gorm.DB
	Registry regsto.Registry
}

// Balance GET /api/v1/registry/balance/:token_id: caller's license balance.
func (h *Handlers) Balance(c *fiber.Ctx) error {
	tokenID, err := strconv.ParseUint(c.Params("token_id"), 10, 64)
	if err != nil {
		return response.Error(c, "Invalid token_id format", fiber.StatusBadRequest, nil)
	}
	owner := middleware.Actor(c)
	if owner == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	balance, err := h.Registry.BalanceOf(h.DB.WithContext(c.Context()), tokenID, owner)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "License balance fetched successfully", fiber.Map{
		"token_id": tokenID,
		"balance":  balance,
	}, nil)
}

// Royalty GET /api/v1/registry/royalty/:token_id: royalty terms for a token.
func (h *Handlers) Royalty(c *fiber.Ctx) error {
	tokenID, err := strconv.ParseUint(c.Params("token_id"), 10, 64)
	if err != nil {
		return response.Error(c, "Invalid token_id format", fiber.StatusBadRequest, nil)
	}
	beneficiary, bps, err := h.Registry.Royalty(h.DB.WithContext(c.Context()), tokenID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Royalty fetched successfully", fiber.Map{
		"token_id":    tokenID,
		"beneficiary": beneficiary,
		"bps":         bps,
	}, nil)
}
