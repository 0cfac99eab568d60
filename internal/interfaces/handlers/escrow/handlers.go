package escrow

import (
	escsvc "lumen-backend/internal/application/escrow"
	"lumen-backend/internal/middleware"
	"lumen-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *escsvc.Service
}

// Withdraw POST /api/v1/escrow/withdraw: pays out the caller's full
// pending balance.
func (h *Handlers) Withdraw(c *fiber.Ctx) error {
	caller := middleware.Actor(c)
	if caller == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	amount, err := h.Service.Withdraw(c.Context(), caller)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Escrow withdrawn successfully", fiber.Map{"amount": amount}, nil)
}

// Balance GET /api/v1/escrow/balance: the caller's pending escrow balance.
func (h *Handlers) Balance(c *fiber.Ctx) error {
	caller := middleware.Actor(c)
	if caller == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	pending, err := h.Service.BalanceOf(c.Context(), caller)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Escrow balance fetched successfully", fiber.Map{"pending": pending}, nil)
}
