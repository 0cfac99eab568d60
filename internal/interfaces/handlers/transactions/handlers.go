package transactions

import (
	txsvc "lumen-backend/internal/application/transactions"
	"lumen-backend/internal/middleware"
	"lumen-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *txsvc.Service
}

// GetTransactions GET /api/v1/transactions/get-transactions: ledger rows
// where the caller is payer or payee, newest first.
func (h *Handlers) GetTransactions(c *fiber.Ctx) error {
	caller := middleware.Actor(c)
	if caller == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	txs, err := h.Service.ViewAccountTransactions(c.Context(), caller)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transactions fetched successfully", txs, nil)
}
