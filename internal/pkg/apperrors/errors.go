// Package apperrors defines the failure kinds surfaced by the marketplace
// core. Every mutating operation is all-or-nothing: any of these errors means
// no state changed. Handlers map them to HTTP status codes with Status.
package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrNotFound - unknown sale, listing or royalty record id.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized - caller lacks the role, ownership or capability required.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidWindow - sale time window malformed at creation.
	ErrInvalidWindow = errors.New("invalid sale window")
	// ErrSaleInactive - sale or listing is closed, not yet started, or expired.
	ErrSaleInactive = errors.New("sale inactive")
	// ErrSupplyExceeded - requested amount exceeds remaining supply.
	ErrSupplyExceeded = errors.New("supply exceeded")
	// ErrInsufficientFunds - payer's token balance or allowance too low.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientBalance - lister's registry balance too low or absent.
	ErrInsufficientBalance = errors.New("insufficient license balance")
	// ErrFeeNotPaid - listing attempted without the listing-fee transfer succeeding.
	ErrFeeNotPaid = errors.New("listing fee not paid")
	// ErrEmptyBalance - withdraw attempted with zero pending balance.
	ErrEmptyBalance = errors.New("empty escrow balance")
	// ErrValidation - malformed request values (non-positive amounts, bps out of range).
	ErrValidation = errors.New("invalid request")
)

// Status returns the HTTP status code for a core error, or 500 for anything
// not in the set above.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidWindow),
		errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrSaleInactive),
		errors.Is(err, ErrSupplyExceeded),
		errors.Is(err, ErrEmptyBalance):
		return fiber.StatusConflict
	case errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrFeeNotPaid):
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusInternalServerError
	}
}
