package listings

import (
	"strconv"

	listsvc "lumen-backend/internal/application/listings"
	"lumen-backend/internal/middleware"
	"lumen-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *listsvc.Service
}

// ListLicense POST /api/v1/listings/list-license
func (h *Handlers) ListLicense(c *fiber.Ctx) error {
	var body struct {
		TokenID   uint64 `json:"token_id"`
		UnitPrice int64  `json:"unit_price"`
		Amount    int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	seller := middleware.Actor(c)
	if seller == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	listing, err := h.Service.List(c.Context(), seller, listsvc.ListLicenseInput{
		TokenID:   body.TokenID,
		UnitPrice: body.UnitPrice,
		Amount:    body.Amount,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "License listed successfully", listing, nil)
}

// PurchaseLicense POST /api/v1/listings/purchase-license
func (h *Handlers) PurchaseLicense(c *fiber.Ctx) error {
	var body struct {
		ListingID uint64 `json:"listing_id"`
		Amount    int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	buyer := middleware.Actor(c)
	if buyer == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.Service.Purchase(c.Context(), buyer, body.ListingID, body.Amount); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "License purchased successfully", fiber.Map{
		"listing_id": body.ListingID,
		"amount":     body.Amount,
	}, nil)
}

// CancelListing POST /api/v1/listings/cancel-listing
func (h *Handlers) CancelListing(c *fiber.Ctx) error {
	var body struct {
		ListingID uint64 `json:"listing_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	caller := middleware.Actor(c)
	if caller == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.Cancel(c.Context(), caller, body.ListingID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listing cancelled successfully", fiber.Map{"listing_id": body.ListingID}, nil)
}

// GetListing GET /api/v1/listings/get-listing/:listing_id
func (h *Handlers) GetListing(c *fiber.Ctx) error {
	listingID, err := parseID(c, "listing_id")
	if err != nil {
		return response.Error(c, "Invalid listing_id format", fiber.StatusBadRequest, nil)
	}
	listing, err := h.Service.Fetch(c.Context(), listingID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listing fetched successfully", listing, nil)
}

// GetListedLicenses GET /api/v1/listings/get-listed-licenses
func (h *Handlers) GetListedLicenses(c *fiber.Ctx) error {
	listings, err := h.Service.FetchListed(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listed licenses fetched successfully", listings, nil)
}

// GetListingFee GET /api/v1/listings/get-listing-fee
func (h *Handlers) GetListingFee(c *fiber.Ctx) error {
	fee, err := h.Service.ListingFee(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listing fee fetched successfully", fiber.Map{"fee": fee}, nil)
}

func parseID(c *fiber.Ctx, name string) (uint64, error) {
	return strconv.ParseUint(c.Params(name), 10, 64)
}
