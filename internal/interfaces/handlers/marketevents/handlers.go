package marketevents

import (
	"strconv"

	mesvc "lumen-backend/internal/application/marketevents"
	"lumen-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *mesvc.Service
}

// GetEvents GET /api/v1/market-events/get-events?subject=sale&subject_id=1
// returns the audit trail for a sale or listing, oldest first.
func (h *Handlers) GetEvents(c *fiber.Ctx) error {
	subject := c.Query("subject")
	subjectID, err := strconv.ParseUint(c.Query("subject_id"), 10, 64)
	if err != nil {
		return response.Error(c, "Invalid subject_id format", fiber.StatusBadRequest, nil)
	}
	events, err := h.Service.ViewSubjectEvents(c.Context(), subject, subjectID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Events fetched successfully", events, nil)
}
