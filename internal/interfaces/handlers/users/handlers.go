package users

import (
	usersvc "lumen-backend/internal/application/users"
	"lumen-backend/internal/middleware"
	"lumen-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *usersvc.Service
}

// CreateUser POST /api/v1/users/create-user: public registration.
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var in usersvc.CreateUserInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.CreateUser(c.Context(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "User created successfully", u, nil)
}

// UpdateRole PATCH /api/v1/users/update-role: admin assigns a user's role.
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	userID, err := uuid.Parse(body.UserID)
	if err != nil {
		return response.Error(c, "Invalid user_id format", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.UpdateRole(c.Context(), userID, body.Role)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Role updated successfully", u, nil)
}

// ViewUser GET /api/v1/users/view-user: the caller's own record.
func (h *Handlers) ViewUser(c *fiber.Ctx) error {
	caller := middleware.Actor(c)
	if caller == uuid.Nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	u, err := h.Service.ViewUser(c.Context(), caller)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User fetched successfully", u, nil)
}
