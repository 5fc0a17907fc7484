// handlers/users.go - Account administration and per-user task lists
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"taskhub/middleware"
	"taskhub/models"
	"taskhub/services"
	"taskhub/utils"
)

type CreateUserRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

// CreateUser
// POST /api/users
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	var req CreateUserRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return err
	}

	user, err := h.Users.Create(c.UserContext(), actorID, services.NewUser{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        role,
	})
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusCreated, fiber.Map{"user": user})
}

// ChangeRole
// PUT /api/users/:id/role
func (h *Handler) ChangeRole(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	userID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return err
	}

	user, err := h.Users.ChangeRole(c.UserContext(), actorID, userID, role)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"user": user})
}

// SetUserActive
// PUT /api/users/:id/active
func (h *Handler) SetUserActive(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	userID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Active *bool `json:"active"`
	}
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}
	if req.Active == nil {
		return fiber.NewError(fiber.StatusBadRequest, "active is required")
	}

	user, err := h.Users.SetActive(c.UserContext(), actorID, userID, *req.Active)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"user": user})
}

// UserTasks lists a user's tasks, most recent first.
// GET /api/users/:id/tasks
func (h *Handler) UserTasks(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	userID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	list, err := h.Tasks.UserTasks(c.UserContext(), actorID, userID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"tasks": list, "count": len(list)})
}
