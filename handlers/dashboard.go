// handlers/dashboard.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"taskhub/middleware"
	"taskhub/utils"
)

// RoleDashboard picks the view by the caller's role.
// GET /api/dashboard
func (h *Handler) RoleDashboard(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	loc, err := utils.Location(c)
	if err != nil {
		return err
	}
	d, err := h.Dashboard.ForRole(c.UserContext(), actorID, loc)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"dashboard": d})
}

// GET /api/dashboard/employee
func (h *Handler) EmployeeDashboard(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	loc, err := utils.Location(c)
	if err != nil {
		return err
	}
	b, err := h.Dashboard.Employee(c.UserContext(), actorID, loc)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"buckets": b, "counts": b.Counts()})
}

// GET /api/dashboard/manager
func (h *Handler) ManagerDashboard(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	loc, err := utils.Location(c)
	if err != nil {
		return err
	}
	v, err := h.Dashboard.Manager(c.UserContext(), actorID, loc)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"buckets": v.Buckets, "counts": v.Counts(), "teams": v.Teams})
}

// GET /api/dashboard/admin
func (h *Handler) AdminDashboard(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	loc, err := utils.Location(c)
	if err != nil {
		return err
	}
	v, err := h.Dashboard.Administrator(c.UserContext(), actorID, loc)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"buckets":        v.Buckets,
		"counts":         v.Counts(),
		"users_by_role":  v.UsersByRole,
		"active_teams":   v.ActiveTeams,
		"inactive_teams": v.InactiveTeams,
		"top_users":      v.TopUsers,
		"top_teams":      v.TopTeams,
	})
}
