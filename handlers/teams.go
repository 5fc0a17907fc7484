// handlers/teams.go - Team HTTP handlers
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"taskhub/middleware"
	"taskhub/utils"
)

type memberRequest struct {
	UserID uint `json:"user_id"`
}

func (r memberRequest) validate() error {
	if r.UserID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "user_id is required")
	}
	return nil
}

// actorAndTeam extracts the caller and the :id team parameter.
func actorAndTeam(c *fiber.Ctx) (uint, uint, error) {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return 0, 0, err
	}
	teamID, err := utils.ParamID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	return actorID, teamID, nil
}

// ================== TEAM LIFECYCLE ==================

// CreateTeam
// POST /api/teams
func (h *Handler) CreateTeam(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}

	team, err := h.Teams.CreateTeam(c.UserContext(), actorID, req.Name, req.Description)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"message": "Team created successfully",
		"team":    team,
	})
}

// GetTeam returns the team with its manager and members.
// GET /api/teams/:id
func (h *Handler) GetTeam(c *fiber.Ctx) error {
	actorID, teamID, err := actorAndTeam(c)
	if err != nil {
		return err
	}
	detail, err := h.Teams.GetTeam(c.UserContext(), actorID, teamID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"team":    detail.Team,
		"manager": detail.Manager,
		"members": detail.Members,
	})
}

// ActivateTeam
// POST /api/teams/:id/activate
func (h *Handler) ActivateTeam(c *fiber.Ctx) error {
	return h.setTeamActive(c, true)
}

// DeactivateTeam soft-deletes the team.
// POST /api/teams/:id/deactivate
func (h *Handler) DeactivateTeam(c *fiber.Ctx) error {
	return h.setTeamActive(c, false)
}

func (h *Handler) setTeamActive(c *fiber.Ctx, active bool) error {
	actorID, teamID, err := actorAndTeam(c)
	if err != nil {
		return err
	}
	team, err := h.Teams.SetActive(c.UserContext(), actorID, teamID, active)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"team": team})
}

// SetManager
// PUT /api/teams/:id/manager
func (h *Handler) SetManager(c *fiber.Ctx) error {
	actorID, teamID, err := actorAndTeam(c)
	if err != nil {
		return err
	}
	var req memberRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	team, err := h.Teams.SetManager(c.UserContext(), actorID, teamID, req.UserID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"team": team})
}

// ================== TEAM MEMBERSHIP ==================

// AddMember is idempotent; "added" reports whether anything changed.
// POST /api/teams/:id/members
func (h *Handler) AddMember(c *fiber.Ctx) error {
	actorID, teamID, err := actorAndTeam(c)
	if err != nil {
		return err
	}
	var req memberRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	added, err := h.Teams.AddMember(c.UserContext(), actorID, teamID, req.UserID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"added": added})
}

// RemoveMember
// DELETE /api/teams/:id/members/:userId
func (h *Handler) RemoveMember(c *fiber.Ctx) error {
	actorID, teamID, err := actorAndTeam(c)
	if err != nil {
		return err
	}
	userID, err := utils.ParamID(c, "userId")
	if err != nil {
		return err
	}

	removed, err := h.Teams.RemoveMember(c.UserContext(), actorID, teamID, userID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"removed": removed})
}

// ================== TEAM STATISTICS ==================

// TeamStats
// GET /api/teams/:id/stats
func (h *Handler) TeamStats(c *fiber.Ctx) error {
	actorID, teamID, err := actorAndTeam(c)
	if err != nil {
		return err
	}
	stats, err := h.Teams.Stats(c.UserContext(), actorID, teamID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"stats": stats})
}

// TeamTasks returns the team's tasks in dashboard buckets.
// GET /api/teams/:id/tasks
func (h *Handler) TeamTasks(c *fiber.Ctx) error {
	actorID, teamID, err := actorAndTeam(c)
	if err != nil {
		return err
	}
	loc, err := utils.Location(c)
	if err != nil {
		return err
	}
	buckets, err := h.Dashboard.Team(c.UserContext(), actorID, teamID, loc)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"buckets": buckets,
		"counts":  buckets.Counts(),
	})
}
