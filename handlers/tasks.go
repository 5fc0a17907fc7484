// handlers/tasks.go - Task HTTP handlers
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"taskhub/middleware"
	"taskhub/models"
	"taskhub/services"
	"taskhub/tasks"
	"taskhub/utils"
)

// TaskRequest is the body of create and update. Assignee and team are
// ignored on update.
type TaskRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       string   `json:"priority"`
	DueDate        string   `json:"due_date"`
	Tags           string   `json:"tags"`
	EstimatedHours *float64 `json:"estimated_hours"`
	ActualHours    *float64 `json:"actual_hours"`
	AssigneeID     uint     `json:"assignee_id"`
	TeamID         *uint    `json:"team_id"`
}

func (r TaskRequest) draft(loc *time.Location) (tasks.Draft, error) {
	priority, err := models.ParsePriority(r.Priority)
	if err != nil {
		return tasks.Draft{}, err
	}
	due, err := models.ParseDueDate(r.DueDate, loc)
	if err != nil {
		return tasks.Draft{}, err
	}
	return tasks.Draft{
		Title:          r.Title,
		Description:    r.Description,
		Priority:       priority,
		DueDate:        due,
		Tags:           r.Tags,
		EstimatedHours: r.EstimatedHours,
		ActualHours:    r.ActualHours,
	}, nil
}

func actorAndTask(c *fiber.Ctx) (uint, uint, error) {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return 0, 0, err
	}
	taskID, err := utils.ParamID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	return actorID, taskID, nil
}

// parseTaskRequest reads the body and resolves calendar due dates in the
// caller's zone.
func parseTaskRequest(c *fiber.Ctx) (TaskRequest, tasks.Draft, error) {
	var req TaskRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return req, tasks.Draft{}, err
	}
	loc, err := utils.Location(c)
	if err != nil {
		return req, tasks.Draft{}, err
	}
	d, err := req.draft(loc)
	return req, d, err
}

// CreateTask assigns to the caller when assignee_id is omitted.
// POST /api/tasks
func (h *Handler) CreateTask(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	req, d, err := parseTaskRequest(c)
	if err != nil {
		return err
	}
	assignee := req.AssigneeID
	if assignee == 0 {
		assignee = actorID
	}

	task, err := h.Tasks.CreateTask(c.UserContext(), actorID, services.NewTaskInput{
		AssigneeID: assignee,
		TeamID:     req.TeamID,
		Draft:      d,
	})
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusCreated, fiber.Map{"task": task})
}

// GET /api/tasks/:id
func (h *Handler) GetTask(c *fiber.Ctx) error {
	actorID, taskID, err := actorAndTask(c)
	if err != nil {
		return err
	}
	task, err := h.Tasks.GetTask(c.UserContext(), actorID, taskID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"task": task})
}

// PUT /api/tasks/:id
func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	actorID, taskID, err := actorAndTask(c)
	if err != nil {
		return err
	}
	_, d, err := parseTaskRequest(c)
	if err != nil {
		return err
	}
	task, err := h.Tasks.UpdateTask(c.UserContext(), actorID, taskID, d)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"task": task})
}

// UpdateStatus also returns the system comment it appended, if any.
// PUT /api/tasks/:id/status
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	actorID, taskID, err := actorAndTask(c)
	if err != nil {
		return err
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	task, note, err := h.Tasks.UpdateStatus(c.UserContext(), actorID, taskID, status)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"task": task, "comment": note})
}

// DELETE /api/tasks/:id
func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	actorID, taskID, err := actorAndTask(c)
	if err != nil {
		return err
	}
	if err := h.Tasks.DeleteTask(c.UserContext(), actorID, taskID); err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Task deleted"})
}
