// handlers/comments.go - Comment thread HTTP handlers
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"taskhub/middleware"
	"taskhub/utils"
)

// GET /api/tasks/:id/comments
func (h *Handler) ListComments(c *fiber.Ctx) error {
	actorID, taskID, err := actorAndTask(c)
	if err != nil {
		return err
	}
	thread, err := h.Comments.List(c.UserContext(), actorID, taskID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"comments": thread, "count": len(thread)})
}

// POST /api/tasks/:id/comments
func (h *Handler) PostComment(c *fiber.Ctx) error {
	actorID, taskID, err := actorAndTask(c)
	if err != nil {
		return err
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.Comments.Post(c.UserContext(), actorID, taskID, req.Text)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusCreated, fiber.Map{"comment": comment})
}

// DELETE /api/comments/:id
func (h *Handler) DeleteComment(c *fiber.Ctx) error {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	commentID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.Comments.Delete(c.UserContext(), actorID, commentID); err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Comment deleted"})
}

// POST /api/tasks/:id/comments/read
func (h *Handler) MarkRead(c *fiber.Ctx) error {
	actorID, taskID, err := actorAndTask(c)
	if err != nil {
		return err
	}
	wm, err := h.Comments.MarkRead(c.UserContext(), actorID, taskID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"last_read_at": wm.LastReadAt})
}

// GET /api/tasks/:id/comments/unread
func (h *Handler) UnreadCount(c *fiber.Ctx) error {
	actorID, taskID, err := actorAndTask(c)
	if err != nil {
		return err
	}
	n, err := h.Comments.UnreadCount(c.UserContext(), actorID, taskID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"unread": n})
}
