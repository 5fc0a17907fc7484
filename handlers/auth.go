// handlers/auth.go
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/models"
	"taskhub/utils"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login exchanges credentials for a signed token.
// POST /api/auth/login
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}

	user, err := h.Users.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		log.WithField("username", req.Username).Debug("login rejected")
		return err
	}

	token, exp, err := h.Auth.IssueToken(user)
	if err != nil {
		return err
	}
	log.WithField("user", user.ID).Info("user logged in")

	return c.JSON(AuthResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: exp,
		User:      user,
	})
}

// Me returns the caller's account and teams.
// GET /api/me
func (h *Handler) Me(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	user, err := h.Users.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	teams, err := h.Teams.UserTeams(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"user": user, "teams": teams})
}
