// handlers/handlers.go - HTTP wiring and error mapping
package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"taskhub/apperrors"
	"taskhub/middleware"
	"taskhub/models"
	"taskhub/services"
)

// Handler holds the services behind every route.
type Handler struct {
	Users     *services.UserService
	Teams     *services.TeamService
	Tasks     *services.TaskService
	Comments  *services.CommentService
	Dashboard *services.DashboardService
	Feed      *services.CommentFeed
	Auth      *middleware.Auth
}

// Register mounts the API. authLimit guards the login route and may be nil.
func (h *Handler) Register(app *fiber.App, authLimit fiber.Handler) {
	app.Get("/health", Health)

	api := app.Group("/api")

	// ================== AUTH ==================
	login := []fiber.Handler{h.Login}
	if authLimit != nil {
		login = append([]fiber.Handler{authLimit}, login...)
	}
	api.Post("/auth/login", login...)

	protected := api.Group("", h.Auth.Middleware())
	protected.Get("/me", h.Me)

	// ================== USERS ==================
	admin := middleware.RequireRole(models.RoleAdministrator)
	protected.Post("/users", admin, h.CreateUser)
	protected.Put("/users/:id/role", admin, h.ChangeRole)
	protected.Put("/users/:id/active", admin, h.SetUserActive)
	protected.Get("/users/:id/tasks", h.UserTasks)

	// ================== DASHBOARDS ==================
	protected.Get("/dashboard", h.RoleDashboard)
	protected.Get("/dashboard/employee", h.EmployeeDashboard)
	protected.Get("/dashboard/manager", h.ManagerDashboard)
	protected.Get("/dashboard/admin", h.AdminDashboard)

	// ================== TEAMS ==================
	protected.Post("/teams", h.CreateTeam)
	protected.Get("/teams/:id", h.GetTeam)
	protected.Get("/teams/:id/stats", h.TeamStats)
	protected.Get("/teams/:id/tasks", h.TeamTasks)
	protected.Post("/teams/:id/members", h.AddMember)
	protected.Delete("/teams/:id/members/:userId", h.RemoveMember)
	protected.Put("/teams/:id/manager", h.SetManager)
	protected.Post("/teams/:id/activate", h.ActivateTeam)
	protected.Post("/teams/:id/deactivate", h.DeactivateTeam)

	// ================== TASKS ==================
	protected.Post("/tasks", h.CreateTask)
	protected.Get("/tasks/:id", h.GetTask)
	protected.Put("/tasks/:id", h.UpdateTask)
	protected.Put("/tasks/:id/status", h.UpdateStatus)
	protected.Delete("/tasks/:id", h.DeleteTask)

	// ================== COMMENTS ==================
	protected.Get("/tasks/:id/comments", h.ListComments)
	protected.Post("/tasks/:id/comments", h.PostComment)
	protected.Post("/tasks/:id/comments/read", h.MarkRead)
	protected.Get("/tasks/:id/comments/unread", h.UnreadCount)
	protected.Delete("/comments/:id", h.DeleteComment)

	app.Get("/ws/tasks/:id/comments", h.Auth.WebSocketMiddleware(), h.StreamUpgrade, h.StreamComments())
}

// ErrorHandler maps typed failures to status codes. Internal messages are
// hidden in production.
func ErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := err.Error()

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			switch apperrors.KindOf(err) {
			case apperrors.KindNotFound:
				code = fiber.StatusNotFound
			case apperrors.KindForbidden:
				code = fiber.StatusForbidden
				log.WithFields(log.Fields{"path": c.Path(), "error": message}).Debug("permission denied")
			case apperrors.KindValidation:
				code = fiber.StatusBadRequest
			case apperrors.KindUnauthorized:
				code = fiber.StatusUnauthorized
			default:
				log.WithError(err).WithFields(log.Fields{"method": c.Method(), "path": c.Path()}).Error("request failed")
			}
		}

		if production && code == fiber.StatusInternalServerError {
			message = "An error occurred. Please try again later."
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}
