package executions

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"ticket-etl/core/logger"
)

// Handler handles HTTP requests for execution history.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the executions routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/executions")
	group.Get("/", h.HandleRecent)
}

// HandleRecent returns the latest executions, newest first. The limit query
// parameter caps the result size, defaulting to 10.
func (h *Handler) HandleRecent(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	limit := c.QueryInt("limit", 10)
	views, err := h.service.Recent(limit)
	if err != nil {
		l.Error("Failed to read execution history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(views)
}
