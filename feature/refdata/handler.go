package refdata

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"ticket-etl/core/logger"
	"ticket-etl/core/sync"
)

// Handler handles HTTP requests for reference data.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the refdata routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/refdata")
	group.Get("/status", h.HandleStatus)
	group.Post("/sync", h.HandleSync)
}

// HandleStatus returns row counts and high-water marks per reference type.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	statuses, err := h.service.Status(c.Context())
	if err != nil {
		l.Error("Status check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(statuses)
}

// HandleSync triggers a synchronization run. The mode query parameter
// selects full or incremental; incremental is the default.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	mode := sync.Mode(c.Query("mode", string(sync.ModeIncremental)))
	if mode != sync.ModeFull && mode != sync.ModeIncremental {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "mode must be full or incremental",
		})
	}

	rec, err := h.service.Sync(c.Context(), mode, Descriptors)
	if err != nil {
		l.Error("Synchronization failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":     err.Error(),
			"execution": rec,
		})
	}

	return c.JSON(rec)
}
