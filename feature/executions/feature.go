package executions

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"ticket-etl/core/ledger"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the executions feature.
func NewFeature(led *ledger.Ledger, logger *zap.Logger) *Feature {
	svc := NewService(led, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "executions"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
