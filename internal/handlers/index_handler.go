package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	ServiceName    = "Product REST API Service"
	ServiceVersion = "1.0"
)

// IndexHandler serves the service descriptor and the health check.
type IndexHandler struct {
	eventsEnabled bool
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(eventsEnabled bool) *IndexHandler {
	return &IndexHandler{eventsEnabled: eventsEnabled}
}

// RegisterRoutes registers the root and health routes with the Fiber app.
func (h *IndexHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleIndex)
	router.Get("/health", h.HandleHealth)
}

// HandleIndex describes the service and where its products live.
func (h *IndexHandler) HandleIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    ServiceName,
		"version": ServiceVersion,
		"paths":   c.BaseURL() + "/products",
	})
}

func (h *IndexHandler) HandleHealth(c *fiber.Ctx) error {
	events := "disabled"
	if h.eventsEnabled {
		events = "enabled"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
		"events": events,
	})
}
