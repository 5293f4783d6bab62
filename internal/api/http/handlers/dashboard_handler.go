package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/helpdesk/internal/api/dto"
	"github.com/quickdesk/helpdesk/internal/service"
)

// DashboardHandler serves the staff status tiles.
type DashboardHandler struct {
	service *service.LifecycleService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(lifecycle *service.LifecycleService) *DashboardHandler {
	return &DashboardHandler{service: lifecycle}
}

// Counts GET /staff/dashboard.
func (h *DashboardHandler) Counts(c *fiber.Ctx) error {
	counts, err := h.service.CountsByStatus(c.Context())
	if err != nil {
		return err
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{Total: total, Counts: counts}})
}
