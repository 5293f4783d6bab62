package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/helpdesk/internal/api/dto"
	"github.com/quickdesk/helpdesk/internal/auth"
	"github.com/quickdesk/helpdesk/internal/domain"
	"github.com/quickdesk/helpdesk/internal/service"
	apperrors "github.com/quickdesk/helpdesk/pkg/util"
)

// ActivityHandler serves read access to the audit ledger (staff only).
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler constructs handler.
func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: activityService}
}

// ForTicket GET /staff/tickets/:id/activity.
func (h *ActivityHandler) ForTicket(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.service.ForTicket(c.Context(), ticketID, parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": activityResponses(entries)})
}

// ForUser GET /staff/users/:id/activity.
func (h *ActivityHandler) ForUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.service.ForUser(c.Context(), userID, parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": activityResponses(entries)})
}

// Recent GET /staff/activity.
func (h *ActivityHandler) Recent(c *fiber.Ctx) error {
	entries, err := h.service.Recent(c.Context(), parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": activityResponses(entries)})
}

// Mine GET /activity. Any authenticated user may read their own trail.
func (h *ActivityHandler) Mine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	entries, err := h.service.ForUser(c.Context(), principal.User.ID, parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": activityResponses(entries)})
}

func activityResponses(entries []domain.ActivityLogEntry) []dto.ActivityEntryResponse {
	items := make([]dto.ActivityEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.ActivityFromDomain(&entries[i]))
	}
	return items
}
