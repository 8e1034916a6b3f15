package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/query-desk/internal/api/dto"
	"github.com/spec-kit/query-desk/internal/dashboard"
	"github.com/spec-kit/query-desk/internal/domain"
	apperrors "github.com/spec-kit/query-desk/pkg/util/errorutil"
)

// QueriesHandler exposes per-query actions backed by the dashboard controller.
type QueriesHandler struct {
	controller *dashboard.Controller
}

// NewQueriesHandler constructs handler.
func NewQueriesHandler(controller *dashboard.Controller) *QueriesHandler {
	return &QueriesHandler{controller: controller}
}

// List handles GET /queries. The status filter applies to this response only.
func (h *QueriesHandler) List(c *fiber.Ctx) error {
	f, err := parseFilter(c.Query("status"))
	if err != nil {
		return err
	}
	st := h.controller.State()
	all := h.controller.Tickets()
	return c.JSON(fiber.Map{"data": dto.QueryListResponse{
		Filter: f,
		Items:  querySummaries(domain.FilterTickets(all, f), st.InFlight),
		Counts: domain.CountByStatus(all),
	}})
}

// Get handles GET /queries/:id.
func (h *QueriesHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	all := h.controller.Tickets()
	idx := domain.IndexOf(all, id)
	if idx < 0 {
		return apperrors.NewNotFound("query", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": querySummary(all[idx], nil)})
}

// Contact handles GET /queries/:id/contact.
func (h *QueriesHandler) Contact(c *fiber.Ctx) error {
	id := c.Params("id")
	link, err := h.controller.ContactLink(id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ContactResponse{ID: id, Link: link}})
}

// Reply handles POST /queries/:id/reply.
func (h *QueriesHandler) Reply(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.controller.MarkReplied(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboardResponse(h.controller.State())})
}

// Delete handles DELETE /queries/:id. The caller confirms with ?confirm=true.
func (h *QueriesHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.controller.Delete(c.UserContext(), id, c.QueryBool("confirm", false)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboardResponse(h.controller.State())})
}
