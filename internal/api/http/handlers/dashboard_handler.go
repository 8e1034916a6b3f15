package handlers

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/query-desk/internal/api/dto"
	"github.com/spec-kit/query-desk/internal/dashboard"
	apperrors "github.com/spec-kit/query-desk/pkg/util/errorutil"
)

// DashboardHandler exposes the dashboard view state.
type DashboardHandler struct {
	controller *dashboard.Controller
	validator  *validator.Validate
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(controller *dashboard.Controller, v *validator.Validate) *DashboardHandler {
	if v == nil {
		v = validator.New()
	}
	return &DashboardHandler{controller: controller, validator: v}
}

// Show handles GET /dashboard. A filter query parameter switches the active filter.
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	if raw := c.Query("filter"); raw != "" {
		f, err := parseFilter(raw)
		if err != nil {
			return err
		}
		h.controller.SetFilter(f)
	}
	return c.JSON(fiber.Map{"data": dashboardResponse(h.controller.State())})
}

// Refresh handles POST /dashboard/refresh. A failed refresh still returns the
// current state; its error is reported alongside.
func (h *DashboardHandler) Refresh(c *fiber.Ctx) error {
	err := h.controller.Refresh(c.UserContext())
	resp := fiber.Map{"data": dashboardResponse(h.controller.State())}
	if refreshErr := refreshError(err); refreshErr != nil {
		resp["refresh_error"] = refreshErr
	}
	return c.JSON(resp)
}

// Refresh outcome codes that have no DomainError counterpart.
const (
	codeDashboardUnmounted = "DASHBOARD_UNMOUNTED"
	codeRefreshCancelled   = "REFRESH_CANCELLED"
)

// refreshError describes a failed refresh for the response body. A response
// superseded by a newer one is not a failure: the state returned is current.
func refreshError(err error) fiber.Map {
	switch {
	case err == nil, errors.Is(err, dashboard.ErrStaleResponse):
		return nil
	case errors.Is(err, dashboard.ErrUnmounted):
		return fiber.Map{"code": codeDashboardUnmounted, "message": "dashboard is no longer polling"}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.Map{"code": codeRefreshCancelled, "message": "refresh was cancelled before the data service answered"}
	}
	domainErr := apperrors.ToDomainError(err)
	return fiber.Map{"code": domainErr.Code, "message": domainErr.Message}
}

// Select handles PUT /dashboard/selection/:id.
func (h *DashboardHandler) Select(c *fiber.Ctx) error {
	if err := h.controller.Open(c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboardResponse(h.controller.State())})
}

// Deselect handles DELETE /dashboard/selection.
func (h *DashboardHandler) Deselect(c *fiber.Ctx) error {
	h.controller.Close()
	return c.SendStatus(fiber.StatusNoContent)
}

// DismissNotices handles DELETE /dashboard/notices.
func (h *DashboardHandler) DismissNotices(c *fiber.Ctx) error {
	h.controller.DismissNotices()
	return c.SendStatus(fiber.StatusNoContent)
}

// Clear handles POST /admin/clear.
func (h *DashboardHandler) Clear(c *fiber.Ctx) error {
	var req dto.ClearRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		if err := h.validator.Struct(req); err != nil {
			return apperrors.NewValidationError("confirm must be a boolean", nil)
		}
	}
	confirmed := req.Confirm != nil && *req.Confirm
	if err := h.controller.ClearAll(c.UserContext(), confirmed); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboardResponse(h.controller.State())})
}
