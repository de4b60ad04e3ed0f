package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"go-dash/internal/engine/events"
	"go-dash/internal/engine/model"
)

type DashboardController struct {
	DashboardService DashboardService
}

func NewDashboardController(dashboardService DashboardService) *DashboardController {
	return &DashboardController{
		DashboardService: dashboardService,
	}
}

// DispatchCommand godoc
// @Summary Dispatch a dashboard command
// @Description Dispatch one engine command and wait for its terminal event
// @Tags session
// @Accept json
// @Produce json
// @Param session path string true "Session ID"
// @Param command body CommandEnvelope true "Command envelope"
// @Success 200 {object} events.Event
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/sessions/{session}/commands [post]
func (ctrl *DashboardController) DispatchCommand(ctx *fiber.Ctx) error {
	session := ctx.Params("session")

	var envelope CommandEnvelope
	if err := ctx.BodyParser(&envelope); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	event, err := ctrl.DashboardService.Dispatch(ctx.UserContext(), session, envelope)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if event.Type == events.TypeCommandFailed {
		status := fiber.StatusInternalServerError
		if payload, ok := event.Payload.(events.CommandFailed); ok && payload.Reason == events.ReasonUserError {
			status = fiber.StatusBadRequest
		}
		return ctx.Status(status).JSON(event)
	}
	return ctx.JSON(event)
}

// GetState godoc
// @Summary Get session state
// @Description Get the loaded dashboard, alerts, summary status and undo depth
// @Tags session
// @Produce json
// @Param session path string true "Session ID"
// @Success 200 {object} SessionState
// @Router /api/v1/sessions/{session}/state [get]
func (ctrl *DashboardController) GetState(ctx *fiber.Ctx) error {
	return ctx.JSON(ctrl.DashboardService.State(ctx.Params("session")))
}

// ResolveWidgetFilters godoc
// @Summary Resolve widget filters
// @Description Compute the filters effective for one widget under the current filter context
// @Tags session
// @Produce json
// @Param session path string true "Session ID"
// @Param ref path string true "Widget ref identifier"
// @Success 200 {array} backend.StoredFilter
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/sessions/{session}/widgets/{ref}/filters [get]
func (ctrl *DashboardController) ResolveWidgetFilters(ctx *fiber.Ctx) error {
	session := ctx.Params("session")
	ref := model.NewRef(ctx.Params("ref"))

	filters, err := ctrl.DashboardService.ResolveWidgetFilters(ctx.UserContext(), session, ref)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(filters)
}

// ReleaseSession godoc
// @Summary Release a session
// @Description Shut down the engine bound to the session
// @Tags session
// @Param session path string true "Session ID"
// @Success 204 {object} nil
// @Router /api/v1/sessions/{session} [delete]
func (ctrl *DashboardController) ReleaseSession(ctx *fiber.Ctx) error {
	ctrl.DashboardService.Release(ctx.Params("session"))
	return ctx.SendStatus(fiber.StatusNoContent)
}
