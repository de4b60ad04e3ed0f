package automation

import (
	"github.com/gofiber/fiber/v2"

	"go-dash/internal/engine/model"
)

type AutomationController struct {
	AutomationService AutomationService
}

func NewAutomationController(automationService AutomationService) *AutomationController {
	return &AutomationController{
		AutomationService: automationService,
	}
}

// ListRules godoc
// @Summary List automation rules
// @Description List automation rules with optional title, type and dashboard filters
// @Tags automation
// @Produce json
// @Param title query string false "Title substring"
// @Param type query string false "Rule type (schedule or trigger)"
// @Param dashboard query string false "Dashboard identifier"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param sort query string false "Sort field, prefix with - for descending"
// @Success 200 {object} query.AutomationsResult
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/automation/rules [get]
func (ctrl *AutomationController) ListRules(ctx *fiber.Ctx) error {
	opts := ListOptions{
		Title: ctx.Query("title"),
		Type:  ctx.Query("type"),
		Page:  ctx.QueryInt("page", 0),
		Size:  ctx.QueryInt("size", 0),
		Sort:  ctx.Query("sort"),
	}
	if dashboard := ctx.Query("dashboard"); dashboard != "" {
		opts.Dashboard = model.NewRef(dashboard)
	}

	result, err := ctrl.AutomationService.ListRules(ctx.UserContext(), opts)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(result)
}

// GetRule godoc
// @Summary Get an automation rule
// @Tags automation
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} AutomationRule
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/automation/rules/{id} [get]
func (ctrl *AutomationController) GetRule(ctx *fiber.Ctx) error {
	rule, err := ctrl.AutomationService.GetRule(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if rule == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "rule not found"})
	}
	return ctx.JSON(rule)
}

// CreateRule godoc
// @Summary Create an automation rule
// @Tags automation
// @Accept json
// @Produce json
// @Param rule body AutomationRule true "Rule definition"
// @Success 201 {object} AutomationRule
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/automation/rules [post]
func (ctrl *AutomationController) CreateRule(ctx *fiber.Ctx) error {
	var rule AutomationRule
	if err := ctx.BodyParser(&rule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := ctrl.AutomationService.CreateRule(ctx.UserContext(), &rule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(rule)
}

// UpdateRule godoc
// @Summary Update an automation rule
// @Tags automation
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body AutomationRule true "Rule definition"
// @Success 200 {object} AutomationRule
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/automation/rules/{id} [put]
func (ctrl *AutomationController) UpdateRule(ctx *fiber.Ctx) error {
	var rule AutomationRule
	if err := ctx.BodyParser(&rule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	rule.ID = ctx.Params("id")

	if err := ctrl.AutomationService.UpdateRule(ctx.UserContext(), &rule); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(rule)
}

// DeleteRule godoc
// @Summary Delete an automation rule
// @Tags automation
// @Param id path string true "Rule ID"
// @Success 204 {object} nil
// @Router /api/v1/automation/rules/{id} [delete]
func (ctrl *AutomationController) DeleteRule(ctx *fiber.Ctx) error {
	if err := ctrl.AutomationService.DeleteRule(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// EnableRule godoc
// @Summary Enable or disable an automation rule
// @Tags automation
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param body body map[string]bool true "Active flag"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/automation/rules/{id}/enable [patch]
func (ctrl *AutomationController) EnableRule(ctx *fiber.Ctx) error {
	var body struct {
		Active bool `json:"active"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := ctrl.AutomationService.EnableRule(ctx.UserContext(), ctx.Params("id"), body.Active); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"id": ctx.Params("id"), "active": body.Active})
}

// RunRule godoc
// @Summary Run an automation rule now
// @Tags automation
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/automation/rules/{id}/run [post]
func (ctrl *AutomationController) RunRule(ctx *fiber.Ctx) error {
	if err := ctrl.AutomationService.RunRule(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"id": ctx.Params("id"), "status": "executed"})
}
