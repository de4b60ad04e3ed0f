package automation

import (
	"go-dash/internal/common/api"
	"go-dash/internal/config"
	"go-dash/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AutomationApi struct {
	controller *AutomationController
	config     *config.Config
}

func NewAutomationApi(controller *AutomationController, config *config.Config) api.Route {
	return &AutomationApi{
		controller: controller,
		config:     config,
	}
}

func (h *AutomationApi) Setup(app *fiber.App) {
	group := app.Group("/api/v1/automation", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/rules", h.controller.ListRules)
	group.Get("/rules/:id", h.controller.GetRule)
	group.Post("/rules", h.controller.CreateRule)
	group.Put("/rules/:id", h.controller.UpdateRule)
	group.Delete("/rules/:id", h.controller.DeleteRule)
	group.Patch("/rules/:id/enable", h.controller.EnableRule)
	group.Post("/rules/:id/run", h.controller.RunRule)
}
