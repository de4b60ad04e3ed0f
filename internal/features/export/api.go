package export

import (
	"go-dash/internal/common/api"
	"go-dash/internal/config"
	"go-dash/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ExportApi struct {
	controller *ExportController
	config     *config.Config
}

func NewExportApi(controller *ExportController, config *config.Config) api.Route {
	return &ExportApi{
		controller: controller,
		config:     config,
	}
}

func (h *ExportApi) Setup(app *fiber.App) {
	group := app.Group("/api/v1/sessions", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/:session/export", h.controller.ExportDashboard)
}
