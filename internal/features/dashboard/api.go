package dashboard

import (
	"go-dash/internal/common/api"
	"go-dash/internal/config"
	"go-dash/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DashboardApi struct {
	DashboardController *DashboardController
	Config              *config.Config
}

func NewDashboardApi(dashboardController *DashboardController, cfg *config.Config) api.Route {
	return &DashboardApi{
		DashboardController: dashboardController,
		Config:              cfg,
	}
}

func (api *DashboardApi) Setup(app *fiber.App) {
	group := app.Group("/api/v1/sessions", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Post("/:session/commands", api.DashboardController.DispatchCommand)
	group.Get("/:session/state", api.DashboardController.GetState)
	group.Get("/:session/widgets/:ref/filters", api.DashboardController.ResolveWidgetFilters)
	group.Delete("/:session", api.DashboardController.ReleaseSession)
}
