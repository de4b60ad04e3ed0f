package notification

import (
	"go-dash/internal/common/api"
	"go-dash/internal/config"
	"go-dash/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type NotificationApi struct {
	controller *NotificationController
	config     *config.Config
}

func NewNotificationApi(controller *NotificationController, config *config.Config) api.Route {
	return &NotificationApi{
		controller: controller,
		config:     config,
	}
}

func (h *NotificationApi) Setup(app *fiber.App) {
	group := app.Group("/api/v1/notification", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/channels", h.controller.ListChannels)
	group.Get("/channels/:id", h.controller.GetChannel)
	group.Post("/channels", h.controller.CreateChannel)
	group.Put("/channels/:id", h.controller.UpdateChannel)
	group.Delete("/channels/:id", h.controller.DeleteChannel)
}
