package realtime

import (
	"go-dash/internal/common/api"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type EventStreamApi struct {
	Controller *EventStreamController
}

func NewEventStreamApi(controller *EventStreamController) api.Route {
	return &EventStreamApi{
		Controller: controller,
	}
}

func (h *EventStreamApi) Setup(app *fiber.App) {
	app.Get("/api/v1/sessions/:session/events", websocket.New(h.Controller.StreamEvents))
}
