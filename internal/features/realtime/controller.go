package realtime

import (
	"encoding/json"
	"log"

	"github.com/gofiber/contrib/websocket"

	"go-dash/internal/engine/events"
	"go-dash/internal/features/dashboard"
)

type EventStreamController struct {
	DashboardService dashboard.DashboardService
}

func NewEventStreamController(dashboardService dashboard.DashboardService) *EventStreamController {
	return &EventStreamController{
		DashboardService: dashboardService,
	}
}

// StreamEvents pushes every engine event of one session over the socket as
// JSON. Slow consumers drop events rather than stall the engine worker.
func (h *EventStreamController) StreamEvents(c *websocket.Conn) {
	session := c.Params("session")
	eng := h.DashboardService.Engine(session)

	queue := make(chan events.Event, 64)
	unsubscribe := eng.Events.Subscribe(events.Any(), func(e events.Event) {
		select {
		case queue <- e:
		default:
		}
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case e := <-queue:
			payload, err := json.Marshal(e)
			if err != nil {
				log.Println("marshal:", err)
				continue
			}
			if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Println("write:", err)
				return
			}
		case <-closed:
			return
		}
	}
}
