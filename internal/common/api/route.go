package api

import "github.com/gofiber/fiber/v2"

// Route is implemented by every feature's API module. Implementations are
// collected into an fx group and set up once at startup.
type Route interface {
	Setup(app *fiber.App)
}
