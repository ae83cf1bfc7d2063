package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func PublicRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// Register mounts every route group on app. AuthRoutes goes before the guarded
// groups so the technician login is matched ahead of the /technician guard.
func Register(app *fiber.App) {
	PublicRoutes(app)
	AuthRoutes(app)
	PaymentRoutes(app)
	TechnicianRoutes(app)
	AdminRoutes(app)
	RealtimeRoutes(app)
}
