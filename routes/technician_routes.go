package routes

import (
	"github.com/benerin-indonesia/benerin/handlers"
	"github.com/benerin-indonesia/benerin/middleware"
	"github.com/gofiber/fiber/v2"
)

func TechnicianRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	technician := api.Group("/technician", middleware.Protected(), middleware.TechnicianRequired())
	technician.Get("/balance", handlers.GetTechnicianBalance)
	technician.Get("/ledger", handlers.GetTechnicianLedger)
	technician.Post("/payouts", handlers.RequestPayout)
	technician.Get("/payouts", handlers.ListMyPayouts)
}
