package routes

import (
	"github.com/benerin-indonesia/benerin/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/auth/login", handlers.LoginUser)
	api.Post("/technician/auth/login", handlers.LoginTechnician)
}
