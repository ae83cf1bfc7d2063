package routes

import (
	"github.com/benerin-indonesia/benerin/handlers"
	"github.com/benerin-indonesia/benerin/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/payments/midtrans/notification", handlers.HandleMidtransNotification)

	protected := middleware.Protected()
	userOnly := middleware.UserRequired()
	api.Post("/service-requests/:requestId/checkout", protected, userOnly, handlers.CreateCheckout)
	api.Post("/payments/:paymentId/cancel", protected, userOnly, handlers.CancelPayment)
	api.Get("/payments/me", protected, userOnly, handlers.GetMyPayments)
	api.Get("/balance/me", protected, userOnly, handlers.GetMyBalance)
}
