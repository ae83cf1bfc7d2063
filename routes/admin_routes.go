package routes

import (
	"github.com/benerin-indonesia/benerin/handlers"
	"github.com/benerin-indonesia/benerin/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/balances", handlers.AdminListBalances)
	admin.Get("/ledger", handlers.AdminListLedger)
	admin.Post("/adjustments", handlers.AdminCreateAdjustment)

	admin.Get("/payouts", handlers.AdminListPayouts)
	admin.Post("/payouts/:payoutId/process", handlers.AdminProcessPayout)

	admin.Post("/payments/:paymentId/refund", handlers.AdminRefundPayment)
}
