package main

import (
	"log"
	"time"

	config "github.com/benerin-indonesia/benerin/configs"
	"github.com/benerin-indonesia/benerin/database"
	"github.com/benerin-indonesia/benerin/handlers"
	"github.com/benerin-indonesia/benerin/jobs"
	"github.com/benerin-indonesia/benerin/notifications"
	"github.com/benerin-indonesia/benerin/payments"
	"github.com/benerin-indonesia/benerin/routes"
	"github.com/benerin-indonesia/benerin/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()
	notifications.InitEmailService()
	handlers.SnapClient = payments.NewMidtransClient()

	scheduler, err := jobs.Schedule()
	if err != nil {
		log.Fatalf("🔥 Failed to schedule jobs: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()
	log.Println("✅ Payment expiry job scheduled successfully.")

	go websocket.RunHub()

	app := fiber.New(fiber.Config{
		Prefork:       false,
		AppName:       "Benerin Escrow",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  config.ConfigDefault("CORS_ORIGINS", "*"),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jakarta",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.Register(app)

	port := config.ConfigDefault("PORT", "8080")
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
