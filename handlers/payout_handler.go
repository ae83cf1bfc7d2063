package handlers

import (
	config "github.com/benerin-indonesia/benerin/configs"
	"github.com/benerin-indonesia/benerin/database"
	"github.com/benerin-indonesia/benerin/middleware"
	"github.com/benerin-indonesia/benerin/models"
	"github.com/benerin-indonesia/benerin/notifications"
	"github.com/benerin-indonesia/benerin/services"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PayoutRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func RequestPayout(c *fiber.Ctx) error {
	techID, err := middleware.CurrentAccountID(c)
	if err != nil {
		return invalidSubject(c)
	}

	var req PayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{"amount": "amount must be a number"}})
	}
	if !req.Amount.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{"amount": "amount must be greater than zero"}})
	}

	payout, err := services.RequestPayout(database.DB, techID, req.Amount, config.MinPayout())
	if err != nil {
		return respondServiceError(c, err)
	}

	var tech models.Technician
	if err := database.DB.First(&tech, "id = ?", techID).Error; err == nil {
		go notifications.PayoutRequested(tech, *payout)
	}

	return c.Status(fiber.StatusCreated).JSON(payout)
}

func ListMyPayouts(c *fiber.Ctx) error {
	techID, err := middleware.CurrentAccountID(c)
	if err != nil {
		return invalidSubject(c)
	}

	payouts, err := services.ListPayouts(database.DB, services.PayoutFilter{
		TechnicianID: &techID,
		Status:       models.PayoutStatus(c.Query("status")),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(payouts)
}
