package handlers

import (
	"github.com/benerin-indonesia/benerin/database"
	"github.com/benerin-indonesia/benerin/middleware"
	"github.com/benerin-indonesia/benerin/models"
	"github.com/benerin-indonesia/benerin/services"
	"github.com/gofiber/fiber/v2"
)

func ownSummary(c *fiber.Ctx, role models.OwnerRole) error {
	id, err := middleware.CurrentAccountID(c)
	if err != nil {
		return invalidSubject(c)
	}

	summary, err := services.OwnerBalanceSummary(database.DB, role, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(summary)
}

// GetMyBalance returns the customer's refund balance.
func GetMyBalance(c *fiber.Ctx) error {
	return ownSummary(c, models.OwnerUser)
}

func GetTechnicianBalance(c *fiber.Ctx) error {
	return ownSummary(c, models.OwnerTechnician)
}

func GetTechnicianLedger(c *fiber.Ctx) error {
	id, err := middleware.CurrentAccountID(c)
	if err != nil {
		return invalidSubject(c)
	}

	limit, offset := pageParams(c)
	entries, err := services.ListLedgerEntries(database.DB, services.LedgerFilter{
		OwnerRole: models.OwnerTechnician,
		OwnerID:   &id,
		Type:      models.LedgerEntryType(c.Query("type")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(entries)
}
