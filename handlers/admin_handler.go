package handlers

import (
	"github.com/benerin-indonesia/benerin/database"
	"github.com/benerin-indonesia/benerin/models"
	"github.com/benerin-indonesia/benerin/notifications"
	"github.com/benerin-indonesia/benerin/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func AdminListBalances(c *fiber.Ctx) error {
	role := models.OwnerRole(c.Query("role"))
	if role != "" && !role.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{"role": "role must be user or technician"}})
	}

	summaries, err := services.BalanceSummaries(database.DB, role)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(summaries)
}

func AdminListLedger(c *fiber.Ctx) error {
	filter := services.LedgerFilter{
		OwnerRole: models.OwnerRole(c.Query("owner_role")),
		Type:      models.LedgerEntryType(c.Query("type")),
		RefTable:  c.Query("ref_table"),
	}
	if raw := c.Query("owner_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{"owner_id": "owner_id must be a UUID"}})
		}
		filter.OwnerID = &id
	}
	if raw := c.Query("ref_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{"ref_id": "ref_id must be a UUID"}})
		}
		filter.RefID = &id
	}
	filter.Limit, filter.Offset = pageParams(c)

	entries, err := services.ListLedgerEntries(database.DB, filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(entries)
}

type AdjustmentRequest struct {
	OwnerRole string          `json:"owner_role" validate:"required,oneof=user technician"`
	OwnerID   string          `json:"owner_id" validate:"required,uuid"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note" validate:"required"`
}

func AdminCreateAdjustment(c *fiber.Ctx) error {
	var req AdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	entry, err := services.PostAdjustment(database.DB, models.OwnerRole(req.OwnerRole), uuid.MustParse(req.OwnerID), req.Amount, req.Note)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func AdminListPayouts(c *fiber.Ctx) error {
	filter := services.PayoutFilter{Status: models.PayoutStatus(c.Query("status", string(models.PayoutPending)))}
	if c.Query("status") == "all" {
		filter.Status = ""
	}
	if raw := c.Query("technician_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{"technician_id": "technician_id must be a UUID"}})
		}
		filter.TechnicianID = &id
	}

	payouts, err := services.ListPayouts(database.DB, filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(payouts)
}

type ProcessPayoutRequest struct {
	Decision string `json:"decision" validate:"required,oneof=paid rejected"`
	Note     string `json:"note"`
}

func AdminProcessPayout(c *fiber.Ctx) error {
	payoutID, ok := uuidParam(c, "payoutId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payout ID format"})
	}

	var req ProcessPayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	payout, err := services.ProcessPayout(database.DB, payoutID, services.PayoutDecision(req.Decision), req.Note)
	if err != nil {
		return respondServiceError(c, err)
	}

	var tech models.Technician
	if err := database.DB.First(&tech, "id = ?", payout.TechnicianID).Error; err == nil {
		go notifications.PayoutProcessed(tech, *payout)
	}

	return c.JSON(payout)
}

type RefundRequest struct {
	Reason string `json:"reason"`
}

func AdminRefundPayment(c *fiber.Ctx) error {
	paymentID, ok := uuidParam(c, "paymentId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	var req RefundRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
	}

	refund, err := services.RefundPayment(database.DB, paymentID, req.Reason)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(refund)
}
