package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/benerin-indonesia/benerin/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

// SnapClient opens Midtrans checkouts. main sets it; tests swap in a fake.
var SnapClient services.SnapCreator

func respondServiceError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{verr.Field: verr.Message}})
	case errors.Is(err, services.ErrPaymentNotFound),
		errors.Is(err, services.ErrPayoutNotFound),
		errors.Is(err, services.ErrServiceRequestNotFound),
		errors.Is(err, services.ErrTechnicianNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPaymentNotPending),
		errors.Is(err, services.ErrPaymentNotSettled),
		errors.Is(err, services.ErrPayoutNotPending):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	log.Printf("🔥 %s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

func invalidSubject(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token subject"})
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func pageParams(c *fiber.Ctx) (limit, offset int) {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return limit, (page - 1) * limit
}
