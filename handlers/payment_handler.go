package handlers

import (
	"errors"
	"log"

	config "github.com/benerin-indonesia/benerin/configs"
	"github.com/benerin-indonesia/benerin/database"
	"github.com/benerin-indonesia/benerin/metrics"
	"github.com/benerin-indonesia/benerin/middleware"
	"github.com/benerin-indonesia/benerin/models"
	"github.com/benerin-indonesia/benerin/services"
	"github.com/benerin-indonesia/benerin/websocket"
	"github.com/gofiber/fiber/v2"
)

// HandleMidtransNotification receives Midtrans HTTP notifications. Midtrans retries
// anything that is not a 2xx, so replays of a processed notification answer 200.
func HandleMidtransNotification(c *fiber.Ctx) error {
	processor := &services.NotificationProcessor{
		DB:             database.DB,
		ServerKey:      config.Config("MIDTRANS_SERVER_KEY"),
		CommissionRate: config.CommissionRate(),
	}

	res, err := processor.Process(c.Body())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMalformedNotification):
			metrics.WebhookNotifications.WithLabelValues("malformed").Inc()
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse notification payload"})
		case errors.Is(err, services.ErrInvalidSignature):
			metrics.WebhookNotifications.WithLabelValues("invalid_signature").Inc()
			log.Printf("⚠️ Rejected notification with invalid signature from %s", c.IP())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Invalid signature"})
		case errors.Is(err, services.ErrPaymentNotFound):
			metrics.WebhookNotifications.WithLabelValues("unknown_order").Inc()
			log.Printf("⚠️ Notification for unknown order, body: %s", string(c.Body()))
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment record not found"})
		}
		metrics.WebhookNotifications.WithLabelValues("error").Inc()
		log.Printf("🔥 CRITICAL: Error processing payment notification: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process notification"})
	}

	metrics.WebhookNotifications.WithLabelValues(string(res.Outcome)).Inc()
	if res.Hold != nil {
		metrics.LedgerEntries.WithLabelValues(string(res.Hold.Type)).Inc()
	}
	log.Printf("Notification for order %s: %s (payment %s now %s)", res.Payment.ProviderRef, res.Outcome, res.Payment.ID, res.Payment.Status)

	switch res.Outcome {
	case services.OutcomeSettled, services.OutcomeFailed, services.OutcomePending:
		websocket.NotifyPaymentStatus(res.Payment)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Notification processed", "outcome": res.Outcome})
}

func CreateCheckout(c *fiber.Ctx) error {
	userID, err := middleware.CurrentAccountID(c)
	if err != nil {
		return invalidSubject(c)
	}
	requestID, ok := uuidParam(c, "requestId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid service request ID format"})
	}
	if SnapClient == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Payment gateway is not configured"})
	}

	payment, err := services.CreateCheckout(c.UserContext(), database.DB, SnapClient, userID, requestID)
	if err != nil {
		var verr *services.ValidationError
		if !errors.As(err, &verr) && !errors.Is(err, services.ErrServiceRequestNotFound) {
			log.Printf("🔥 Checkout failed for service request %s: %v", requestID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to create checkout"})
		}
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment_id":   payment.ID,
		"order_id":     payment.ProviderRef,
		"amount":       payment.Amount,
		"status":       payment.Status,
		"snap_token":   payment.SnapToken,
		"redirect_url": payment.SnapRedirectURL,
	})
}

func CancelPayment(c *fiber.Ctx) error {
	userID, err := middleware.CurrentAccountID(c)
	if err != nil {
		return invalidSubject(c)
	}
	paymentID, ok := uuidParam(c, "paymentId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	payment, err := services.CancelPayment(database.DB, userID, paymentID)
	if err != nil {
		return respondServiceError(c, err)
	}
	websocket.NotifyPaymentStatus(payment)

	return c.JSON(payment)
}

func GetMyPayments(c *fiber.Ctx) error {
	userID, err := middleware.CurrentAccountID(c)
	if err != nil {
		return invalidSubject(c)
	}

	list, err := services.ListPayments(database.DB, &userID, models.PaymentStatus(c.Query("status")))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(list)
}
