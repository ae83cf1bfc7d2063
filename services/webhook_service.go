package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/benerin-indonesia/benerin/models"
	"github.com/benerin-indonesia/benerin/payments"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentNotification is the subset of a Midtrans HTTP notification we act on.
type PaymentNotification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	TransactionTime   string `json:"transaction_time"`
	SettlementTime    string `json:"settlement_time"`
}

type NotificationOutcome string

const (
	OutcomeSettled   NotificationOutcome = "settled"
	OutcomePending   NotificationOutcome = "pending"
	OutcomeFailed    NotificationOutcome = "failure"
	OutcomeDuplicate NotificationOutcome = "duplicate"
	OutcomeIgnored   NotificationOutcome = "ignored"
)

type NotificationResult struct {
	Outcome NotificationOutcome
	Payment *models.Payment
	Hold    *models.LedgerEntry
}

// midtrans reports times in WIB without a zone suffix.
var wib = time.FixedZone("WIB", 7*60*60)

const midtransTimeLayout = "2006-01-02 15:04:05"

type NotificationProcessor struct {
	DB             *gorm.DB
	ServerKey      string
	CommissionRate decimal.Decimal
	Now            func() time.Time
}

func (p *NotificationProcessor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Process verifies and applies one notification. Replays of a notification for a
// payment that is already closed return OutcomeDuplicate and change nothing.
// A settlement for a locally cancelled payment is still applied.
func (p *NotificationProcessor) Process(raw []byte) (*NotificationResult, error) {
	var n PaymentNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNotification, err)
	}
	if n.OrderID == "" || n.TransactionStatus == "" {
		return nil, fmt.Errorf("%w: order_id and transaction_status are required", ErrMalformedNotification)
	}

	if !payments.VerifyNotificationSignature(n.OrderID, n.StatusCode, n.GrossAmount, p.ServerKey, n.SignatureKey) {
		return nil, ErrInvalidSignature
	}

	var payment models.Payment
	if err := p.DB.Where("provider_ref = ?", n.OrderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.Status.Terminal() {
		return &NotificationResult{Outcome: OutcomeDuplicate, Payment: &payment}, nil
	}

	if gross, err := decimal.NewFromString(n.GrossAmount); err == nil && !gross.Equal(payment.Amount) {
		log.Printf("⚠️ Gross amount %s for order %s differs from payment amount %s", n.GrossAmount, n.OrderID, payment.Amount)
	}

	switch n.TransactionStatus {
	case "capture", "settlement":
		return p.settle(&payment, n, raw)
	case "pending":
		return p.keepPending(&payment, raw)
	case "deny", "expire", "cancel":
		return p.fail(&payment, raw)
	default:
		log.Printf("Ignoring transaction_status %q for order %s", n.TransactionStatus, n.OrderID)
		return &NotificationResult{Outcome: OutcomeIgnored, Payment: &payment}, nil
	}
}

func (p *NotificationProcessor) settle(payment *models.Payment, n PaymentNotification, raw []byte) (*NotificationResult, error) {
	paidAt := p.paidAt(n)
	updates := map[string]interface{}{
		"status":          models.PaymentSettled,
		"paid_at":         paidAt,
		"webhook_payload": datatypes.JSON(raw),
	}
	if n.TransactionID != "" {
		updates["provider_txn_id"] = n.TransactionID
	}

	var hold *models.LedgerEntry
	applied := false
	err := p.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status NOT IN ?", payment.ID, models.TerminalPaymentStatuses).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		if payment.TechnicianID != nil {
			entry, err := PostLedgerEntry(tx, PostEntryInput{
				OwnerRole: models.OwnerTechnician,
				OwnerID:   *payment.TechnicianID,
				Amount:    TechnicianShare(payment.Amount, p.CommissionRate),
				Type:      models.EntryHold,
				Currency:  payment.Currency,
				RefTable:  models.RefPayment,
				RefID:     &payment.ID,
				Note:      "Escrow hold for order " + payment.ProviderRef,
			})
			if err != nil {
				return err
			}
			hold = entry
		} else {
			log.Printf("⚠️ Settled payment %s has no technician, no hold posted", payment.ID)
		}

		return tx.Model(&models.ServiceRequest{}).
			Where("id = ? AND status IN ?", payment.ServiceRequestID,
				[]string{models.ServiceRequestAwaitingPayment, models.ServiceRequestCancelled}).
			Update("status", models.ServiceRequestInProgress).Error
	})
	if err != nil {
		return nil, err
	}

	return p.result(payment.ID, applied, OutcomeSettled, hold)
}

func (p *NotificationProcessor) keepPending(payment *models.Payment, raw []byte) (*NotificationResult, error) {
	res := p.DB.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
		Update("webhook_payload", datatypes.JSON(raw))
	if res.Error != nil {
		return nil, res.Error
	}
	return p.result(payment.ID, res.RowsAffected > 0, OutcomePending, nil)
}

// fail closes a pending payment. A payment the customer already cancelled keeps
// its status and the service request is left alone.
func (p *NotificationProcessor) fail(payment *models.Payment, raw []byte) (*NotificationResult, error) {
	applied := false
	err := p.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
			Updates(map[string]interface{}{
				"status":          models.PaymentFailure,
				"webhook_payload": datatypes.JSON(raw),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		return tx.Model(&models.ServiceRequest{}).
			Where("id = ? AND status = ?", payment.ServiceRequestID, models.ServiceRequestAwaitingPayment).
			Update("status", models.ServiceRequestCancelled).Error
	})
	if err != nil {
		return nil, err
	}

	return p.result(payment.ID, applied, OutcomeFailed, nil)
}

func (p *NotificationProcessor) result(paymentID uuid.UUID, applied bool, outcome NotificationOutcome, hold *models.LedgerEntry) (*NotificationResult, error) {
	var fresh models.Payment
	if err := p.DB.First(&fresh, "id = ?", paymentID).Error; err != nil {
		return nil, err
	}
	if !applied {
		outcome = OutcomeDuplicate
	}
	return &NotificationResult{Outcome: outcome, Payment: &fresh, Hold: hold}, nil
}

func (p *NotificationProcessor) paidAt(n PaymentNotification) time.Time {
	for _, raw := range []string{n.SettlementTime, n.TransactionTime} {
		if raw == "" {
			continue
		}
		if t, err := time.ParseInLocation(midtransTimeLayout, raw, wib); err == nil {
			return t
		}
	}
	return p.now()
}

// TechnicianShare is the part of a payment credited to the technician after the
// platform commission.
func TechnicianShare(amount, commissionRate decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(1).Sub(commissionRate)).Round(2)
}
