package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/benerin-indonesia/benerin/metrics"
	"github.com/benerin-indonesia/benerin/models"
	"github.com/benerin-indonesia/benerin/payments"
	"github.com/benerin-indonesia/benerin/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SnapCreator interface {
	CreateTransaction(ctx context.Context, req payments.SnapRequest) (*payments.SnapResponse, error)
}

// CreateCheckout opens a payment for a service request whose price was accepted.
// The gateway call happens after the payment row is committed.
func CreateCheckout(ctx context.Context, db *gorm.DB, snap SnapCreator, userID, serviceRequestID uuid.UUID) (*models.Payment, error) {
	var request models.ServiceRequest
	if err := db.Preload("User").First(&request, "id = ? AND user_id = ?", serviceRequestID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceRequestNotFound
		}
		return nil, err
	}
	if request.AgreedPrice == nil || !request.AgreedPrice.IsPositive() {
		return nil, invalid("agreed_price", nil, "service request has no accepted price yet")
	}
	// Snap only charges whole rupiah.
	if !request.AgreedPrice.IsInteger() {
		return nil, invalid("agreed_price", nil, "agreed price must be a whole rupiah amount")
	}
	if request.Status == models.ServiceRequestCancelled {
		if err := reopenForPayment(db, request.ID); err != nil {
			return nil, err
		}
		request.Status = models.ServiceRequestAwaitingPayment
	}
	if request.Status != models.ServiceRequestAwaitingPayment {
		return nil, invalid("service_request", nil, "service request is not awaiting payment")
	}

	var existing models.Payment
	err := db.Where("service_request_id = ? AND status = ? AND snap_token IS NOT NULL", request.ID, models.PaymentPending).
		Order("created_at desc").First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var payment models.Payment
	err = db.Transaction(func(tx *gorm.DB) error {
		orderID, err := utils.GenerateUniqueOrderID(tx, time.Now())
		if err != nil {
			return err
		}
		payment = models.Payment{
			ServiceRequestID: request.ID,
			UserID:           userID,
			TechnicianID:     request.TechnicianID,
			Amount:           request.AgreedPrice.Round(2),
			Currency:         models.DefaultCurrency,
			Status:           models.PaymentPending,
			Provider:         models.ProviderMidtrans,
			ProviderRef:      orderID,
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}

	snapResp, err := snap.CreateTransaction(ctx, payments.SnapRequest{
		TransactionDetails: payments.SnapTransactionDetails{
			OrderID:     payment.ProviderRef,
			GrossAmount: payment.Amount.IntPart(),
		},
		CustomerDetails: &payments.SnapCustomer{
			FirstName: request.User.FullName,
			Email:     request.User.Email,
		},
		ItemDetails: []payments.SnapItem{{
			ID:       request.ID.String(),
			Name:     truncate(request.Title, 50),
			Price:    payment.Amount.IntPart(),
			Quantity: 1,
		}},
	})
	if err != nil {
		log.Printf("🔥 Snap checkout failed for order %s: %v", payment.ProviderRef, err)
		if cerr := db.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
			Update("status", models.PaymentCancelled).Error; cerr != nil {
			log.Printf("🔥 Failed to cancel payment %s after snap error: %v", payment.ID, cerr)
		}
		return nil, err
	}

	payment.SnapToken = &snapResp.Token
	payment.SnapRedirectURL = &snapResp.RedirectURL
	if err := db.Model(&payment).Updates(map[string]interface{}{
		"snap_token":        snapResp.Token,
		"snap_redirect_url": snapResp.RedirectURL,
	}).Error; err != nil {
		return nil, err
	}

	return &payment, nil
}

// reopenForPayment moves a cancelled service request back to awaiting payment when
// its last payment failed or was abandoned, so the customer can pay again.
func reopenForPayment(db *gorm.DB, serviceRequestID uuid.UUID) error {
	var last models.Payment
	err := db.Where("service_request_id = ?", serviceRequestID).Order("created_at desc").First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("service_request", nil, "service request is not awaiting payment")
		}
		return err
	}
	if last.Status != models.PaymentFailure && last.Status != models.PaymentCancelled {
		return invalid("service_request", nil, "service request is not awaiting payment")
	}

	return db.Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", serviceRequestID, models.ServiceRequestCancelled).
		Update("status", models.ServiceRequestAwaitingPayment).Error
}

// CancelPayment lets the payer abandon a checkout that has not been paid.
func CancelPayment(db *gorm.DB, userID, paymentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := db.First(&payment, "id = ? AND user_id = ?", paymentID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	res := db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
		Update("status", models.PaymentCancelled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrPaymentNotPending
	}

	payment.Status = models.PaymentCancelled
	return &payment, nil
}

// RefundPayment reverses a settled payment: the technician's hold is taken back and
// the payer is credited the full amount.
func RefundPayment(db *gorm.DB, paymentID uuid.UUID, reason string) (*models.Refund, error) {
	var payment models.Payment
	if err := db.First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.Status != models.PaymentSettled {
		return nil, ErrPaymentNotSettled
	}

	if payment.TechnicianID != nil {
		unlock := balanceLocks.lock(models.OwnerTechnician, *payment.TechnicianID)
		defer unlock()
	}

	var refund models.Refund
	var posted []*models.LedgerEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentSettled).
			Updates(map[string]interface{}{"status": models.PaymentRefunded, "refunded_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPaymentNotSettled
		}

		refund = models.Refund{PaymentID: payment.ID, Amount: payment.Amount}
		if reason != "" {
			refund.Reason = &reason
		}
		if err := tx.Create(&refund).Error; err != nil {
			return err
		}

		if payment.TechnicianID != nil {
			holds, err := ListLedgerEntries(tx, LedgerFilter{
				OwnerRole: models.OwnerTechnician,
				OwnerID:   payment.TechnicianID,
				Type:      models.EntryHold,
				RefTable:  models.RefPayment,
				RefID:     &payment.ID,
			})
			if err != nil {
				return err
			}
			held := decimal.Zero
			for _, h := range holds {
				held = held.Add(h.Amount)
			}
			if !held.IsZero() {
				entry, err := PostLedgerEntry(tx, PostEntryInput{
					OwnerRole: models.OwnerTechnician,
					OwnerID:   *payment.TechnicianID,
					Amount:    held.Neg(),
					Type:      models.EntryRefundReversal,
					Currency:  payment.Currency,
					RefTable:  models.RefRefund,
					RefID:     &refund.ID,
					Note:      "Refund of order " + payment.ProviderRef,
				})
				if err != nil {
					return err
				}
				posted = append(posted, entry)
			}
		}

		credit, err := PostLedgerEntry(tx, PostEntryInput{
			OwnerRole: models.OwnerUser,
			OwnerID:   payment.UserID,
			Amount:    payment.Amount,
			Type:      models.EntryRefundCredit,
			Currency:  payment.Currency,
			RefTable:  models.RefRefund,
			RefID:     &refund.ID,
			Note:      "Refund of order " + payment.ProviderRef,
		})
		if err != nil {
			return err
		}
		posted = append(posted, credit)

		return tx.Model(&models.ServiceRequest{}).
			Where("id = ?", payment.ServiceRequestID).
			Update("status", models.ServiceRequestCancelled).Error
	})
	if err != nil {
		return nil, err
	}

	countEntries(posted...)
	return &refund, nil
}

// ExpireStalePayments cancels checkouts still pending after the cutoff.
func ExpireStalePayments(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", models.PaymentPending, cutoff).
		Update("status", models.PaymentCancelled)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		metrics.PaymentsExpired.Add(float64(res.RowsAffected))
	}
	return res.RowsAffected, nil
}

func ListPayments(db *gorm.DB, userID *uuid.UUID, status models.PaymentStatus) ([]models.Payment, error) {
	query := db.Model(&models.Payment{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var list []models.Payment
	if err := query.Order("created_at desc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
