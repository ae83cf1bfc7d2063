package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSettled   PaymentStatus = "settled"
	PaymentFailure   PaymentStatus = "failure"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

const ProviderMidtrans = "midtrans"

// Terminal reports whether gateway notifications can no longer move the payment.
// A cancelled payment stays open: the order is still live at Midtrans and the
// customer may pay it after the local cancel.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentSettled, PaymentFailure, PaymentRefunded:
		return true
	}
	return false
}

// TerminalPaymentStatuses lists every status that closes a payment to webhook updates.
var TerminalPaymentStatuses = []PaymentStatus{PaymentSettled, PaymentFailure, PaymentRefunded}

type Payment struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ServiceRequestID uuid.UUID       `gorm:"type:uuid;not null;index" json:"service_request_id"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	TechnicianID     *uuid.UUID      `gorm:"type:uuid;index" json:"technician_id"`
	Amount           decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency         string          `gorm:"size:3;not null;default:'IDR'" json:"currency"`
	Status           PaymentStatus   `gorm:"size:20;not null;default:'pending';index" json:"status"`

	Provider        string  `gorm:"size:50;not null" json:"provider"`
	ProviderRef     string  `gorm:"size:100;not null;unique" json:"provider_ref"`
	ProviderTxnID   *string `gorm:"size:255" json:"provider_txn_id"`
	SnapToken       *string `gorm:"size:255" json:"snap_token"`
	SnapRedirectURL *string `gorm:"size:512" json:"snap_redirect_url"`

	PaidAt         *time.Time     `json:"paid_at"`
	RefundedAt     *time.Time     `json:"refunded_at"`
	WebhookPayload datatypes.JSON `json:"webhook_payload,omitempty"`

	ServiceRequest ServiceRequest `gorm:"foreignkey:ServiceRequestID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
