package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OwnerRole string

const (
	OwnerUser       OwnerRole = "user"
	OwnerTechnician OwnerRole = "technician"
)

func (r OwnerRole) Valid() bool {
	return r == OwnerUser || r == OwnerTechnician
}

type LedgerEntryType string

const (
	EntryHold           LedgerEntryType = "hold"
	EntryPayout         LedgerEntryType = "payout"
	EntryPayoutRequest  LedgerEntryType = "payout_request"
	EntryPayoutReversal LedgerEntryType = "payout_reversal"
	EntryAdjustment     LedgerEntryType = "adjustment"
	EntryRefundCredit   LedgerEntryType = "refund_credit"
	EntryRefundReversal LedgerEntryType = "refund_reversal"
	EntryPaymentDebit   LedgerEntryType = "payment_debit"
)

func (t LedgerEntryType) Valid() bool {
	switch t {
	case EntryHold, EntryPayout, EntryPayoutRequest, EntryPayoutReversal,
		EntryAdjustment, EntryRefundCredit, EntryRefundReversal, EntryPaymentDebit:
		return true
	}
	return false
}

const (
	RefPayout  = "payout"
	RefPayment = "payment"
	RefRefund  = "refund"
)

const DefaultCurrency = "IDR"

var ErrLedgerEntryImmutable = errors.New("ledger entries are append-only")

// LedgerEntry is one signed movement of value on an owner's balance.
// Rows are never updated or deleted; corrections are new offsetting entries.
type LedgerEntry struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OwnerRole OwnerRole       `gorm:"size:20;not null;index:idx_balances_owner" json:"owner_role"`
	OwnerID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_balances_owner" json:"owner_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency  string          `gorm:"size:3;not null;default:'IDR'" json:"currency"`
	Type      LedgerEntryType `gorm:"size:30;not null;index" json:"type"`
	RefTable  *string         `gorm:"size:50;index:idx_balances_ref" json:"ref_table"`
	RefID     *uuid.UUID      `gorm:"type:uuid;index:idx_balances_ref" json:"ref_id"`
	Note      *string         `gorm:"type:text" json:"note"`
	CreatedAt time.Time       `gorm:"not null;index" json:"created_at"`
}

func (LedgerEntry) TableName() string { return "balances" }

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Currency == "" {
		e.Currency = DefaultCurrency
	}
	return nil
}

func (e *LedgerEntry) BeforeUpdate(tx *gorm.DB) error {
	return ErrLedgerEntryImmutable
}

func (e *LedgerEntry) BeforeDelete(tx *gorm.DB) error {
	return ErrLedgerEntryImmutable
}
