package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PayoutStatus string

const (
	PayoutPending  PayoutStatus = "pending"
	PayoutPaid     PayoutStatus = "paid"
	PayoutRejected PayoutStatus = "rejected"
)

// Payout is a technician withdrawal. The bank fields are copied from the
// technician profile when the payout is requested and never follow later edits.
type Payout struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TechnicianID uuid.UUID       `gorm:"type:uuid;not null;index" json:"technician_id"`
	Amount       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Status       PayoutStatus    `gorm:"size:20;not null;default:'pending';index" json:"status"`

	BankName      string `gorm:"size:100;not null" json:"bank_name"`
	AccountName   string `gorm:"size:255;not null" json:"account_name"`
	AccountNumber string `gorm:"size:50;not null" json:"account_number"`

	PaidAt *time.Time `json:"paid_at"`
	Note   *string    `gorm:"type:text" json:"note"`

	Technician Technician `gorm:"foreignkey:TechnicianID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payout) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
