package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Refund struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	PaymentID uuid.UUID       `gorm:"type:uuid;not null;unique" json:"payment_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Reason    *string         `gorm:"type:text" json:"reason"`
	CreatedAt time.Time       `json:"created_at"`
}

func (r *Refund) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
