package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ServiceRequestAwaitingPayment = "menunggu_pembayaran"
	ServiceRequestInProgress      = "diproses"
	ServiceRequestCompleted       = "selesai"
	ServiceRequestCancelled       = "dibatalkan"
)

type ServiceRequest struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	TechnicianID *uuid.UUID       `gorm:"type:uuid;index" json:"technician_id"`
	Title        string           `gorm:"size:255;not null" json:"title"`
	Description  *string          `gorm:"type:text" json:"description"`
	AgreedPrice  *decimal.Decimal `gorm:"type:numeric(14,2)" json:"agreed_price"`
	Status       string           `gorm:"size:30;not null;default:'menunggu_pembayaran'" json:"status"`

	User       User        `gorm:"foreignkey:UserID" json:"-"`
	Technician *Technician `gorm:"foreignkey:TechnicianID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *ServiceRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
