package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Technician struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Phone    *string   `gorm:"size:30" json:"phone"`

	BankName      *string `gorm:"size:100" json:"bank_name"`
	AccountName   *string `gorm:"size:255" json:"account_name"`
	AccountNumber *string `gorm:"size:50" json:"account_number"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Technician) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// HasBankAccount reports whether every bank field needed for a payout is filled in.
func (t *Technician) HasBankAccount() bool {
	return filled(t.BankName) && filled(t.AccountName) && filled(t.AccountNumber)
}

func filled(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
