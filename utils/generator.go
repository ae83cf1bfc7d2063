package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/benerin-indonesia/benerin/models"
	"gorm.io/gorm"
)

const orderIDAttempts = 5

// GenerateUniqueOrderID returns a provider reference of the form BNR-20260118-1a2b3c4d
// that no payment row uses yet.
func GenerateUniqueOrderID(tx *gorm.DB, now time.Time) (string, error) {
	for i := 0; i < orderIDAttempts; i++ {
		b := make([]byte, 4)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		orderID := fmt.Sprintf("BNR-%s-%s", now.Format("20060102"), hex.EncodeToString(b))

		var count int64
		if err := tx.Model(&models.Payment{}).Where("provider_ref = ?", orderID).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return orderID, nil
		}
	}
	return "", errors.New("could not generate a unique order id")
}
