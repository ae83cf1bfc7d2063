package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/benerin-indonesia/benerin/database"
	"github.com/benerin-indonesia/benerin/models"
	"github.com/benerin-indonesia/benerin/payments"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testServerKey = "SB-Mid-server-test"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func createUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	u := models.User{FullName: "Sari Wulandari", Email: uuid.NewString() + "@benerin.test", Password: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createTechnician(t *testing.T, db *gorm.DB, withBank bool) models.Technician {
	t.Helper()
	tech := models.Technician{FullName: "Budi Santoso", Email: uuid.NewString() + "@benerin.test", Password: "x"}
	if withBank {
		tech.BankName = strPtr("BCA")
		tech.AccountName = strPtr("Budi Santoso")
		tech.AccountNumber = strPtr("1234567890")
	}
	require.NoError(t, db.Create(&tech).Error)
	return tech
}

func createServiceRequest(t *testing.T, db *gorm.DB, user models.User, tech *models.Technician, price string) models.ServiceRequest {
	t.Helper()
	sr := models.ServiceRequest{
		UserID: user.ID,
		Title:  "Perbaikan AC bocor",
		Status: models.ServiceRequestAwaitingPayment,
	}
	if tech != nil {
		sr.TechnicianID = &tech.ID
	}
	if price != "" {
		p := dec(price)
		sr.AgreedPrice = &p
	}
	require.NoError(t, db.Create(&sr).Error)
	return sr
}

func createPendingPayment(t *testing.T, db *gorm.DB, sr models.ServiceRequest, amount string) models.Payment {
	t.Helper()
	p := models.Payment{
		ServiceRequestID: sr.ID,
		UserID:           sr.UserID,
		TechnicianID:     sr.TechnicianID,
		Amount:           dec(amount),
		Currency:         models.DefaultCurrency,
		Status:           models.PaymentPending,
		Provider:         models.ProviderMidtrans,
		ProviderRef:      "BNR-TEST-" + uuid.NewString()[:8],
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func credit(t *testing.T, db *gorm.DB, role models.OwnerRole, id uuid.UUID, amount string) {
	t.Helper()
	_, err := PostLedgerEntry(db, PostEntryInput{OwnerRole: role, OwnerID: id, Amount: dec(amount), Type: models.EntryAdjustment})
	require.NoError(t, err)
}

func balanceOf(t *testing.T, db *gorm.DB, role models.OwnerRole, id uuid.UUID) decimal.Decimal {
	t.Helper()
	b, err := CurrentBalance(db, role, id)
	require.NoError(t, err)
	return b
}

func signedNotification(t *testing.T, orderID, status, statusCode, gross string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"order_id":           orderID,
		"transaction_id":     uuid.NewString(),
		"transaction_status": status,
		"status_code":        statusCode,
		"gross_amount":       gross,
		"payment_type":       "bank_transfer",
		"transaction_time":   "2026-01-18 10:00:00",
		"settlement_time":    "2026-01-18 10:05:00",
		"signature_key":      payments.NotificationSignature(orderID, statusCode, gross, testServerKey),
	})
	require.NoError(t, err)
	return body
}

func newProcessor(db *gorm.DB) *NotificationProcessor {
	return &NotificationProcessor{
		DB:             db,
		ServerKey:      testServerKey,
		CommissionRate: decimal.Zero,
		Now:            func() time.Time { return time.Date(2026, 1, 18, 3, 0, 0, 0, time.UTC) },
	}
}
