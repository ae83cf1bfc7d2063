package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benerin-indonesia/benerin/database"
	"github.com/benerin-indonesia/benerin/handlers"
	"github.com/benerin-indonesia/benerin/models"
	"github.com/benerin-indonesia/benerin/payments"
	"github.com/benerin-indonesia/benerin/routes"
	"github.com/benerin-indonesia/benerin/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	testJWTSecret = "test-jwt-secret"
	testServerKey = "SB-Mid-server-test"
)

type stubSnap struct{}

func (stubSnap) CreateTransaction(ctx context.Context, req payments.SnapRequest) (*payments.SnapResponse, error) {
	return &payments.SnapResponse{Token: "snap-" + req.TransactionDetails.OrderID, RedirectURL: "https://snap.example/pay"}, nil
}

func setup(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", testJWTSecret)
	t.Setenv("MIDTRANS_SERVER_KEY", testServerKey)
	t.Setenv("MIN_PAYOUT", "10000")
	t.Setenv("PLATFORM_COMMISSION_RATE", "0")

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	prevDB, prevSnap := database.DB, handlers.SnapClient
	database.DB = db
	handlers.SnapClient = stubSnap{}
	t.Cleanup(func() {
		database.DB = prevDB
		handlers.SnapClient = prevSnap
	})

	app := fiber.New()
	routes.Register(app)
	return app, db
}

func tokenFor(t *testing.T, id uuid.UUID, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": id.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else if len(raw) > 0 && raw[0] == '[' {
		var list []interface{}
		require.NoError(t, json.Unmarshal(raw, &list))
		out["items"] = list
	}
	return resp.StatusCode, out
}

func technicianWithBalance(t *testing.T, db *gorm.DB, amount int64) models.Technician {
	t.Helper()
	bank, name, number := "BRI", "Agus", "0011223344"
	tech := models.Technician{FullName: "Agus", Email: uuid.NewString() + "@benerin.test", Password: "x",
		BankName: &bank, AccountName: &name, AccountNumber: &number}
	require.NoError(t, db.Create(&tech).Error)
	if amount != 0 {
		_, err := services.PostLedgerEntry(db, services.PostEntryInput{
			OwnerRole: models.OwnerTechnician, OwnerID: tech.ID, Amount: decimal.NewFromInt(amount), Type: models.EntryHold,
		})
		require.NoError(t, err)
	}
	return tech
}

func pendingPayment(t *testing.T, db *gorm.DB, tech *models.Technician, amount int64) models.Payment {
	t.Helper()
	user := models.User{FullName: "Dewi", Email: uuid.NewString() + "@benerin.test", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	price := decimal.NewFromInt(amount)
	sr := models.ServiceRequest{UserID: user.ID, Title: "Servis kulkas", AgreedPrice: &price, Status: models.ServiceRequestAwaitingPayment}
	if tech != nil {
		sr.TechnicianID = &tech.ID
	}
	require.NoError(t, db.Create(&sr).Error)
	p := models.Payment{ServiceRequestID: sr.ID, UserID: user.ID, TechnicianID: sr.TechnicianID, Amount: price,
		Status: models.PaymentPending, Provider: models.ProviderMidtrans, ProviderRef: "BNR-H-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func notification(orderID, status, gross, key string) map[string]string {
	return map[string]string{
		"order_id":           orderID,
		"transaction_status": status,
		"status_code":        "200",
		"gross_amount":       gross,
		"signature_key":      payments.NotificationSignature(orderID, "200", gross, key),
	}
}

func TestWebhookEndpoint(t *testing.T) {
	app, db := setup(t)
	tech := technicianWithBalance(t, db, 0)
	payment := pendingPayment(t, db, &tech, 150000)
	path := "/api/v1/payments/midtrans/notification"

	status, body := do(t, app, http.MethodPost, path, "", notification(payment.ProviderRef, "settlement", "150000.00", "wrong-key"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Invalid signature", body["error"])

	status, body = do(t, app, http.MethodPost, path, "", notification(payment.ProviderRef, "settlement", "150000.00", testServerKey))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "settled", body["outcome"])

	status, body = do(t, app, http.MethodPost, path, "", notification(payment.ProviderRef, "settlement", "150000.00", testServerKey))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "duplicate", body["outcome"])

	status, body = do(t, app, http.MethodPost, path, "", notification(payment.ProviderRef, "pending", "150000.00", testServerKey))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "duplicate", body["outcome"])

	var stored models.Payment
	require.NoError(t, db.First(&stored, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentSettled, stored.Status)

	balance, err := services.CurrentBalance(db, models.OwnerTechnician, tech.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(150000)))

	status, _ = do(t, app, http.MethodPost, path, "", []byte("not json"))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, path, "", notification("BNR-MISSING", "settlement", "1.00", testServerKey))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTechnicianPayoutEndpoints(t *testing.T) {
	app, db := setup(t)
	tech := technicianWithBalance(t, db, 100000)
	token := tokenFor(t, tech.ID, models.RoleTechnician)

	status, body := do(t, app, http.MethodPost, "/api/v1/technician/payouts", token, map[string]interface{}{"amount": 5000})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "amount")

	status, body = do(t, app, http.MethodPost, "/api/v1/technician/payouts", token, map[string]interface{}{"amount": 200000})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"].(map[string]interface{})["amount"], "insufficient balance")

	status, body = do(t, app, http.MethodPost, "/api/v1/technician/payouts", token, map[string]interface{}{"amount": "80000"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "BRI", body["bank_name"])

	status, body = do(t, app, http.MethodGet, "/api/v1/technician/balance", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "20000", body["balance"])

	status, body = do(t, app, http.MethodGet, "/api/v1/technician/payouts", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)

	status, body = do(t, app, http.MethodGet, "/api/v1/technician/ledger", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 2)
}

func TestPayoutRequiresBankAccount(t *testing.T) {
	app, db := setup(t)
	tech := models.Technician{FullName: "Joko", Email: "joko@benerin.test", Password: "x"}
	require.NoError(t, db.Create(&tech).Error)
	_, err := services.PostAdjustment(db, models.OwnerTechnician, tech.ID, decimal.NewFromInt(50000), "seed")
	require.NoError(t, err)

	status, body := do(t, app, http.MethodPost, "/api/v1/technician/payouts", tokenFor(t, tech.ID, models.RoleTechnician), map[string]interface{}{"amount": 20000})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "bank_account")
}

func TestRoleGuards(t *testing.T) {
	app, db := setup(t)
	tech := technicianWithBalance(t, db, 0)

	status, _ := do(t, app, http.MethodGet, "/api/v1/technician/balance", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodGet, "/api/v1/technician/balance", tokenFor(t, uuid.New(), models.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(t, app, http.MethodGet, "/api/v1/admin/balances", tokenFor(t, tech.ID, models.RoleTechnician), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(t, app, http.MethodGet, "/api/v1/balance/me", tokenFor(t, tech.ID, models.RoleTechnician), nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAdminPayoutAndAdjustmentEndpoints(t *testing.T) {
	app, db := setup(t)
	tech := technicianWithBalance(t, db, 100000)
	admin := tokenFor(t, uuid.New(), models.RoleAdmin)

	payout, err := services.RequestPayout(db, tech.ID, decimal.NewFromInt(60000), decimal.NewFromInt(10000))
	require.NoError(t, err)

	status, body := do(t, app, http.MethodGet, "/api/v1/admin/payouts", admin, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)

	status, _ = do(t, app, http.MethodPost, "/api/v1/admin/payouts/"+payout.ID.String()+"/process", admin, map[string]string{"decision": "approve"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, app, http.MethodPost, "/api/v1/admin/payouts/"+payout.ID.String()+"/process", admin, map[string]string{"decision": "rejected", "note": "nama rekening tidak cocok"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "rejected", body["status"])

	status, _ = do(t, app, http.MethodPost, "/api/v1/admin/payouts/"+payout.ID.String()+"/process", admin, map[string]string{"decision": "paid"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = do(t, app, http.MethodPost, "/api/v1/admin/payouts/"+uuid.NewString()+"/process", admin, map[string]string{"decision": "paid"})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = do(t, app, http.MethodPost, "/api/v1/admin/adjustments", admin, map[string]interface{}{
		"owner_role": "technician", "owner_id": tech.ID.String(), "amount": "-5000", "note": "biaya admin bank",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "adjustment", body["type"])

	status, body = do(t, app, http.MethodGet, "/api/v1/admin/balances?role=technician", admin, nil)
	require.Equal(t, http.StatusOK, status)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "95000", items[0].(map[string]interface{})["balance"])

	status, body = do(t, app, http.MethodGet, "/api/v1/admin/ledger?owner_id="+tech.ID.String(), admin, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 4)
}

func TestCheckoutCancelAndRefundEndpoints(t *testing.T) {
	app, db := setup(t)
	tech := technicianWithBalance(t, db, 0)
	user := models.User{FullName: "Rudi", Email: "rudi@benerin.test", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	price := decimal.NewFromInt(90000)
	sr := models.ServiceRequest{UserID: user.ID, TechnicianID: &tech.ID, Title: "Pasang CCTV", AgreedPrice: &price, Status: models.ServiceRequestAwaitingPayment}
	require.NoError(t, db.Create(&sr).Error)
	userToken := tokenFor(t, user.ID, models.RoleUser)
	admin := tokenFor(t, uuid.New(), models.RoleAdmin)

	status, body := do(t, app, http.MethodPost, "/api/v1/service-requests/"+sr.ID.String()+"/checkout", userToken, nil)
	require.Equal(t, http.StatusCreated, status)
	orderID := body["order_id"].(string)
	paymentID := body["payment_id"].(string)
	assert.Equal(t, "snap-"+orderID, body["snap_token"])

	status, _ = do(t, app, http.MethodPost, "/api/v1/admin/payments/"+paymentID+"/refund", admin, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = do(t, app, http.MethodPost, "/api/v1/payments/midtrans/notification", "", notification(orderID, "settlement", "90000.00", testServerKey))
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodPost, "/api/v1/payments/"+paymentID+"/cancel", userToken, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = do(t, app, http.MethodPost, "/api/v1/admin/payments/"+paymentID+"/refund", admin, map[string]string{"reason": "teknisi tidak datang"})
	require.Equal(t, http.StatusCreated, status)

	status, body = do(t, app, http.MethodGet, "/api/v1/balance/me", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "90000", body["balance"])

	status, body = do(t, app, http.MethodGet, "/api/v1/payments/me", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "refunded", items[0].(map[string]interface{})["status"])
}

func TestLoginEndpoints(t *testing.T) {
	app, db := setup(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{FullName: "Admin", Email: "admin@benerin.test", Password: string(hash), Role: models.RoleAdmin}).Error)
	require.NoError(t, db.Create(&models.Technician{FullName: "Tono", Email: "tono@benerin.test", Password: string(hash)}).Error)

	status, body := do(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@benerin.test", "password": "rahasia123"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin", body["role"])

	status, _ = do(t, app, http.MethodGet, "/api/v1/admin/balances", body["token"].(string), nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = do(t, app, http.MethodPost, "/api/v1/technician/auth/login", "", map[string]string{"email": "tono@benerin.test", "password": "rahasia123"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "technician", body["role"])

	status, _ = do(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@benerin.test", "password": "salah"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealthAndMetrics(t *testing.T) {
	app, _ := setup(t)

	status, body := do(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "go_goroutines")
}
