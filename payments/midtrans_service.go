package payments

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	config "github.com/benerin-indonesia/benerin/configs"
)

const defaultSnapURL = "https://app.sandbox.midtrans.com/snap/v1/transactions"

// NotificationSignature computes the signature_key Midtrans attaches to every
// HTTP notification: sha512(order_id + status_code + gross_amount + server key).
func NotificationSignature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func VerifyNotificationSignature(orderID, statusCode, grossAmount, serverKey, signature string) bool {
	if serverKey == "" || signature == "" {
		return false
	}
	expected := NotificationSignature(orderID, statusCode, grossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

type SnapTransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type SnapCustomer struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

type SnapItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type SnapRequest struct {
	TransactionDetails SnapTransactionDetails `json:"transaction_details"`
	CustomerDetails    *SnapCustomer          `json:"customer_details,omitempty"`
	ItemDetails        []SnapItem             `json:"item_details,omitempty"`
}

type SnapResponse struct {
	Token         string   `json:"token"`
	RedirectURL   string   `json:"redirect_url"`
	ErrorMessages []string `json:"error_messages,omitempty"`
}

type MidtransClient struct {
	ServerKey  string
	SnapURL    string
	HTTPClient *http.Client
}

func NewMidtransClient() *MidtransClient {
	serverKey := config.Config("MIDTRANS_SERVER_KEY")
	if serverKey == "" {
		log.Println("⚠️ MIDTRANS_SERVER_KEY is not set, checkout and webhooks will be rejected.")
	}
	return &MidtransClient{
		ServerKey:  serverKey,
		SnapURL:    config.ConfigDefault("MIDTRANS_SNAP_URL", defaultSnapURL),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateTransaction opens a Snap checkout session for one order.
func (c *MidtransClient) CreateTransaction(ctx context.Context, snapReq SnapRequest) (*SnapResponse, error) {
	if c.ServerKey == "" {
		return nil, fmt.Errorf("midtrans server key is not configured")
	}

	body, err := json.Marshal(snapReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snap payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.SnapURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create snap request: %v", err)
	}
	req.SetBasicAuth(c.ServerKey, "")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send snap request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snap response body: %v", err)
	}

	var snapResp SnapResponse
	if err := json.Unmarshal(respBody, &snapResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snap response: %v", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		log.Printf("Midtrans Snap error for order %s: %s", snapReq.TransactionDetails.OrderID, string(respBody))
		return nil, fmt.Errorf("midtrans snap returned status %d: %s", resp.StatusCode, strings.Join(snapResp.ErrorMessages, "; "))
	}
	if snapResp.Token == "" {
		return nil, fmt.Errorf("midtrans snap returned no token")
	}

	return &snapResp, nil
}
