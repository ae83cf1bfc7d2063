package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/benerin-indonesia/benerin/models"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Client struct {
	AccountID uuid.UUID
	Conn      *websocket.Conn
}

// PaymentStatusEvent is pushed to the payer whenever a notification moves their payment.
type PaymentStatusEvent struct {
	Type             string               `json:"type"`
	PaymentID        uuid.UUID            `json:"payment_id"`
	OrderID          string               `json:"order_id"`
	ServiceRequestID uuid.UUID            `json:"service_request_id"`
	Status           models.PaymentStatus `json:"status"`
	Amount           decimal.Decimal      `json:"amount"`
	PaidAt           *time.Time           `json:"paid_at,omitempty"`
}

type delivery struct {
	accountID uuid.UUID
	payload   interface{}
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var outbox = make(chan delivery, 256)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.AccountID)
			clientsMu.Lock()
			clients[client.AccountID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.AccountID)
			clientsMu.Lock()
			if conn, ok := clients[client.AccountID]; ok && conn == client.Conn {
				delete(clients, client.AccountID)
			}
			clientsMu.Unlock()
		case d := <-outbox:
			clientsMu.RLock()
			conn, ok := clients[d.accountID]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(d.payload); err != nil {
				log.Printf("Error sending event to client %s: %v", d.accountID, err)
				conn.Close()
				clientsMu.Lock()
				if clients[d.accountID] == conn {
					delete(clients, d.accountID)
				}
				clientsMu.Unlock()
			}
		}
	}
}

// NotifyPaymentStatus queues a status event for the payer. It never blocks; events
// are dropped when the hub is backed up.
func NotifyPaymentStatus(p *models.Payment) {
	event := PaymentStatusEvent{
		Type:             "payment_status",
		PaymentID:        p.ID,
		OrderID:          p.ProviderRef,
		ServiceRequestID: p.ServiceRequestID,
		Status:           p.Status,
		Amount:           p.Amount,
		PaidAt:           p.PaidAt,
	}
	select {
	case outbox <- delivery{accountID: p.UserID, payload: event}:
	default:
		log.Printf("⚠️ Realtime outbox full, dropping status event for payment %s", p.ID)
	}
}
