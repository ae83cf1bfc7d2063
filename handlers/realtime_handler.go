package handlers

import (
	"errors"
	"fmt"
	"log"

	config "github.com/benerin-indonesia/benerin/configs"
	"github.com/benerin-indonesia/benerin/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type authMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// ServeWs authenticates with the first frame ({"type":"auth","token":...}), answers
// {"type":"ready"} and then only keeps the socket open; events flow one way from the hub.
func ServeWs(c *websocketcontrib.Conn) {
	var msg authMessage
	if err := c.ReadJSON(&msg); err != nil || msg.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	claims, err := parseToken(msg.Token)
	if err != nil {
		log.Printf("WebSocket auth failed: invalid token: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	raw, _ := claims["user_id"].(string)
	accountID, err := uuid.Parse(raw)
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}

	// Once registered, the hub is the only writer on this connection.
	if err := c.WriteJSON(fiber.Map{"type": "ready"}); err != nil {
		c.Close()
		return
	}

	client := &websocket.Client{AccountID: accountID, Conn: c}
	websocket.Register <- client
	defer func() {
		websocket.Unregister <- client
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if !websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
				log.Printf("WebSocket read error for %s: %v", accountID, err)
			}
			return
		}
	}
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
