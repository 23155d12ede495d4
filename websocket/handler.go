package websocket

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket handles the WebSocket connection
func HandleWebSocket(c echo.Context, hub *Hub, userID primitive.ObjectID) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	// Create client with potentially nil userID (will be set after authentication)
	client := &Client{
		UserID:        userID,
		Conn:          conn,
		Authenticated: userID != primitive.NilObjectID,
	}

	hub.register <- client

	// Send a welcome message
	if client.Authenticated {
		conn.WriteJSON(Notification{
			Type:    "connected",
			Message: "WebSocket connection established",
			UserID:  userID.Hex(),
		})
	} else {
		conn.WriteJSON(Notification{
			Type:         "connected",
			Message:      "WebSocket connection established. Please authenticate to receive notifications.",
			RequiresAuth: true,
		})
	}

	// Handle disconnection
	go func() {
		defer func() {
			hub.unregister <- client
		}()

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				break
			}

			// Handle authentication message (format: "AUTH:token")
			if messageType == websocket.TextMessage && !client.Authenticated {
				messageStr := string(message)
				if strings.HasPrefix(messageStr, "AUTH:") {
					tokenUserID, err := userIDFromToken(strings.TrimPrefix(messageStr, "AUTH:"))
					if err != nil {
						conn.WriteJSON(Notification{
							Type:         "auth_response",
							Message:      "Authentication failed",
							RequiresAuth: true,
						})
						continue
					}

					hub.AuthenticateClient(client, tokenUserID)
					conn.WriteJSON(Notification{
						Type:    "auth_response",
						Message: "Authentication successful",
						UserID:  tokenUserID.Hex(),
					})
				}
			}
		}
	}()

	return nil
}

// userIDFromToken validates a JWT and extracts the user id claim
func userIDFromToken(tokenString string) (primitive.ObjectID, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return primitive.NilObjectID, errors.New("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid token claims")
	}

	userIDStr, ok := claims["userId"].(string)
	if !ok {
		return primitive.NilObjectID, errors.New("missing user id claim")
	}

	return primitive.ObjectIDFromHex(userIDStr)
}
