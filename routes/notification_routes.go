package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resellerhub/resellerhub_backend/controllers"
	"github.com/resellerhub/resellerhub_backend/middleware"
	"github.com/resellerhub/resellerhub_backend/utils"
	"github.com/resellerhub/resellerhub_backend/websocket"
)

// RegisterNotificationRoutes sets up the in-app feed and the WebSocket endpoint
func RegisterNotificationRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	notificationController := controllers.NewNotificationController(db)

	r := e.Group("/api/notifications")
	r.Use(middleware.JWTMiddleware())
	r.GET("", notificationController.GetNotifications)
	r.PUT("/:id/read", notificationController.MarkNotificationRead)
	r.PUT("/read-all", notificationController.MarkAllNotificationsRead)

	// WebSocket connections authenticate either via a token query parameter
	// or in-band after connecting
	e.GET("/ws/notifications", func(c echo.Context) error {
		userID := primitive.NilObjectID
		if token := c.QueryParam("token"); token != "" {
			resp, err := utils.ValidateTokenFromHeader("Bearer "+token, db)
			if err != nil || !resp.Valid || resp.User == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": "Invalid token",
				})
			}
			userID = resp.User.ID
		}
		return websocket.HandleWebSocket(c, hub, userID)
	})
}
