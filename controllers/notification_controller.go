package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/models"
	"github.com/resellerhub/resellerhub_backend/utils"
)

// NotificationController serves a user's in-app notification feed
type NotificationController struct {
	DB *mongo.Client
}

// NewNotificationController creates a new notification controller
func NewNotificationController(db *mongo.Client) *NotificationController {
	return &NotificationController{DB: db}
}

// GetNotifications lists the calling user's notifications, newest first
func (nc *NotificationController) GetNotifications(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	filter := bson.M{"userId": userID}
	if c.QueryParam("unread") == "true" {
		filter["isRead"] = false
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(100)
	cursor, err := config.GetCollection(nc.DB, "notifications").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve notifications",
		})
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode notifications",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications retrieved successfully",
		Data:    notifications,
	})
}

// MarkNotificationRead marks a single notification as read
func (nc *NotificationController) MarkNotificationRead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid notification ID format",
		})
	}

	result, err := config.GetCollection(nc.DB, "notifications").UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update notification",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Notification not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification marked as read",
	})
}

// MarkAllNotificationsRead marks every unread notification for the user
func (nc *NotificationController) MarkAllNotificationsRead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	result, err := config.GetCollection(nc.DB, "notifications").UpdateMany(ctx,
		bson.M{"userId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update notifications",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "All notifications marked as read",
		Data: map[string]interface{}{
			"updated": result.ModifiedCount,
		},
	})
}
