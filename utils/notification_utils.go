package utils

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/models"
)

// SaveNotification saves a notification to the database
func SaveNotification(db *mongo.Client, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	collection := config.GetCollection(db, "notifications")

	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	_, err := collection.InsertOne(context.Background(), notification)
	return err
}
