package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/models"
)

// AuditService writes the audit trail. Recording is best-effort: a failed
// insert is logged but never fails the operation being audited.
type AuditService struct {
	DB *mongo.Client
}

func NewAuditService(db *mongo.Client) *AuditService {
	return &AuditService{DB: db}
}

func (s *AuditService) Record(ctx context.Context, entry models.AuditLog) {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	collection := config.GetCollection(s.DB, "auditLogs")
	if _, err := collection.InsertOne(ctx, entry); err != nil {
		log.Printf("Failed to record audit entry %s for %s %s: %v",
			entry.Action, entry.EntityType, entry.EntityID.Hex(), err)
	}
}
