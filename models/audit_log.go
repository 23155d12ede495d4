package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit actions recorded for commission lifecycle transitions
const (
	AuditActionCreated      = "CREATED"
	AuditActionAutoApproved = "AUTO_APPROVED"
	AuditActionApproved     = "APPROVED"
	AuditActionRejected     = "REJECTED"
	AuditActionMarkPaid     = "MARK_PAID"
)

// AuditLog records who did what to which entity. Changes must carry at least
// the old and new status so a transition can be reconstructed.
type AuditLog struct {
	ID            primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	Action        string                 `json:"action" bson:"action"`
	PerformedByID primitive.ObjectID     `json:"performedById" bson:"performedById"`
	EntityType    string                 `json:"entityType" bson:"entityType"` // "commission"
	EntityID      primitive.ObjectID     `json:"entityId" bson:"entityId"`
	Changes       map[string]interface{} `json:"changes,omitempty" bson:"changes,omitempty"`
	CreatedAt     time.Time              `json:"createdAt" bson:"createdAt"`
}
