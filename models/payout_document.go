package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PayoutDocument evidences an approved commission payment. Generated as a side
// effect of manual approval; generation failure never fails the approval itself.
type PayoutDocument struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	CommissionID    primitive.ObjectID `json:"commissionId" bson:"commissionId"`
	ResellerID      primitive.ObjectID `json:"resellerId" bson:"resellerId"`
	Amount          float64            `json:"amount" bson:"amount"`
	Period          string             `json:"period" bson:"period"`
	ReferenceNumber string             `json:"referenceNumber" bson:"referenceNumber"`
	QRCodePath      string             `json:"qrCodePath,omitempty" bson:"qrCodePath,omitempty"`
	GeneratedByID   primitive.ObjectID `json:"generatedById" bson:"generatedById"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}
