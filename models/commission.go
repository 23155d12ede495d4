package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Commission statuses. A commission only moves forward:
// pending -> approved -> paid, or pending -> rejected.
const (
	CommissionStatusPending  = "pending"
	CommissionStatusApproved = "approved"
	CommissionStatusRejected = "rejected"
	CommissionStatusPaid     = "paid"
)

// Commission represents a payable amount owed to a reseller for a sales period
type Commission struct {
	ID                 primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	ResellerID         primitive.ObjectID  `json:"resellerId" bson:"resellerId"`
	CustomerID         *primitive.ObjectID `json:"customerId,omitempty" bson:"customerId,omitempty"`
	Amount             float64             `json:"amount" bson:"amount"`
	Period             string              `json:"period" bson:"period"` // e.g. "2025-Q1"
	Description        string              `json:"description,omitempty" bson:"description,omitempty"`
	Notes              string              `json:"notes,omitempty" bson:"notes,omitempty"`
	Status             string              `json:"status" bson:"status"`
	AutoApproved       bool                `json:"autoApproved" bson:"autoApproved"`
	AutoApprovalRuleID *primitive.ObjectID `json:"autoApprovalRuleId,omitempty" bson:"autoApprovalRuleId,omitempty"`
	ApprovedByID       *primitive.ObjectID `json:"approvedById,omitempty" bson:"approvedById,omitempty"`
	RequestedAt        time.Time           `json:"requestedAt" bson:"requestedAt"`
	ApprovedAt         *time.Time          `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
	RejectedAt         *time.Time          `json:"rejectedAt,omitempty" bson:"rejectedAt,omitempty"`
	PaidAt             *time.Time          `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	RejectionReason    string              `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	PaymentReference   string              `json:"paymentReference,omitempty" bson:"paymentReference,omitempty"`
}

// IsTerminal reports whether no further transitions can leave the current status
func (c *Commission) IsTerminal() bool {
	return c.Status == CommissionStatusRejected || c.Status == CommissionStatusPaid
}

// CommissionRequest is the payload a reseller submits to request a commission
type CommissionRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Period      string  `json:"period" validate:"required"`
	CustomerID  string  `json:"customerId,omitempty"`
	Description string  `json:"description,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// CommissionActionRequest is the payload for admin transitions
type CommissionActionRequest struct {
	Notes            string `json:"notes,omitempty"`
	RejectionReason  string `json:"rejectionReason,omitempty"`
	PaymentReference string `json:"paymentReference,omitempty"`
}
