package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AutoApprovalRule promotes a matching commission request straight to approved
// without admin review. Disabled rules are never matched. Higher priority wins.
type AutoApprovalRule struct {
	ID                   primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name                 string             `json:"name" bson:"name"`
	Description          string             `json:"description,omitempty" bson:"description,omitempty"`
	Enabled              bool               `json:"enabled" bson:"enabled"`
	Priority             int                `json:"priority" bson:"priority"`
	MaxAmount            *float64           `json:"maxAmount,omitempty" bson:"maxAmount,omitempty"` // inclusive; nil means unlimited
	TrustedResellersOnly bool               `json:"trustedResellersOnly" bson:"trustedResellersOnly"`
	CreatedBy            primitive.ObjectID `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt            time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// AutoApprovalRuleRequest is the admin payload for creating/updating a rule
type AutoApprovalRuleRequest struct {
	Name                 string   `json:"name" validate:"required"`
	Description          string   `json:"description,omitempty"`
	Enabled              *bool    `json:"enabled,omitempty"`
	Priority             int      `json:"priority"`
	MaxAmount            *float64 `json:"maxAmount,omitempty" validate:"omitempty,gt=0"`
	TrustedResellersOnly bool     `json:"trustedResellersOnly"`
}
