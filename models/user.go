// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User types recognized by the portal
const (
	UserTypeAdmin    = "admin"
	UserTypeReseller = "reseller"
)

// User model
type User struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Email          string              `json:"email" bson:"email"`
	Password       string              `json:"password,omitempty" bson:"password"`
	FullName       string              `json:"fullName" bson:"fullName"`
	UserType       string              `json:"userType" bson:"userType"` // "admin", "reseller"
	Phone          string              `json:"phone,omitempty" bson:"phone,omitempty"`
	IsActive       bool                `json:"isActive" bson:"isActive"`
	ResellerID     *primitive.ObjectID `json:"resellerId,omitempty" bson:"resellerId,omitempty"`
	LastActivityAt time.Time           `json:"lastActivityAt" bson:"lastActivityAt"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
