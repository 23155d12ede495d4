package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reseller represents a partner who registers customers and earns commissions
type Reseller struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"userId" bson:"userId"`
	FullName      string             `json:"fullName" bson:"fullName"`
	Email         string             `json:"email" bson:"email"`
	PhoneNumber   string             `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	CompanyName   string             `json:"companyName,omitempty" bson:"companyName,omitempty"`
	Region        string             `json:"region,omitempty" bson:"region,omitempty"`
	ReferenceCode string             `json:"referenceCode,omitempty" bson:"referenceCode,omitempty"`
	LogoPath      string             `json:"logoPath,omitempty" bson:"logoPath,omitempty"`
	IsTrusted     bool               `json:"isTrusted" bson:"isTrusted"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Customer is an end customer registered by a reseller
type Customer struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ResellerID  primitive.ObjectID `json:"resellerId" bson:"resellerId"`
	Name        string             `json:"name" bson:"name"`
	Email       string             `json:"email,omitempty" bson:"email,omitempty"`
	Phone       string             `json:"phone,omitempty" bson:"phone,omitempty"`
	CompanyName string             `json:"companyName,omitempty" bson:"companyName,omitempty"`
	Notes       string             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Contract records an agreement between a customer and the company,
// brokered by a reseller
type Contract struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ResellerID primitive.ObjectID `json:"resellerId" bson:"resellerId"`
	CustomerID primitive.ObjectID `json:"customerId" bson:"customerId"`
	Title      string             `json:"title" bson:"title"`
	Value      float64            `json:"value" bson:"value"`
	Status     string             `json:"status" bson:"status"` // "active", "expired", "cancelled"
	StartDate  time.Time          `json:"startDate" bson:"startDate"`
	EndDate    *time.Time         `json:"endDate,omitempty" bson:"endDate,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}
