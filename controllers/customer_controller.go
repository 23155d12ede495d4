package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/models"
	"github.com/resellerhub/resellerhub_backend/repositories"
	"github.com/resellerhub/resellerhub_backend/utils"
)

// CustomerController handles the customers a reseller registers
type CustomerController struct {
	DB        *mongo.Client
	Resellers *repositories.ResellerRepository
}

// NewCustomerController creates a new customer controller
func NewCustomerController(db *mongo.Client, resellers *repositories.ResellerRepository) *CustomerController {
	return &CustomerController{DB: db, Resellers: resellers}
}

// CustomerRequest is the payload for creating or updating a customer
type CustomerRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// callerReseller resolves the reseller profile behind the authenticated user
func (cc *CustomerController) callerReseller(ctx context.Context, c echo.Context) (*models.Reseller, error) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return nil, err
	}
	return cc.Resellers.FindByUserID(ctx, userID)
}

// CreateCustomer registers a new customer under the calling reseller
func (cc *CustomerController) CreateCustomer(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reseller, err := cc.callerReseller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "No reseller profile found for this account",
		})
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	if req.Email != "" {
		if req.Email, err = utils.SanitizeEmail(req.Email); err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid email format",
			})
		}
	}
	if req.Phone != "" {
		if req.Phone, err = utils.SanitizePhone(req.Phone); err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid phone number format",
			})
		}
	}

	now := time.Now()
	customer := models.Customer{
		ID:          primitive.NewObjectID(),
		ResellerID:  reseller.ID,
		Name:        utils.SanitizeInput(req.Name),
		Email:       req.Email,
		Phone:       req.Phone,
		CompanyName: utils.SanitizeInput(req.CompanyName),
		Notes:       utils.SanitizeInput(req.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := config.GetCollection(cc.DB, "customers").InsertOne(ctx, customer); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create customer",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Customer created successfully",
		Data:    customer,
	})
}

// GetMyCustomers lists the calling reseller's customers
func (cc *CustomerController) GetMyCustomers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reseller, err := cc.callerReseller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "No reseller profile found for this account",
		})
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := config.GetCollection(cc.DB, "customers").Find(ctx, bson.M{"resellerId": reseller.ID}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve customers",
		})
	}
	defer cursor.Close(ctx)

	customers := []models.Customer{}
	if err := cursor.All(ctx, &customers); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode customers",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Customers retrieved successfully",
		Data:    customers,
	})
}

// UpdateCustomer edits one of the calling reseller's customers
func (cc *CustomerController) UpdateCustomer(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reseller, err := cc.callerReseller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "No reseller profile found for this account",
		})
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid customer ID format",
		})
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	update := bson.M{"$set": bson.M{
		"name":        utils.SanitizeInput(req.Name),
		"email":       req.Email,
		"phone":       req.Phone,
		"companyName": utils.SanitizeInput(req.CompanyName),
		"notes":       utils.SanitizeInput(req.Notes),
		"updatedAt":   time.Now(),
	}}

	// scoped to the caller's reseller so one reseller cannot edit another's customer
	result, err := config.GetCollection(cc.DB, "customers").UpdateOne(ctx,
		bson.M{"_id": id, "resellerId": reseller.ID}, update)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update customer",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Customer not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Customer updated successfully",
	})
}

// DeleteCustomer removes one of the calling reseller's customers
func (cc *CustomerController) DeleteCustomer(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reseller, err := cc.callerReseller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "No reseller profile found for this account",
		})
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid customer ID format",
		})
	}

	contracts, err := config.GetCollection(cc.DB, "contracts").CountDocuments(ctx, bson.M{"customerId": id})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check customer contracts",
		})
	}
	if contracts > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Customer has contracts and cannot be deleted",
		})
	}

	result, err := config.GetCollection(cc.DB, "customers").DeleteOne(ctx,
		bson.M{"_id": id, "resellerId": reseller.ID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete customer",
		})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Customer not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Customer deleted successfully",
	})
}
