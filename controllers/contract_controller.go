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

// ContractController handles contracts a reseller records against customers
type ContractController struct {
	DB        *mongo.Client
	Resellers *repositories.ResellerRepository
}

// NewContractController creates a new contract controller
func NewContractController(db *mongo.Client, resellers *repositories.ResellerRepository) *ContractController {
	return &ContractController{DB: db, Resellers: resellers}
}

// ContractRequest is the payload for creating a contract
type ContractRequest struct {
	CustomerID string     `json:"customerId" validate:"required"`
	Title      string     `json:"title" validate:"required"`
	Value      float64    `json:"value" validate:"required,gt=0"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    *time.Time `json:"endDate,omitempty"`
}

func (cc *ContractController) callerReseller(ctx context.Context, c echo.Context) (*models.Reseller, error) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return nil, err
	}
	return cc.Resellers.FindByUserID(ctx, userID)
}

// CreateContract records a new contract for one of the reseller's customers
func (cc *ContractController) CreateContract(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reseller, err := cc.callerReseller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "No reseller profile found for this account",
		})
	}

	var req ContractRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	req.Title = strings.TrimSpace(req.Title)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "End date cannot be before start date",
		})
	}

	customerID, err := primitive.ObjectIDFromHex(req.CustomerID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid customer ID format",
		})
	}

	count, err := config.GetCollection(cc.DB, "customers").CountDocuments(ctx,
		bson.M{"_id": customerID, "resellerId": reseller.ID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify customer",
		})
	}
	if count == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Customer not found",
		})
	}

	startDate := req.StartDate
	if startDate.IsZero() {
		startDate = time.Now()
	}

	now := time.Now()
	contract := models.Contract{
		ID:         primitive.NewObjectID(),
		ResellerID: reseller.ID,
		CustomerID: customerID,
		Title:      utils.SanitizeInput(req.Title),
		Value:      req.Value,
		Status:     "active",
		StartDate:  startDate,
		EndDate:    req.EndDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := config.GetCollection(cc.DB, "contracts").InsertOne(ctx, contract); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create contract",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Contract created successfully",
		Data:    contract,
	})
}

// GetMyContracts lists the calling reseller's contracts
func (cc *ContractController) GetMyContracts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reseller, err := cc.callerReseller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "No reseller profile found for this account",
		})
	}

	filter := bson.M{"resellerId": reseller.ID}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := config.GetCollection(cc.DB, "contracts").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve contracts",
		})
	}
	defer cursor.Close(ctx)

	contracts := []models.Contract{}
	if err := cursor.All(ctx, &contracts); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode contracts",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Contracts retrieved successfully",
		Data:    contracts,
	})
}

// UpdateContractStatus moves a contract between active, expired and cancelled
func (cc *ContractController) UpdateContractStatus(c echo.Context) error {
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
			Message: "Invalid contract ID format",
		})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	switch req.Status {
	case "active", "expired", "cancelled":
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Status must be active, expired or cancelled",
		})
	}

	result, err := config.GetCollection(cc.DB, "contracts").UpdateOne(ctx,
		bson.M{"_id": id, "resellerId": reseller.ID},
		bson.M{"$set": bson.M{"status": req.Status, "updatedAt": time.Now()}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update contract",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Contract not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Contract status updated successfully",
	})
}

// GetAllContracts lists every contract for the admin
func (cc *ContractController) GetAllContracts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if resellerID := c.QueryParam("resellerId"); resellerID != "" {
		id, err := primitive.ObjectIDFromHex(resellerID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid reseller ID format",
			})
		}
		filter["resellerId"] = id
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := config.GetCollection(cc.DB, "contracts").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve contracts",
		})
	}
	defer cursor.Close(ctx)

	contracts := []models.Contract{}
	if err := cursor.All(ctx, &contracts); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode contracts",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Contracts retrieved successfully",
		Data:    contracts,
	})
}
