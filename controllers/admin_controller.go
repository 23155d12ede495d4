package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/models"
)

// AdminController serves admin-only reporting endpoints: audit trails,
// payout documents and dashboard statistics.
type AdminController struct {
	DB *mongo.Client
}

// NewAdminController creates a new admin controller
func NewAdminController(db *mongo.Client) *AdminController {
	return &AdminController{DB: db}
}

// GetAuditLogs lists audit entries, optionally filtered to one entity
func (ac *AdminController) GetAuditLogs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if entityID := c.QueryParam("entityId"); entityID != "" {
		id, err := primitive.ObjectIDFromHex(entityID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid entity ID format",
			})
		}
		filter["entityId"] = id
	}
	if action := c.QueryParam("action"); action != "" {
		filter["action"] = action
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(200)
	cursor, err := config.GetCollection(ac.DB, "auditLogs").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve audit logs",
		})
	}
	defer cursor.Close(ctx)

	logs := []models.AuditLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode audit logs",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Audit logs retrieved successfully",
		Data:    logs,
	})
}

// GetPayoutDocuments lists generated payout documents
func (ac *AdminController) GetPayoutDocuments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
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
	cursor, err := config.GetCollection(ac.DB, "payoutDocuments").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve payout documents",
		})
	}
	defer cursor.Close(ctx)

	documents := []models.PayoutDocument{}
	if err := cursor.All(ctx, &documents); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode payout documents",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout documents retrieved successfully",
		Data:    documents,
	})
}

// GetDashboardStats aggregates commission counts and amounts by status,
// plus headline counts for resellers and contracts.
func (ac *AdminController) GetDashboardStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalAmount", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
	}

	cursor, err := config.GetCollection(ac.DB, "commissions").Aggregate(ctx, pipeline)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to aggregate commission statistics",
		})
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Status      string  `bson:"_id"`
		Count       int64   `bson:"count"`
		TotalAmount float64 `bson:"totalAmount"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode commission statistics",
		})
	}

	commissionStats := map[string]interface{}{}
	for _, status := range []string{
		models.CommissionStatusPending,
		models.CommissionStatusApproved,
		models.CommissionStatusRejected,
		models.CommissionStatusPaid,
	} {
		commissionStats[status] = map[string]interface{}{"count": 0, "totalAmount": 0.0}
	}
	for _, g := range groups {
		commissionStats[g.Status] = map[string]interface{}{
			"count":       g.Count,
			"totalAmount": g.TotalAmount,
		}
	}

	autoApproved, err := config.GetCollection(ac.DB, "commissions").CountDocuments(ctx, bson.M{"autoApproved": true})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to count auto-approved commissions",
		})
	}

	resellerCount, err := config.GetCollection(ac.DB, "resellers").CountDocuments(ctx, bson.M{})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to count resellers",
		})
	}

	activeContracts, err := config.GetCollection(ac.DB, "contracts").CountDocuments(ctx, bson.M{"status": "active"})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to count contracts",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard statistics retrieved successfully",
		Data: map[string]interface{}{
			"commissions":     commissionStats,
			"autoApproved":    autoApproved,
			"resellers":       resellerCount,
			"activeContracts": activeContracts,
		},
	})
}
