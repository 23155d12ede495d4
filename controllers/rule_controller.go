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

	"github.com/resellerhub/resellerhub_backend/middleware"
	"github.com/resellerhub/resellerhub_backend/models"
	"github.com/resellerhub/resellerhub_backend/repositories"
)

// RuleController handles admin management of auto-approval rules
type RuleController struct {
	Rules *repositories.RuleRepository
}

// NewRuleController creates a new rule controller
func NewRuleController(rules *repositories.RuleRepository) *RuleController {
	return &RuleController{Rules: rules}
}

// GetRules lists all auto-approval rules, highest priority first
func (rc *RuleController) GetRules(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rules, err := rc.Rules.FindAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve rules",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Rules retrieved successfully",
		Data:    rules,
	})
}

// GetRule returns a single auto-approval rule
func (rc *RuleController) GetRule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid rule ID format",
		})
	}

	rule, err := rc.Rules.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Rule not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve rule",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Rule retrieved successfully",
		Data:    rule,
	})
}

// CreateRule creates a new auto-approval rule. Rules are enabled by default.
func (rc *RuleController) CreateRule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.AutoApprovalRuleRequest
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

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	rule := models.AutoApprovalRule{
		Name:                 req.Name,
		Description:          req.Description,
		Enabled:              enabled,
		Priority:             req.Priority,
		MaxAmount:            req.MaxAmount,
		TrustedResellersOnly: req.TrustedResellersOnly,
	}

	claims := middleware.GetUserFromToken(c)
	if claims != nil {
		if adminID, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
			rule.CreatedBy = adminID
		}
	}

	if err := rc.Rules.Insert(ctx, &rule); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create rule",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Rule created successfully",
		Data:    rule,
	})
}

// UpdateRule updates an existing auto-approval rule
func (rc *RuleController) UpdateRule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid rule ID format",
		})
	}

	var req models.AutoApprovalRuleRequest
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

	set := bson.M{
		"name":                 req.Name,
		"description":          req.Description,
		"priority":             req.Priority,
		"maxAmount":            req.MaxAmount,
		"trustedResellersOnly": req.TrustedResellersOnly,
	}
	if req.Enabled != nil {
		set["enabled"] = *req.Enabled
	}

	rule, err := rc.Rules.Update(ctx, id, set)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Rule not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update rule",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Rule updated successfully",
		Data:    rule,
	})
}

// SetRuleEnabled toggles a rule without touching its other fields
func (rc *RuleController) SetRuleEnabled(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid rule ID format",
		})
	}

	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := c.Bind(&req); err != nil || req.Enabled == nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Request body must include an enabled flag",
		})
	}

	rule, err := rc.Rules.Update(ctx, id, bson.M{"enabled": *req.Enabled})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Rule not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update rule",
		})
	}

	message := "Rule disabled successfully"
	if *req.Enabled {
		message = "Rule enabled successfully"
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    rule,
	})
}

// DeleteRule removes an auto-approval rule. Commissions already approved by
// the rule keep their recorded rule reference.
func (rc *RuleController) DeleteRule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid rule ID format",
		})
	}

	if err := rc.Rules.Delete(ctx, id); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Rule not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete rule",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Rule deleted successfully",
	})
}
