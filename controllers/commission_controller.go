package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resellerhub/resellerhub_backend/middleware"
	"github.com/resellerhub/resellerhub_backend/models"
	"github.com/resellerhub/resellerhub_backend/repositories"
	"github.com/resellerhub/resellerhub_backend/services"
)

// CommissionController exposes the commission lifecycle over HTTP: resellers
// submit and list their commissions, admins review and transition them.
type CommissionController struct {
	Service     *services.CommissionService
	Commissions *repositories.CommissionRepository
	Resellers   *repositories.ResellerRepository
}

// NewCommissionController creates a new commission controller
func NewCommissionController(service *services.CommissionService, commissions *repositories.CommissionRepository, resellers *repositories.ResellerRepository) *CommissionController {
	return &CommissionController{
		Service:     service,
		Commissions: commissions,
		Resellers:   resellers,
	}
}

// actingUser builds the explicit acting-user parameter from the JWT claims
func actingUser(c echo.Context) (services.ActingUser, error) {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return services.ActingUser{}, errors.New("no user claims")
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return services.ActingUser{}, err
	}
	return services.ActingUser{ID: userID, Role: claims.UserType}, nil
}

// CreateCommission handles a reseller's commission request. When an
// auto-approval rule matches, the returned commission is already approved.
func (cc *CommissionController) CreateCommission(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	actor, err := actingUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	var req models.CommissionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	reseller, err := cc.Resellers.FindByUserID(ctx, actor.ID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "No reseller profile found for this account",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to find reseller profile",
		})
	}

	var customerID *primitive.ObjectID
	if req.CustomerID != "" {
		id, err := primitive.ObjectIDFromHex(req.CustomerID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid customer ID format",
			})
		}
		customerID = &id
	}

	commission, err := cc.Service.Create(ctx, actor, reseller.ID, customerID, req)
	if err != nil {
		return cc.errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Commission request created successfully",
		Data: map[string]interface{}{
			"commission":   commission,
			"autoApproved": commission.AutoApproved,
		},
	})
}

// GetMyCommissions lists the calling reseller's commissions
func (cc *CommissionController) GetMyCommissions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	actor, err := actingUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	reseller, err := cc.Resellers.FindByUserID(ctx, actor.ID)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "No reseller profile found for this account",
		})
	}

	commissions, err := cc.Commissions.FindByReseller(ctx, reseller.ID, c.QueryParam("status"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve commissions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commissions retrieved successfully",
		Data:    commissions,
	})
}

// GetCommission returns a single commission. Resellers can only see their own.
func (cc *CommissionController) GetCommission(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	actor, err := actingUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid commission ID format",
		})
	}

	commission, err := cc.Commissions.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Commission not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve commission",
		})
	}

	if actor.Role != models.UserTypeAdmin {
		reseller, err := cc.Resellers.FindByUserID(ctx, actor.ID)
		if err != nil || reseller.ID != commission.ResellerID {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied",
			})
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission retrieved successfully",
		Data:    commission,
	})
}

// GetAllCommissions lists every commission for admin review
func (cc *CommissionController) GetAllCommissions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	commissions, err := cc.Commissions.FindAll(ctx, c.QueryParam("status"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve commissions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commissions retrieved successfully",
		Data:    commissions,
	})
}

// ApproveCommission handles the admin approval transition
func (cc *CommissionController) ApproveCommission(c echo.Context) error {
	return cc.transition(c, func(ctx context.Context, actor services.ActingUser, id primitive.ObjectID, req models.CommissionActionRequest) (*models.Commission, error) {
		return cc.Service.Approve(ctx, actor, id)
	}, "Commission approved successfully")
}

// RejectCommission handles the admin rejection transition
func (cc *CommissionController) RejectCommission(c echo.Context) error {
	return cc.transition(c, func(ctx context.Context, actor services.ActingUser, id primitive.ObjectID, req models.CommissionActionRequest) (*models.Commission, error) {
		return cc.Service.Reject(ctx, actor, id, req.RejectionReason)
	}, "Commission rejected successfully")
}

// MarkCommissionPaid handles the admin mark-paid transition
func (cc *CommissionController) MarkCommissionPaid(c echo.Context) error {
	return cc.transition(c, func(ctx context.Context, actor services.ActingUser, id primitive.ObjectID, req models.CommissionActionRequest) (*models.Commission, error) {
		return cc.Service.MarkPaid(ctx, actor, id, req.PaymentReference)
	}, "Commission marked as paid successfully")
}

// transition binds a commission action request and applies a lifecycle operation
func (cc *CommissionController) transition(c echo.Context, apply func(context.Context, services.ActingUser, primitive.ObjectID, models.CommissionActionRequest) (*models.Commission, error), successMessage string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	actor, err := actingUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid commission ID format",
		})
	}

	var req models.CommissionActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	commission, err := apply(ctx, actor, id, req)
	if err != nil {
		return cc.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: successMessage,
		Data:    commission,
	})
}

// errorResponse maps lifecycle errors onto HTTP statuses
func (cc *CommissionController) errorResponse(c echo.Context, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: validationErr.Message,
		})
	case errors.Is(err, services.ErrCommissionNotFound):
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Commission not found",
		})
	case errors.Is(err, services.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Commission is not in a state that allows this action",
		})
	case errors.Is(err, services.ErrAdminRequired):
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Only admins can perform this action",
		})
	default:
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process commission",
		})
	}
}
