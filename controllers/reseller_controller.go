package controllers

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/models"
	"github.com/resellerhub/resellerhub_backend/repositories"
	"github.com/resellerhub/resellerhub_backend/utils"
)

// ResellerController handles reseller accounts: admin onboarding and trust
// management, plus the reseller's own profile and logo upload.
type ResellerController struct {
	DB        *mongo.Client
	Resellers *repositories.ResellerRepository
}

// NewResellerController creates a new reseller controller
func NewResellerController(db *mongo.Client, resellers *repositories.ResellerRepository) *ResellerController {
	return &ResellerController{DB: db, Resellers: resellers}
}

// CreateResellerRequest is the admin payload for onboarding a reseller
type CreateResellerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"fullName" validate:"required"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Region      string `json:"region,omitempty"`
	IsTrusted   bool   `json:"isTrusted,omitempty"`
}

// CreateReseller onboards a new reseller: creates the login user and the
// reseller profile with a generated reference code.
func (rc *ResellerController) CreateReseller(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req CreateResellerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	req.FullName = strings.TrimSpace(req.FullName)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}

	usersColl := config.GetCollection(rc.DB, "users")
	count, err := usersColl.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check existing users",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "A user with this email already exists",
		})
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	now := time.Now()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Password:  hashed,
		FullName:  utils.SanitizeInput(req.FullName),
		UserType:  models.UserTypeReseller,
		Phone:     req.PhoneNumber,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	referenceCode, err := utils.GenerateResellerReferenceCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate reference code",
		})
	}

	reseller := models.Reseller{
		UserID:        user.ID,
		FullName:      user.FullName,
		Email:         email,
		PhoneNumber:   req.PhoneNumber,
		CompanyName:   utils.SanitizeInput(req.CompanyName),
		Region:        utils.SanitizeInput(req.Region),
		ReferenceCode: referenceCode,
		IsTrusted:     req.IsTrusted,
	}

	if err := rc.Resellers.Insert(ctx, &reseller); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create reseller profile",
		})
	}

	user.ResellerID = &reseller.ID
	if _, err := usersColl.InsertOne(ctx, user); err != nil {
		// roll back the orphaned profile so the email can be retried
		if _, delErr := config.GetCollection(rc.DB, "resellers").DeleteOne(ctx, bson.M{"_id": reseller.ID}); delErr != nil {
			log.Printf("Failed to clean up reseller profile %s: %v", reseller.ID.Hex(), delErr)
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create user account",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Reseller created successfully",
		Data: map[string]interface{}{
			"user":     user,
			"reseller": reseller,
		},
	})
}

// GetResellers lists all resellers for the admin
func (rc *ResellerController) GetResellers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resellers, err := rc.Resellers.FindAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve resellers",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Resellers retrieved successfully",
		Data:    resellers,
	})
}

// GetReseller returns one reseller profile for the admin
func (rc *ResellerController) GetReseller(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid reseller ID format",
		})
	}

	reseller, err := rc.Resellers.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Reseller not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve reseller",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Reseller retrieved successfully",
		Data:    reseller,
	})
}

// SetResellerTrusted marks a reseller as trusted or untrusted. Trust gates
// rules that only auto-approve trusted resellers.
func (rc *ResellerController) SetResellerTrusted(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid reseller ID format",
		})
	}

	var req struct {
		IsTrusted *bool `json:"isTrusted"`
	}
	if err := c.Bind(&req); err != nil || req.IsTrusted == nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Request body must include an isTrusted flag",
		})
	}

	if err := rc.Resellers.SetTrusted(ctx, id, *req.IsTrusted); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Reseller not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update reseller",
		})
	}

	message := "Reseller marked as untrusted"
	if *req.IsTrusted {
		message = "Reseller marked as trusted"
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
	})
}

// GetMyProfile returns the calling reseller's own profile
func (rc *ResellerController) GetMyProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	reseller, err := rc.Resellers.FindByUserID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "No reseller profile found for this account",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve profile",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    reseller,
	})
}

// UploadLogo stores a company logo for the calling reseller, resized to a
// bounded width before saving.
func (rc *ResellerController) UploadLogo(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	reseller, err := rc.Resellers.FindByUserID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No reseller profile found for this account",
		})
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Logo file is required",
		})
	}
	if !utils.IsValidImageFile(file) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Logo must be a JPEG, PNG or GIF image",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}

	resized, err := utils.ResizeImage(data, 512)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Uploaded file is not a valid image",
		})
	}

	logoPath, err := utils.UploadFileToPath(resized, "logo-"+reseller.ID.Hex()+".jpg", "image", "logos")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save logo",
		})
	}

	if err := rc.Resellers.UpdateLogo(ctx, reseller.ID, logoPath); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update profile",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logo uploaded successfully",
		Data: map[string]string{
			"logoPath": logoPath,
		},
	})
}
