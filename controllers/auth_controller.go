package controllers

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/middleware"
	"github.com/resellerhub/resellerhub_backend/models"
	"github.com/resellerhub/resellerhub_backend/utils"
)

// AuthController handles login, logout and session validation
type AuthController struct {
	DB              *mongo.Client
	loginAttempts   map[string]loginAttempt
	loginAttemptsMu sync.RWMutex
}

type loginAttempt struct {
	count       int
	lastAttempt time.Time
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Client) *AuthController {
	return &AuthController{
		DB:            db,
		loginAttempts: make(map[string]loginAttempt),
	}
}

// Login authenticates a user and returns a JWT token pair
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(ac.DB, "users")

	var loginReq models.LoginRequest
	if err := c.Bind(&loginReq); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	email, err := utils.SanitizeEmail(loginReq.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}

	// Throttle repeated failures per account
	ac.loginAttemptsMu.RLock()
	attempts, exists := ac.loginAttempts[email]
	ac.loginAttemptsMu.RUnlock()

	if exists && attempts.count >= 5 && time.Since(attempts.lastAttempt) < 30*time.Minute {
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Too many failed login attempts. Please try again later.",
		})
	}

	var user models.User
	err = collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid credentials",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to find user",
		})
	}

	if err := utils.CheckPassword(loginReq.Password, user.Password); err != nil {
		ac.loginAttemptsMu.Lock()
		ac.loginAttempts[email] = loginAttempt{count: attempts.count + 1, lastAttempt: time.Now()}
		ac.loginAttemptsMu.Unlock()

		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	ac.loginAttemptsMu.Lock()
	delete(ac.loginAttempts, email)
	ac.loginAttemptsMu.Unlock()

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	// Update user's active status
	update := bson.M{"$set": bson.M{"isActive": true, "lastActivityAt": time.Now(), "updatedAt": time.Now()}}
	if _, err := collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update); err != nil {
		log.Printf("Failed to update user active status: %v", err)
	}

	user.Password = ""

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token":        token,
			"refreshToken": refreshToken,
			"user":         user,
		},
	})
}

// Logout invalidates the caller's token
func (ac *AuthController) Logout(c echo.Context) error {
	user, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	claims := user.Claims.(*middleware.JwtCustomClaims)
	expiry := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt > 0 {
		expiry = time.Unix(claims.ExpiresAt, 0)
	}
	middleware.BlacklistToken(user.Raw, expiry)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}

// ValidateToken lets the frontend check session validity
func (ac *AuthController) ValidateToken(c echo.Context) error {
	result, err := utils.ValidateTokenFromHeader(c.Request().Header.Get("Authorization"), ac.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to validate token",
		})
	}

	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnauthorized
	}

	return c.JSON(status, models.Response{
		Status:  status,
		Message: result.Message,
		Data:    result,
	})
}
