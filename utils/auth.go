// utils/auth.go
package utils

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/middleware"
	"github.com/resellerhub/resellerhub_backend/models"
)

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compares a plaintext password with a bcrypt hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidateTokenResponse is returned to the frontend when it checks whether a
// session is still usable
type ValidateTokenResponse struct {
	Valid     bool         `json:"valid"`
	User      *models.User `json:"user,omitempty"`
	Message   string       `json:"message,omitempty"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

func invalidToken(message string) *ValidateTokenResponse {
	return &ValidateTokenResponse{Valid: false, Message: message}
}

// ValidateToken checks a JWT and confirms the user behind it still exists and
// is active. Validation failures are reported in the response, not as errors.
func ValidateToken(tokenString string, db *mongo.Client) (*ValidateTokenResponse, error) {
	if tokenString == "" {
		return invalidToken("No token provided"), nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &middleware.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(middleware.GetJWTSecret()), nil
	})
	if err != nil {
		return invalidToken("Invalid token: " + err.Error()), nil
	}
	if !token.Valid {
		return invalidToken("Token is not valid"), nil
	}

	claims, ok := token.Claims.(*middleware.JwtCustomClaims)
	if !ok {
		return invalidToken("Invalid token claims"), nil
	}
	if claims.ExpiresAt > 0 && time.Now().Unix() > claims.ExpiresAt {
		return invalidToken("Token has expired"), nil
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return invalidToken("Invalid user ID format"), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = config.GetCollection(db, "users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return invalidToken("User not found"), nil
		}
		return invalidToken("Error retrieving user: " + err.Error()), nil
	}
	if !user.IsActive {
		return invalidToken("User account is inactive"), nil
	}

	user.Password = ""

	var expiresAt *time.Time
	if claims.ExpiresAt > 0 {
		expTime := time.Unix(claims.ExpiresAt, 0)
		expiresAt = &expTime
	}

	return &ValidateTokenResponse{
		Valid:     true,
		User:      &user,
		Message:   "Token is valid",
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateTokenFromHeader validates the token carried in a Bearer
// Authorization header
func ValidateTokenFromHeader(authHeader string, db *mongo.Client) (*ValidateTokenResponse, error) {
	if authHeader == "" {
		return invalidToken("No authorization header provided"), nil
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return invalidToken("Invalid authorization header format"), nil
	}
	return ValidateToken(strings.TrimPrefix(authHeader, "Bearer "), db)
}

// GetUserIDFromToken extracts the user ID from the JWT token
func GetUserIDFromToken(c echo.Context) (primitive.ObjectID, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return primitive.ObjectID{}, echo.ErrUnauthorized
	}
	if claims, ok := token.Claims.(*middleware.JwtCustomClaims); ok {
		return primitive.ObjectIDFromHex(claims.UserID)
	}
	return primitive.ObjectID{}, echo.ErrUnauthorized
}
