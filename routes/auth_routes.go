package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resellerhub/resellerhub_backend/controllers"
	"github.com/resellerhub/resellerhub_backend/middleware"
)

// RegisterAuthRoutes sets up login, logout and token validation
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client) {
	authController := controllers.NewAuthController(db)

	auth := e.Group("/api/auth")
	auth.POST("/login", authController.Login)
	auth.GET("/validate-token", authController.ValidateToken)

	protected := e.Group("/api/auth")
	protected.Use(middleware.JWTMiddleware())
	protected.POST("/logout", authController.Logout)
}
