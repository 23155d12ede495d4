package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resellerhub/resellerhub_backend/controllers"
	"github.com/resellerhub/resellerhub_backend/middleware"
	"github.com/resellerhub/resellerhub_backend/models"
)

// RegisterResellerRoutes sets up the reseller-facing protected routes
func RegisterResellerRoutes(e *echo.Echo, db *mongo.Client,
	commissionController *controllers.CommissionController,
	resellerController *controllers.ResellerController,
	customerController *controllers.CustomerController,
	contractController *controllers.ContractController) {

	r := e.Group("/api/reseller")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.RequireUserType(models.UserTypeReseller))
	r.Use(middleware.ActivityTracker(db))

	// Profile
	r.GET("/profile", resellerController.GetMyProfile)
	r.POST("/profile/logo", resellerController.UploadLogo)

	// Commissions
	r.POST("/commissions", commissionController.CreateCommission)
	r.GET("/commissions", commissionController.GetMyCommissions)
	r.GET("/commissions/:id", commissionController.GetCommission)

	// Customers
	r.POST("/customers", customerController.CreateCustomer)
	r.GET("/customers", customerController.GetMyCustomers)
	r.PUT("/customers/:id", customerController.UpdateCustomer)
	r.DELETE("/customers/:id", customerController.DeleteCustomer)

	// Contracts
	r.POST("/contracts", contractController.CreateContract)
	r.GET("/contracts", contractController.GetMyContracts)
	r.PUT("/contracts/:id/status", contractController.UpdateContractStatus)
}
