package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resellerhub/resellerhub_backend/controllers"
	"github.com/resellerhub/resellerhub_backend/middleware"
)

// RegisterAdminRoutes sets up the admin-only protected routes
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Client,
	commissionController *controllers.CommissionController,
	resellerController *controllers.ResellerController,
	contractController *controllers.ContractController,
	ruleController *controllers.RuleController,
	adminController *controllers.AdminController) {

	r := e.Group("/api/admin")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.RequireAdmin())
	r.Use(middleware.ActivityTracker(db))

	// Commission review
	r.GET("/commissions", commissionController.GetAllCommissions)
	r.GET("/commissions/:id", commissionController.GetCommission)
	r.POST("/commissions/:id/approve", commissionController.ApproveCommission)
	r.POST("/commissions/:id/reject", commissionController.RejectCommission)
	r.POST("/commissions/:id/mark-paid", commissionController.MarkCommissionPaid)

	// Auto-approval rules
	r.GET("/rules", ruleController.GetRules)
	r.GET("/rules/:id", ruleController.GetRule)
	r.POST("/rules", ruleController.CreateRule)
	r.PUT("/rules/:id", ruleController.UpdateRule)
	r.PUT("/rules/:id/enabled", ruleController.SetRuleEnabled)
	r.DELETE("/rules/:id", ruleController.DeleteRule)

	// Reseller management
	r.POST("/resellers", resellerController.CreateReseller)
	r.GET("/resellers", resellerController.GetResellers)
	r.GET("/resellers/:id", resellerController.GetReseller)
	r.PUT("/resellers/:id/trusted", resellerController.SetResellerTrusted)

	// Contracts
	r.GET("/contracts", contractController.GetAllContracts)

	// Reporting
	r.GET("/audit-logs", adminController.GetAuditLogs)
	r.GET("/payout-documents", adminController.GetPayoutDocuments)
	r.GET("/dashboard", adminController.GetDashboardStats)
}
