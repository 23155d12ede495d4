package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/controllers"
	"github.com/resellerhub/resellerhub_backend/middleware"
	"github.com/resellerhub/resellerhub_backend/repositories"
	"github.com/resellerhub/resellerhub_backend/routes"
	"github.com/resellerhub/resellerhub_backend/services"
	"github.com/resellerhub/resellerhub_backend/utils"
	"github.com/resellerhub/resellerhub_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "ResellerHub Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize repositories
	commissionRepo := repositories.NewCommissionRepository(client)
	resellerRepo := repositories.NewResellerRepository(client)
	ruleRepo := repositories.NewRuleRepository(client, redisClient)

	// Initialize services
	ruleEvaluator := services.NewRuleEvaluator(ruleRepo)
	notificationService := services.NewNotificationService(client, wsHub)
	auditService := services.NewAuditService(client)
	documentService := services.NewDocumentService(client)
	commissionService := services.NewCommissionService(
		commissionRepo, resellerRepo, ruleEvaluator,
		notificationService, auditService, documentService)

	// Initialize controllers
	commissionController := controllers.NewCommissionController(commissionService, commissionRepo, resellerRepo)
	resellerController := controllers.NewResellerController(client, resellerRepo)
	customerController := controllers.NewCustomerController(client, resellerRepo)
	contractController := controllers.NewContractController(client, resellerRepo)
	ruleController := controllers.NewRuleController(ruleRepo)
	adminController := controllers.NewAdminController(client)

	// Register routes
	routes.RegisterAuthRoutes(e, client)
	routes.RegisterResellerRoutes(e, client, commissionController, resellerController, customerController, contractController)
	routes.RegisterAdminRoutes(e, client, commissionController, resellerController, contractController, ruleController, adminController)
	routes.RegisterNotificationRoutes(e, client, wsHub)

	// Periodically drop expired tokens from the logout blacklist
	go middleware.CleanupBlacklist()

	// Ensure uploads directories exist
	if err := utils.InitializeStorage(); err != nil {
		log.Printf("Warning: failed to initialize upload directories: %v", err)
	}

	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
