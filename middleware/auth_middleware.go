// middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/resellerhub/resellerhub_backend/models"
)

// RequireUserType checks if the authenticated user has one of the allowed user types
func RequireUserType(allowedTypes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userType := ExtractUserType(c)

			// If no user type found, deny access
			if userType == "" {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: user type not found",
				})
			}

			// Check if user type is allowed
			for _, allowedType := range allowedTypes {
				if userType == allowedType {
					return next(c)
				}
			}

			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied for your user type",
			})
		}
	}
}

// RequireAdmin restricts a route to admin users
func RequireAdmin() echo.MiddlewareFunc {
	return RequireUserType(models.UserTypeAdmin)
}
