package middlewares

import (
	"ClinicQueue/utils"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

const (
	staffIDKey   contextKey = "staffID"
	staffRoleKey contextKey = "staffRole"
)

// TokenAuthMiddleware validates the access token and adds the staff details
// to the request context. The token comes from the accessToken cookie or the
// Authorization header.
func TokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("accessToken")
		if err != nil || token == "" {
			header := c.GetHeader("Authorization")
			token = strings.TrimPrefix(header, "Bearer ")
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(token, "Admin", "Doctor", "Receptionist")
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), staffIDKey, claims.StaffID)
		ctx = context.WithValue(ctx, staffRoleKey, claims.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RoleAuthMiddleware restricts access to staff with the specified role.
func RoleAuthMiddleware(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := ExtractStaffRoleFromContext(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Staff role not found in context"})
			c.Abort()
			return
		}

		if role != requiredRole {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient privileges"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ExtractStaffIDFromContext retrieves the staff ID from the context.
func ExtractStaffIDFromContext(ctx context.Context) (string, error) {
	staffID, ok := ctx.Value(staffIDKey).(string)
	if !ok {
		return "", errors.New("staff ID not found in context")
	}
	return staffID, nil
}

// ExtractStaffRoleFromContext retrieves the staff role from the context.
func ExtractStaffRoleFromContext(ctx context.Context) (string, error) {
	staffRole, ok := ctx.Value(staffRoleKey).(string)
	if !ok {
		return "", errors.New("staff role not found in context")
	}
	return staffRole, nil
}
