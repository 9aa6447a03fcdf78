package middleware

import (
	"account_service/internal/domain" // Importing domain models
	"net/http"                        // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// AdminOnlyMiddleware checks the user's role from the database on each request
func AdminOnlyMiddleware(db *gorm.DB, isAdmin func(roleID int) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey) // Get userID from context
		// Check if userID exists in context
		if userID == "" {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Unauthorized"})
			return
		}
		if !hasAdminRole(c, db, userID, isAdmin) {
			// If not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": false, "message": "Admin access required"})
			return
		}
		c.Set(IsAdminKey, true) // Caller is an admin
		// If admin, proceed to the next handler
		c.Next()
	}
}

// SelfOrAdminMiddleware lets a user reach their own account, named by the route parameter param,
// and lets admins reach any account
func SelfOrAdminMiddleware(db *gorm.DB, isAdmin func(roleID int) bool, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey) // Get userID from context
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Unauthorized"})
			return
		}
		owner := c.Param(param) == userID             // Caller targets their own account
		admin := hasAdminRole(c, db, userID, isAdmin) // Stored role, not the token claim
		// Owners and admins pass
		if !owner && !admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": false, "message": "Access to this account is not allowed"})
			return
		}
		c.Set(IsAdminKey, admin) // Handlers gate admin-only fields on this
		c.Next()
	}
}

// hasAdminRole reads the current role assignment rather than trusting the token's role claim
func hasAdminRole(c *gin.Context, db *gorm.DB, userID string, isAdmin func(roleID int) bool) bool {
	var role domain.UserRole // Fetch role assignment from database
	if err := db.WithContext(c.Request.Context()).First(&role, "user_id = ?", userID).Error; err != nil {
		return false // Missing role or lookup error
	}
	return isAdmin(role.RoleID)
}
