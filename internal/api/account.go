package api

import (
	"context"       // Context for Redis operations
	"encoding/json" // Numeric fields that may arrive quoted
	"net/http"      // HTTP status codes
	"strconv"       // String conversion
	"strings"       // String manipulation
	"time"          // Time durations

	"account_service/internal/config"     // Custom package for configuration
	"account_service/internal/middleware" // Context keys set by the auth middleware
	"account_service/internal/service"    // Account and login services
	"account_service/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Account id generation
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// CreateAccountRequest represents an account creation request
type CreateAccountRequest struct {
	Email     string          `json:"email" binding:"omitempty,email"`  // Required unless the role registers by phone
	Phone     string          `json:"phone" binding:"omitempty,max=32"` // Required when the role registers by phone
	Password  string          `json:"password"`                         // Cleartext password, hashed by the service
	RoleID    json.RawMessage `json:"role_id"`                          // One of the accepted roles, any JSON scalar
	SubRoleID json.Number     `json:"sub_role_id"`                      // Sub-role keying module access
}

// UpdateAccountRequest represents a partial account update, absent fields are left unchanged
type UpdateAccountRequest struct {
	Email     string       `json:"email" binding:"omitempty,email"`  // New email
	Password  string       `json:"password"`                         // New password
	Phone     string       `json:"phone" binding:"omitempty,max=32"` // New phone
	RoleID    *json.Number `json:"role_id"`                          // New role
	SubRoleID *json.Number `json:"sub_role_id"`                      // New sub-role
}

// roleText returns role_id as the client sent it, string or number, and "" for anything else
func roleText(raw json.RawMessage) string {
	var s string // Quoted role
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number // Bare numeric role
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return "" // Absent, object, array or bool
}

// parseOptionalInt converts a numeric field, 0 when absent
func parseOptionalInt(n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	return strconv.Atoi(n.String())
}

// parseIntPtr converts an optional numeric field, nil when absent
func parseIntPtr(n *json.Number) (*int, error) {
	if n == nil {
		return nil, nil
	}
	v, err := strconv.Atoi(n.String())
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateAccountHandler registers a new account, by phone or by email depending on the role
func CreateAccountHandler(svc *service.AccountService, cfg *config.Config, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateAccountRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			respondError(c, http.StatusBadRequest, bindingMessage(err))
			return
		}
		role := roleText(req.RoleID) // Role as sent by the client
		// Check the role against the accepted set
		roleID, err := strconv.Atoi(role)
		if err != nil || !cfg.IsAcceptedRole(role) {
			respondError(c, http.StatusUnauthorized, "Invalid user role")
			return
		}
		subRoleID, err := parseOptionalInt(req.SubRoleID) // Missing sub-role is left to the service
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid sub role")
			return
		}
		// Phone roles register by phone, every other role by email
		kind := service.IdentifierEmail
		if cfg.IsPhoneRole(role) {
			kind = service.IdentifierPhone
		}
		if kind == service.IdentifierPhone && strings.TrimSpace(req.Phone) == "" {
			respondError(c, http.StatusBadRequest, "Phone is required")
			return
		}
		if kind == service.IdentifierEmail && strings.TrimSpace(req.Email) == "" {
			respondError(c, http.StatusBadRequest, "Email is required")
			return
		}
		// Create the account under a server generated id
		res, err := svc.Create(c.Request.Context(), kind, service.CreateAccountInput{
			ID:        uuid.NewString(),
			Email:     req.Email,
			Phone:     req.Phone,
			Password:  req.Password,
			RoleID:    roleID,
			SubRoleID: subRoleID,
		})
		if err != nil {
			respondError(c, writeStatus(err), writeMessage(err, "Failed to create account"))
			return
		}
		invalidateAccountLists(rdb) // New account changes every admin page
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"status": true, "message": "Account created successfully", "user": res.Account})
	}
}

// UpdateAccountHandler applies a partial update to the account named in the path
func UpdateAccountHandler(svc *service.AccountService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateAccountRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, bindingMessage(err))
			return
		}
		// Only admins may change role assignments, owners included
		if (req.RoleID != nil || req.SubRoleID != nil) && !c.GetBool(middleware.IsAdminKey) {
			respondError(c, http.StatusForbidden, "Only admins can change roles")
			return
		}
		roleID, err := parseIntPtr(req.RoleID) // Optional new role
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid user role")
			return
		}
		subRoleID, err := parseIntPtr(req.SubRoleID) // Optional new sub-role
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid sub role")
			return
		}
		in := service.UpdateAccountInput{
			ID:        c.Param("id"), // Account being updated
			Email:     req.Email,     // New email
			Password:  req.Password,  // New password
			Phone:     req.Phone,     // New phone
			RoleID:    roleID,        // New role
			SubRoleID: subRoleID,     // New sub-role
		}
		msg, err := svc.Update(c.Request.Context(), in)
		if err != nil {
			respondError(c, writeStatus(err), writeMessage(err, "Failed to update account"))
			return
		}
		// Invalidate the cached account view
		if err := utils.DeleteCache(context.Background(), rdb, utils.AccountCacheKey(in.ID)); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": in.ID,       // Account id
				"error":   err.Error(), // Error message
			}).Warn("Failed to invalidate account cache")
		}
		invalidateAccountLists(rdb) // Admin pages embed the account too
		c.JSON(http.StatusOK, gin.H{"status": true, "message": msg})
	}
}

// GetAccountHandler returns the account view named in the path
func GetAccountHandler(svc *service.AccountService, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")                                     // Account id
		ctx := context.Background()                             // Context for Redis operations
		cacheKey := utils.AccountCacheKey(id)                   // Cache key for the account
		var view service.AccountView                            // View struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &view) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"status": true, "user": view, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		account, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, writeStatus(err), writeMessage(err, "Failed to fetch account"))
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, account, ttl)                           // Cache the account view
		c.JSON(http.StatusOK, gin.H{"status": true, "user": account, "cached": false}) // Return account view
	}
}
