package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"account_service/internal/service" // Account and login services
	"account_service/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// invalidateAccountLists drops every cached admin page after a write
func invalidateAccountLists(rdb *redis.Client) {
	if err := utils.DeleteCacheMatching(context.Background(), rdb, utils.AccountListCachePattern); err != nil {
		logrus.WithFields(logrus.Fields{
			"pattern": utils.AccountListCachePattern, // Admin page keys
			"error":   err.Error(),                   // Error message
		}).Warn("Failed to invalidate account list cache")
	}
}

// ListAccountsHandler returns a page of accounts with their roles
func ListAccountsHandler(svc *service.AccountService, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := 1      // Default page number
		pageSize := 20 // Default page size
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			// If valid, set page size
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on the normalized pagination parameters
		cacheKey := utils.AccountListCacheKey(page, pageSize)
		var cached service.AccountPage
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"status": true, "page": cached, "cached": true})
			return
		}
		// Fetch the page from the database
		result, err := svc.List(c.Request.Context(), page, pageSize)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"page":      page,        // Requested page
				"page_size": pageSize,    // Requested page size
				"error":     err.Error(), // Error message
			}).Error("Failed to list accounts")
			respondError(c, http.StatusInternalServerError, "Failed to fetch accounts")
			return
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, result, ttl)
		c.JSON(http.StatusOK, gin.H{"status": true, "page": result, "cached": false})
	}
}
