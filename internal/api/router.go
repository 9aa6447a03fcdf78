package api

import (
	"account_service/internal/config"     // Custom package for configuration
	"account_service/internal/middleware" // Custom package for middleware
	"account_service/internal/service"    // Account and login services

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps are the collaborators the HTTP layer is built from
type Deps struct {
	Config   *config.Config          // Application configuration
	DB       *gorm.DB                // Database, used by the role-checking middleware
	Redis    *redis.Client           // Optional cache, nil disables caching
	Accounts *service.AccountService // Account write path
	Login    *service.LoginService   // Credential verification
}

// NewRouter registers every route on a fresh Gin engine
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()                                           // Gin router instance
	r.Use(gin.Logger(), gin.Recovery())                      // Access log and panic recovery
	auth := middleware.JWTAuthMiddleware(d.Config.JWTSecret) // Token verification

	// Account routes
	apiGroup := r.Group("/api")
	apiGroup.POST("/create", CreateAccountHandler(d.Accounts, d.Config, d.Redis)) // Registration endpoint
	apiGroup.POST("/login", LoginHandler(d.Login))                                // Login endpoint

	// Account management routes (owner or admin)
	accountGroup := apiGroup.Group("/account/:id")
	accountGroup.Use(auth, middleware.SelfOrAdminMiddleware(d.DB, d.Config.IsAdminRole, "id"))
	accountGroup.GET("", GetAccountHandler(d.Accounts, d.Redis, d.Config.CacheTTL)) // Account view endpoint
	accountGroup.PATCH("", UpdateAccountHandler(d.Accounts, d.Redis))               // Update endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(auth, middleware.AdminOnlyMiddleware(d.DB, d.Config.IsAdminRole))
	adminGroup.GET("/accounts", ListAccountsHandler(d.Accounts, d.Redis, d.Config.CacheTTL)) // List accounts endpoint

	r.GET("/hello", auth, HelloHandler) // Token protected probe
	return r
}
