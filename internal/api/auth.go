package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"account_service/internal/service" // Account and login services

	"github.com/gin-gonic/gin" // Gin web framework
)

// LoginRequest represents a login by email or by phone
type LoginRequest struct {
	Email    string `json:"email"`    // Email identifier, takes precedence over phone
	Phone    string `json:"phone"`    // Phone identifier
	Password string `json:"password"` // Cleartext password
}

// LoginHandler authenticates a user and returns a JWT token with the user's modules
func LoginHandler(svc *service.LoginService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			respondError(c, http.StatusBadRequest, bindingMessage(err))
			return
		}
		email := strings.TrimSpace(req.Email) // Email identifier
		phone := strings.TrimSpace(req.Phone) // Phone identifier
		// Require one identifier
		if email == "" && phone == "" {
			respondError(c, http.StatusUnauthorized, "Please provide email or phone")
			return
		}
		var (
			res *service.LoginResult // Login result
			err error                // Login error
		)
		if email != "" {
			res, err = svc.LoginByEmail(c.Request.Context(), email, req.Password)
		} else {
			res, err = svc.LoginByPhone(c.Request.Context(), phone, req.Password)
		}
		if err != nil {
			switch service.ErrorKind(err) {
			case service.KindAuth:
				respondError(c, http.StatusUnauthorized, "Invalid credentials")
			case service.KindToken:
				respondError(c, http.StatusInternalServerError, "Failed to generate token")
			case service.KindValidation:
				respondError(c, http.StatusBadRequest, err.Error())
			default:
				respondError(c, http.StatusInternalServerError, "Login failed")
			}
			return
		}
		// Return the token, the user projection and the permitted modules
		c.JSON(http.StatusOK, gin.H{
			"status":  true,        // Success flag
			"message": res.Message, // Success message
			"user":    res.User,    // User projection without password
			"modules": res.Modules, // Permitted module names
			"token":   res.Token,   // Signed session token
		})
	}
}

// HelloHandler is a token protected probe
func HelloHandler(c *gin.Context) {
	c.String(http.StatusOK, "Hello, World!")
}
