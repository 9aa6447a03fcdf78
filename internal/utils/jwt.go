package utils

import (
	"time" // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/pkg/errors"        // Error values
)

// ErrMissingSecret is returned when a token is requested without a signing secret
var ErrMissingSecret = errors.New("jwt secret is not configured")

// JWT Claims
type Claims struct {
	UserID string `json:"user_id"` // Custom claim for user ID
	RoleID int    `json:"role_id"` // Custom claim for role ID
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 tokens keyed by user and role
type TokenIssuer struct {
	secret []byte        // Signing key
	ttl    time.Duration // Token lifetime
}

// NewTokenIssuer creates a TokenIssuer, a zero ttl defaults to 24 hours
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a JWT token for a given user and role
func (i *TokenIssuer) Issue(userID string, roleID int) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrMissingSecret
	}
	now := time.Now()
	// Set token claims
	claims := Claims{
		UserID: userID, // Custom claim for user ID
		RoleID: roleID, // Custom claim for role ID
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)), // Token expiry
			IssuedAt:  jwt.NewNumericDate(now),            // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString(i.secret)                        // Sign the token with the secret
}

// ParseJWT parses and validates a JWT token string
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, jwt.ErrSignatureInvalid
}
