package config

import (
	"net"     // For host:port joining
	"slices"  // For role set lookups
	"strconv" // For role id formatting
	"time"    // For durations

	"github.com/caarlos0/env/v11"    // For parsing environment variables into the struct
	"github.com/go-sql-driver/mysql" // For building the MySQL DSN
	"github.com/joho/godotenv"       // For loading .env files
	"github.com/pkg/errors"          // Error wrapping
)

// Config holds the application configuration
type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"` // Application port
	IsProd  bool   `env:"IS_PROD"`                    // Is production environment

	DBUser            string        `env:"DB_USER"`                              // Database user
	DBPassword        string        `env:"DB_PASSWORD"`                          // Database password
	DBHost            string        `env:"DB_HOST" envDefault:"127.0.0.1"`       // Database host
	DBPort            string        `env:"DB_PORT" envDefault:"3306"`            // Database port
	DBName            string        `env:"DB_NAME" envDefault:"accounts"`        // Database name
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`    // Pool size
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`    // Idle connections kept in the pool
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"3m"` // Connection recycle interval
	DBTimeout         time.Duration `env:"DB_TIMEOUT" envDefault:"5s"`           // Dial, read and write timeout
	QueryTimeout      time.Duration `env:"QUERY_TIMEOUT" envDefault:"5s"`        // Deadline for one service operation

	JWTSecret string        `env:"JWT_SECRET"`               // JWT secret key
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"` // Token lifetime

	RedisAddr string        `env:"REDIS_ADDR"`                 // Redis server address, empty disables caching
	RedisPass string        `env:"REDIS_PASS"`                 // Redis password
	RedisDB   int           `env:"REDIS_DB"`                   // Redis database number
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"60s"` // Lifetime of cached account reads

	AcceptedRoles        []string `env:"ACCEPTED_ROLES" envDefault:"1,2,3,4,5,6" envSeparator:","` // Roles allowed at creation
	PhoneRoles           []string `env:"PHONE_ROLES" envDefault:"3,6" envSeparator:","`            // Roles that register by phone
	AdminRoles           []string `env:"ADMIN_ROLES" envDefault:"1" envSeparator:","`              // Roles allowed to manage other accounts
	ValidateRoleOnUpdate bool     `env:"VALIDATE_ROLE_ON_UPDATE"`                                  // Apply AcceptedRoles to updates too
}

// LoadConfig loads configuration from the environment, reading a .env file first if present
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	return cfg, nil
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.DBHost, c.DBPort)
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.ClientFoundRows = true // Report matched rows so no-change updates still count as one
	mc.Timeout = c.DBTimeout
	mc.ReadTimeout = c.DBTimeout
	mc.WriteTimeout = c.DBTimeout
	return mc.FormatDSN()
}

// IsAcceptedRole reports whether a role may be assigned to a new account
func (c *Config) IsAcceptedRole(roleID string) bool {
	return slices.Contains(c.AcceptedRoles, roleID)
}

// IsPhoneRole reports whether accounts with this role register by phone instead of email
func (c *Config) IsPhoneRole(roleID string) bool {
	return slices.Contains(c.PhoneRoles, roleID)
}

// IsAdminRole reports whether a numeric role id is an administrator role
func (c *Config) IsAdminRole(roleID int) bool {
	return slices.Contains(c.AdminRoles, strconv.Itoa(roleID))
}
