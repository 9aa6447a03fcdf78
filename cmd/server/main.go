package main

import (
	"account_service/internal/api"     // Custom package for API handlers
	"account_service/internal/config"  // Custom package for configuration
	"account_service/internal/db"      // Custom package for database access
	"account_service/internal/service" // Custom package for account services
	"account_service/internal/utils"   // Custom package for tokens
	"context"                          // context package is needed for Redis operations and shutdown
	"errors"                           // errors package is needed to detect server close
	"net/http"                         // HTTP server
	"os"                               // Signals
	"os/signal"                        // Signal notification
	"strconv"                          // Role id formatting
	"syscall"                          // SIGTERM
	"time"                             // Shutdown timeout

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"golang.org/x/sync/errgroup"   // Server and shutdown goroutines
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}
	if cfg.JWTSecret == "" {
		logrus.Warn("JWT_SECRET is empty, logins will fail to issue tokens")
	}

	// Connect to the database
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("%v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client, caching is disabled when no address is configured
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	}

	// Service options
	opts := service.Options{QueryTimeout: cfg.QueryTimeout}
	if cfg.ValidateRoleOnUpdate {
		opts.RoleOnUpdate = func(roleID int) bool { return cfg.IsAcceptedRole(strconv.Itoa(roleID)) }
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := api.NewRouter(api.Deps{
		Config:   cfg,
		DB:       gdb,
		Redis:    redisClient,
		Accounts: service.NewAccountService(gdb, opts),
		Login:    service.NewLoginService(gdb, utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL), opts),
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logrus.Errorf("server stopped: %v", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
