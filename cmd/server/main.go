package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/hotel-menu-backend/internal/cache"
	"github.com/menuqr/hotel-menu-backend/internal/config"
	"github.com/menuqr/hotel-menu-backend/internal/database"
	"github.com/menuqr/hotel-menu-backend/internal/handlers"
	"github.com/menuqr/hotel-menu-backend/internal/middleware"
	"github.com/menuqr/hotel-menu-backend/internal/migrations"
	"github.com/menuqr/hotel-menu-backend/internal/models"
	"github.com/menuqr/hotel-menu-backend/internal/services"
	"github.com/menuqr/hotel-menu-backend/pkg/jwt"
	"github.com/menuqr/hotel-menu-backend/pkg/razorpay"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting MenuQR Hotel Menu Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Run schema migrations
	if cfg.Database.RunMigrations {
		logger.Info("Running database migrations...")
		if err := migrations.Run(db.DB); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("Database migrations applied")
	}

	// Initialize Redis-backed reset token store
	logger.Info("Connecting to Redis...")
	resetTokens, err := cache.NewResetTokenStore(context.Background(), cfg.Redis)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer resetTokens.Close()
	logger.Info("Redis connection established")

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	hotelRepository := database.NewHotelRepository(db)
	menuItemRepository := database.NewMenuItemRepository(db)
	requestRepository := database.NewMenuUpdateRequestRepository(db)
	subscriptionRepository := database.NewSubscriptionRepository(db)
	auditRepository := database.NewPaymentAuditRepository(db, logger)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	razorpayGateway := razorpay.NewClient(razorpay.Config{
		BaseURL:   cfg.Razorpay.BaseURL,
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		Timeout:   cfg.Razorpay.Timeout,
	})
	logger.Infof("Payment gateway initialized: %s", razorpayGateway.GetName())

	auditService := services.NewAuditService(auditRepository, logger, cfg.Security.EnableAuditLog)
	approvalService := services.NewApprovalService(requestRepository, menuItemRepository, hotelRepository, logger)
	subscriptionService := services.NewSubscriptionService(
		subscriptionRepository,
		hotelRepository,
		razorpayGateway,
		auditService,
		cfg.Subscription,
		cfg.Razorpay.Currency,
		logger,
	)
	expiryService := services.NewExpiryService(
		hotelRepository,
		subscriptionRepository,
		auditService,
		logger,
		cfg.Subscription.SweepInterval,
	)

	// Start the daily expiry sweep
	expiryService.Start()
	logger.Info("Subscription expiry sweep started")

	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepository, resetTokens, jwtService, cfg.Security.BcryptCost, logger)
	menuHandler := handlers.NewMenuHandler(approvalService, logger)
	menuRequestHandler := handlers.NewMenuRequestHandler(approvalService, logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, logger)
	adminHandler := handlers.NewAdminHandler(hotelRepository, expiryService, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
		}

		// Public QR menu (no auth: this is what the printed QR codes hit)
		v1.GET("/menu/:hotelId", menuHandler.PublicMenu)

		// Menu update request workflow
		menuRequests := v1.Group("/menu-update-requests")
		menuRequests.Use(middleware.AuthMiddleware(jwtService))
		{
			menuRequests.POST("", middleware.RequireRole(models.RoleHotelOwner), menuRequestHandler.Submit)
			menuRequests.GET("", menuRequestHandler.List)
			menuRequests.PATCH("/:id", middleware.RequireRole(models.RoleSuperAdmin), menuRequestHandler.Decide)
		}

		// Owner-facing menu item endpoints
		menuItems := v1.Group("/menu-items")
		menuItems.Use(middleware.AuthMiddleware(jwtService))
		{
			menuItems.GET("", middleware.RequireRole(models.RoleHotelOwner), menuHandler.ListOwnItems)
			menuItems.DELETE("/:id", middleware.RequireRole(models.RoleHotelOwner, models.RoleSuperAdmin), menuHandler.DeleteItem)
		}

		// Subscription payments
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(models.RoleHotelOwner))
		{
			payments.POST("/create-payment", subscriptionHandler.CreatePayment)
			payments.POST("/verify-payment", subscriptionHandler.VerifyPayment)
		}

		// Subscription queries
		subscriptions := v1.Group("/subscriptions")
		subscriptions.Use(middleware.AuthMiddleware(jwtService))
		{
			subscriptions.GET("/active/:hotelId", subscriptionHandler.GetActive)
			subscriptions.GET("/:hotelId", subscriptionHandler.List)
		}

		// Super admin platform operations
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(models.RoleSuperAdmin))
		{
			admin.GET("/hotels", adminHandler.ListHotels)
			admin.POST("/sweep/run", adminHandler.RunSweep)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop the expiry sweep
	expiryService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		// Attach the authenticated identity when present
		if user, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = user.UserID
			fields["role"] = user.Role
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
