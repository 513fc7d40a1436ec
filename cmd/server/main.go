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
	"github.com/sirupsen/logrus"

	"github.com/collegetransit/bus-pass-backend/internal/config"
	"github.com/collegetransit/bus-pass-backend/internal/database"
	"github.com/collegetransit/bus-pass-backend/internal/handlers"
	"github.com/collegetransit/bus-pass-backend/internal/middleware"
	"github.com/collegetransit/bus-pass-backend/internal/services"
	"github.com/collegetransit/bus-pass-backend/internal/utils"
	"github.com/collegetransit/bus-pass-backend/pkg/jwt"
	"github.com/collegetransit/bus-pass-backend/pkg/payment"
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

	logger.Info("Starting College Bus Pass Backend")
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

	// Initialize repositories
	busRepository := database.NewBusRepository(db)
	availabilityRepository := database.NewAvailabilityRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	settingsRepository := database.NewSettingsRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	bookingService := services.NewBookingService(
		settingsRepository,
		availabilityRepository,
		bookingRepository,
		logger,
		cfg.Database.QueryTimeout,
	)
	settingsService := services.NewSettingsService(settingsRepository, availabilityRepository, cfg.Database.QueryTimeout)
	ticketService := services.NewTicketService(bookingRepository, busRepository, settingsRepository, cfg.Database.QueryTimeout)

	paymentGateway := payment.NewGateway(payment.Config{
		KeyID:     cfg.Payment.KeyID,
		KeySecret: cfg.Payment.KeySecret,
		APIURL:    cfg.Payment.APIURL,
	})
	if paymentGateway.Configured() {
		logger.Info("Razorpay payment gateway configured")
	} else {
		logger.Warn("Razorpay credentials missing - online payment disabled")
	}

	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(jwtService, cfg.Admin, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, settingsService, ticketService, availabilityRepository, logger)
	adminBookingHandler := handlers.NewAdminBookingHandler(bookingService, logger)
	busHandler := handlers.NewBusHandler(busRepository, availabilityRepository, bookingRepository, logger)
	settingsHandler := handlers.NewSettingsHandler(settingsService, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentGateway, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public booking flow
		v1.POST("/bookings", bookingHandler.CreateBooking)
		v1.GET("/bookings/:id/ticket", bookingHandler.DownloadTicket)
		v1.GET("/buses/availability", bookingHandler.GetAvailability)
		v1.GET("/booking-status", bookingHandler.GetBookingStatus)

		// Payment gateway bridge (public - the booking wizard calls these)
		paymentRoutes := v1.Group("/payment")
		{
			paymentRoutes.POST("/order", paymentHandler.CreateOrder)
			paymentRoutes.POST("/verify", paymentHandler.VerifyPayment)
		}

		// Admin routes
		admin := v1.Group("/admin")
		{
			admin.POST("/login", authHandler.Login)

			protected := admin.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.GET("/settings", settingsHandler.GetSettings)
				protected.PATCH("/settings", settingsHandler.UpdateSettings)

				protected.GET("/buses", busHandler.GetAllBuses)
				protected.POST("/buses", busHandler.CreateBus)
				protected.PUT("/buses", busHandler.UpdateBus)
				protected.DELETE("/buses", busHandler.DeleteBus)

				protected.GET("/bookings", adminBookingHandler.ListBookings)
				protected.PUT("/bookings", adminBookingHandler.UpdatePaymentStatus)
				protected.DELETE("/bookings", adminBookingHandler.DeleteBooking)
				protected.GET("/bookings/stats", adminBookingHandler.GetStats)
			}
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
		device := utils.ParseUserAgent(c.Request.UserAgent())

		fields := logrus.Fields{
			"status":      c.Writer.Status(),
			"method":      c.Request.Method,
			"path":        path,
			"query":       query,
			"ip":          c.ClientIP(),
			"latency_ms":  latency.Milliseconds(),
			"device_type": device.DeviceType,
			"os":          device.OS,
			"browser":     device.Browser,
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

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
func healthCheckHandler(db database.DB) gin.HandlerFunc {
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
