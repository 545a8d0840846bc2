package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"delivery-svc/cache"
	"delivery-svc/handlers"
	"delivery-svc/kafka"
	"delivery-svc/middleware"
	"delivery-svc/recommend"
	"delivery-svc/store"
	"delivery-svc/webhook"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize OpenTelemetry
	shutdown, err := middleware.InitTracing("delivery-service")
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdown()

	// Initialize Kafka producer. Workflow events are best-effort: the
	// service runs without them when no broker is reachable.
	producer, err := kafka.InitProducer(logger)
	if err != nil {
		logger.Warn("Kafka unavailable, workflow events disabled", zap.Error(err))
		producer = nil
	} else {
		defer producer.Close()
	}

	// Initialize Redis. The alternatives cache degrades to direct
	// recommendation calls without it.
	redisClient, err := cache.InitRedis(logger)
	if err != nil {
		logger.Warn("Redis unavailable, alternatives cache disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// All order/issue/response state lives in the in-memory store,
	// seeded with the demo dataset.
	workflowStore := store.NewDemo()
	users := store.DemoUsers()

	notifier := webhook.NewNotifier(logger)
	recommender := recommend.NewClient(logger)

	// Setup REST API with Gin
	router := gin.New()
	router.Use(gin.Recovery())
	// OpenTelemetry middleware must be first to extract trace context
	router.Use(otelgin.Middleware("delivery-service"))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck)

	// Metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	// Auth endpoints
	authHandler := handlers.NewAuthHandler(users, logger)
	router.POST("/login", authHandler.Login)
	router.POST("/logout", authHandler.Logout)

	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/profile", authHandler.GetProfile)

	// Order endpoints
	orderHandler := handlers.NewOrderHandler(workflowStore, producer, logger)
	router.GET("/orders", orderHandler.ListOrders)
	router.GET("/orders/:id", orderHandler.GetOrder)
	router.PATCH("/orders/:id", orderHandler.UpdateOrder)
	router.POST("/orders/:id/complete", orderHandler.CompleteOrder)
	router.POST("/orders/:id/cancel", orderHandler.CancelOrder)

	// Issue endpoints
	issueHandler := handlers.NewIssueHandler(workflowStore, notifier, producer, users, logger)
	router.POST("/orders/:id/items/:itemId/issue", issueHandler.ReportIssue)
	router.POST("/orders/:id/items/:itemId/pending-issue", issueHandler.AddPendingIssue)
	router.PUT("/orders/:id/items/:itemId/pending-issue", issueHandler.UpdatePendingIssue)
	router.DELETE("/orders/:id/items/:itemId/pending-issue", issueHandler.RemovePendingIssue)
	router.GET("/orders/:id/pending-issues", issueHandler.GetPendingIssues)
	router.POST("/orders/:id/submit-issues", issueHandler.SubmitIssues)
	router.GET("/orders/:id/issues", issueHandler.GetIssues)

	// Customer response endpoints
	responseHandler := handlers.NewResponseHandler(workflowStore, producer, logger)
	router.POST("/orders/:id/items/:itemId/response", responseHandler.SubmitResponse)
	router.GET("/orders/:id/responses", responseHandler.GetResponses)
	router.GET("/orders/:id/responses/latest", responseHandler.GetLatestResponse)

	// Alternatives endpoint
	alternativesHandler := handlers.NewAlternativesHandler(redisClient, recommender, logger)
	router.GET("/service/:itemId", alternativesHandler.GetAlternatives)

	// Start server
	srv := &http.Server{
		Addr:    ":" + getEnv("PORT", "8085"),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Delivery Service started", zap.String("addr", srv.Addr))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
