package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"barangay-abis/backend/internal/auth"
	"barangay-abis/backend/internal/blotter"
	"barangay-abis/backend/internal/certificates"
	"barangay-abis/backend/internal/config"
	"barangay-abis/backend/internal/documents"
	"barangay-abis/backend/internal/notifications"
	"barangay-abis/backend/internal/recognize"
	"barangay-abis/backend/internal/reminders"
	"barangay-abis/backend/internal/reports"
	"barangay-abis/backend/internal/settings"
	"barangay-abis/backend/pkg/storage"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}
	cfg := config.Load()

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())
	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("MongoDB unreachable", zap.Error(err))
	}
	db := client.Database(cfg.Mongo.Database)
	logger.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	for _, ensure := range []func(context.Context, *mongo.Database) error{
		documents.EnsureIndexes,
		blotter.EnsureIndexes,
		certificates.EnsureIndexes,
		settings.EnsureIndexes,
	} {
		if err := ensure(ctx, db); err != nil {
			logger.Fatal("Failed to create indexes", zap.Error(err))
		}
	}

	// Attachment store
	store, err := storage.NewClient(ctx, storage.Options{
		Region:    cfg.Attachments.Region,
		Bucket:    cfg.Attachments.Bucket,
		AccessKey: cfg.Attachments.AccessKey,
		SecretKey: cfg.Attachments.SecretKey,
	})
	if err != nil {
		logger.Fatal("Failed to build attachment store", zap.Error(err))
	}

	// Notification channels
	mailer := notifications.NewSESMailer(ctx, cfg.Attachments.Region, cfg.Notifications.EmailFrom, logger)
	texter := notifications.NewSNSTexter(ctx, cfg.Attachments.Region, cfg.Notifications.SMSSenderID, logger)
	notifier := notifications.NewService(mailer, texter, logger)

	admin := auth.New(cfg.Admin.APIKey, cfg.Admin.Enforced)

	// ---------------- DOCUMENTS ----------------
	documentsRepo := documents.NewRepository(db)
	documentsService := documents.NewService(documentsRepo, store, notifier, logger)
	documentsHandler := documents.NewHandler(documentsService)

	// ---------------- BLOTTER ----------------
	blotterRepo := blotter.NewRepository(db)
	blotterService := blotter.NewService(blotterRepo, store, logger)
	blotterHandler := blotter.NewHandler(blotterService, cfg.Admin.APIKey, cfg.Server.PublicBaseURL)

	// ---------------- CERTIFICATES ----------------
	certificatesRepo := certificates.NewRepository(db)
	certificatesService := certificates.NewService(certificatesRepo, store, logger)
	certificatesHandler := certificates.NewHandler(certificatesService)

	// ---------------- SETTINGS ----------------
	settingsRepo := settings.NewRepository(db)
	settingsService := settings.NewService(settingsRepo, store, logger)
	settingsHandler := settings.NewHandler(settingsService)

	// ---------------- REPORTS ----------------
	reportsService := reports.NewService(documentsService, blotterService, logger)
	reportsHandler := reports.NewHandler(reportsService)

	// ---------------- RECOGNIZE ----------------
	recognizeService := recognize.NewService(logger)
	recognizeHandler := recognize.NewHandler(recognizeService)

	// Appointment reminder sweep
	reminderWorker := reminders.NewWorker(documentsRepo, notifier, logger)
	if err := reminderWorker.Start(); err != nil {
		logger.Fatal("Failed to start reminder worker", zap.Error(err))
	}
	defer reminderWorker.Stop()

	// Setup Router
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-Admin-Key, X-Public-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	api := router.Group("/api")
	{
		documentsHandler.RegisterRoutes(api, admin)
		blotterHandler.RegisterRoutes(api, admin)
		certificatesHandler.RegisterRoutes(api, admin)
		settingsHandler.RegisterRoutes(api, admin)
		reportsHandler.RegisterRoutes(api, admin)
		recognizeHandler.RegisterRoutes(api)
	}

	// Legacy records reference files on local disk
	router.Static("/uploads", "./uploads")

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
