package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"

	"github.com/shgbook/shgbook-api/internal/config"
	"github.com/shgbook/shgbook-api/internal/database"
	"github.com/shgbook/shgbook-api/internal/handlers"
	"github.com/shgbook/shgbook-api/internal/jobs"
	"github.com/shgbook/shgbook-api/internal/middleware"
	"github.com/shgbook/shgbook-api/internal/notifier"
	"github.com/shgbook/shgbook-api/internal/repository"
	"github.com/shgbook/shgbook-api/internal/services"
	"github.com/shgbook/shgbook-api/internal/settings"
	"github.com/shgbook/shgbook-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Email reminders disabled: RESEND_API_KEY or FROM_EMAIL not set")
	}
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		logger.Warn("SMS reminders disabled: Twilio credentials not set")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to the settings store
	redisClient, err := settings.Connect(context.Background(), cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to settings store")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize notification gateways and services
	gateways := notifier.NewGateways(cfg)
	svcs := services.NewServices(repos, worker, gateways, settings.NewRedisStore(redisClient))

	// Start the auto reminder timer with the stored settings
	svcs.Scheduler.Start(svcs.Settings.Load(context.Background()))

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Stop the auto reminder timer and background worker
	svcs.Scheduler.Stop()
	worker.Shutdown()
	logger.Info("Background worker stopped")

	if err := redisClient.Close(); err != nil {
		logger.Error("Failed to close redis connection", "error", err)
	}

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", h.Health.Index)

		// Borrowers
		v1.GET("/borrowers", h.Borrower.Index)
		v1.POST("/borrowers", h.Borrower.Create)
		v1.GET("/borrowers/:borrower_id", h.Borrower.Show)
		v1.PUT("/borrowers/:borrower_id", h.Borrower.Update)
		v1.DELETE("/borrowers/:borrower_id", h.Borrower.Delete)
		v1.GET("/borrowers/:borrower_id/loans", h.Borrower.Loans)

		// Loans
		v1.GET("/loans", h.Loan.Index)
		v1.POST("/loans", h.Loan.Create)
		v1.GET("/loans/:loan_id", h.Loan.Show)
		v1.PUT("/loans/:loan_id", h.Loan.Update)
		v1.DELETE("/loans/:loan_id", h.Loan.Delete)
		v1.POST("/loans/:loan_id/complete", h.Loan.Complete)
		v1.POST("/loans/:loan_id/default", h.Loan.Default)
		v1.POST("/loans/:loan_id/reactivate", h.Loan.Reactivate)
		v1.GET("/loans/:loan_id/payments", h.Loan.Payments)
		v1.POST("/loans/:loan_id/payments/generate", h.Loan.GeneratePayments)

		// Payments
		v1.GET("/payments", h.Payment.Index)
		v1.POST("/payments", h.Payment.Create)
		v1.GET("/payments/stats", h.Payment.Stats)
		v1.GET("/payments/:payment_id", h.Payment.Show)
		v1.PUT("/payments/:payment_id", h.Payment.Update)
		v1.DELETE("/payments/:payment_id", h.Payment.Delete)
		v1.POST("/payments/:payment_id/mark_paid", h.Payment.MarkPaid)
		v1.POST("/payments/:payment_id/mark_unpaid", h.Payment.MarkUnpaid)
		v1.POST("/payments/:payment_id/remind", h.Payment.Remind)

		// Reminders
		v1.GET("/reminders/due", h.Reminder.Due)
		v1.POST("/reminders/process", h.Reminder.Process)
		v1.GET("/reminders/stats", h.Reminder.Stats)
		v1.GET("/reminders/settings", h.Settings.Show)
		v1.PUT("/reminders/settings", h.Settings.Update)
		v1.POST("/reminders/scheduler/start", h.Reminder.StartScheduler)
		v1.POST("/reminders/scheduler/stop", h.Reminder.StopScheduler)
		v1.GET("/reminders/scheduler/status", h.Reminder.SchedulerStatus)

		// Notification logs
		v1.GET("/notifications/logs", h.Notification.Logs)
		v1.GET("/notifications/logs/:reminder_id", h.Notification.LogsByReminder)
		v1.GET("/notifications/stats", h.Notification.Stats)

		// Background jobs
		v1.GET("/jobs/status", h.Job.Status)
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Mark fully repaid loans as completed once a day
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Reconciling loan statuses...")
		return svcs.Loan.ReconcileStatuses(ctx)
	})
}
